package pagesource

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"docseek/internal/domain"
)

// FromPDF extracts the plain text of every page. Pages without a content
// object are returned empty.
func FromPDF(path string) ([]domain.PageText, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	n := r.NumPage()
	pages := make([]domain.PageText, 0, n)
	for i := 1; i <= n; i++ {
		page := domain.PageText{PageNumber: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			text, err := p.GetPlainText(nil)
			if err != nil {
				return nil, fmt.Errorf("extract page %d of %s: %w", i, path, err)
			}
			page.Content = text
		}
		pages = append(pages, page)
	}
	return pages, nil
}
