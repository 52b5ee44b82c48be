// Package pagesource extracts per-page text from documents on disk.
package pagesource

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docseek/internal/domain"
)

// PageBreak separates pages in plain-text documents.
const PageBreak = "\f"

// FromText splits text on form feeds into pages numbered from 1. Empty
// pages keep their number so later pages stay aligned with the source.
func FromText(text string) []domain.PageText {
	parts := strings.Split(text, PageBreak)
	pages := make([]domain.PageText, len(parts))
	for i, p := range parts {
		pages[i] = domain.PageText{PageNumber: i + 1, Content: p}
	}
	return pages
}

// Load reads the document at path, choosing the extractor by extension.
func Load(path string) ([]domain.PageText, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FromPDF(path)
	case ".txt", ".text", ".md", "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return FromText(string(data)), nil
	default:
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}
