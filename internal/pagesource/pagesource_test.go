package pagesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docseek/internal/domain"
)

func TestFromText(t *testing.T) {
	t.Run("Should return one page without form feeds", func(t *testing.T) {
		assert.Equal(t, []domain.PageText{{PageNumber: 1, Content: "Hello."}}, FromText("Hello."))
	})

	t.Run("Should number pages from one and keep empty pages", func(t *testing.T) {
		got := FromText("First.\f\fThird.")
		assert.Equal(t, []domain.PageText{
			{PageNumber: 1, Content: "First."},
			{PageNumber: 2, Content: ""},
			{PageNumber: 3, Content: "Third."},
		}, got)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("Should read text files", func(t *testing.T) {
		path := filepath.Join(dir, "doc.txt")
		require.NoError(t, os.WriteFile(path, []byte("A.\fB."), 0o644))
		got, err := Load(path)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Should report missing files", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Should reject unsupported extensions", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "image.png"))
		assert.ErrorContains(t, err, "unsupported document type")
	})

	t.Run("Should fail on a malformed pdf", func(t *testing.T) {
		path := filepath.Join(dir, "broken.pdf")
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
