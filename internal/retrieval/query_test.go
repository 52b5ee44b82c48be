package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docseek/internal/domain"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  Hello,   World! ":   "hello world",
		"It's\tthe\nend.":      "its the end",
		"snake_case stays":     "snake_case stays",
		"Ünïcode wörds":        "ünïcode wörds",
		"!!!":                  "",
		"version 2.0 released": "version 20 released",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestPreprocess(t *testing.T) {
	t.Run("Should reject empty queries", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "?!."} {
			_, err := Preprocess(raw)
			assert.ErrorIs(t, err, domain.ErrEmptyQuery, "raw %q", raw)
		}
	})

	t.Run("Should build typo variations", func(t *testing.T) {
		q, err := Preprocess("Documnt")
		require.NoError(t, err)
		assert.Equal(t, "documnt", q.Processed)
		assert.Equal(t, []string{"documnt"}, q.Keywords)
		assert.Equal(t, []string{"documn", "documnt", "documt"}, q.Variations)
	})

	t.Run("Should stem and truncate keywords", func(t *testing.T) {
		q, err := Preprocess("Running tests quickly")
		require.NoError(t, err)
		assert.Equal(t, "running tests quickly", q.Processed)
		assert.Equal(t, []string{"running", "tests", "quickly"}, q.Keywords)
		for _, v := range []string{"running tests quickly", "runn", "test", "quick", "runnin", "runnig", "quickl", "quicky"} {
			assert.Contains(t, q.Variations, v)
		}
		assert.IsIncreasing(t, q.Variations)
	})

	t.Run("Should keep short stems intact", func(t *testing.T) {
		q, err := Preprocess("bed")
		require.NoError(t, err)
		assert.Equal(t, []string{"bed"}, q.Variations)

		q, err = Preprocess("beds")
		require.NoError(t, err)
		assert.Equal(t, []string{"bed", "beds"}, q.Variations)
	})

	t.Run("Should deduplicate", func(t *testing.T) {
		q, err := Preprocess("cat cat")
		require.NoError(t, err)
		assert.Equal(t, []string{"cat", "cat cat"}, q.Variations)
	})
}
