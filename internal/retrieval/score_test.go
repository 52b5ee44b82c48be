package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docseek/internal/domain"
)

func mustQuery(t *testing.T, raw string) Query {
	t.Helper()
	q, err := Preprocess(raw)
	require.NoError(t, err)
	return q
}

func TestScore(t *testing.T) {
	t.Run("Should score misspelling as fuzzy", func(t *testing.T) {
		// documn and documt are two edits from "document", documnt is one.
		score, mt := Score("...the document is ready...", mustQuery(t, "documnt"))
		assert.Equal(t, domain.MatchFuzzy, mt)
		assert.InDelta(t, 30*(0.75+0.875+0.75), score, 1e-9)
	})

	t.Run("Should add thirty times similarity per variation", func(t *testing.T) {
		q := Query{Processed: "documnt", Keywords: []string{"documnt"}, Variations: []string{"documnt"}}
		score, mt := Score("...the document is ready...", q)
		assert.Equal(t, domain.MatchFuzzy, mt)
		assert.InDelta(t, 30*0.875, score, 1e-9)
	})

	t.Run("Should clip exact matches", func(t *testing.T) {
		score, mt := Score("The Document is ready", mustQuery(t, "document"))
		assert.Equal(t, domain.MatchExact, mt)
		assert.Equal(t, 100.0, score)
	})

	t.Run("Should treat whole word as exact", func(t *testing.T) {
		// "alpha omega" is not a substring, but "omega" is a whole word.
		score, mt := Score("omega", mustQuery(t, "alpha omega"))
		assert.Equal(t, domain.MatchExact, mt)
		assert.Equal(t, 100.0, score)
	})

	t.Run("Should score variation substring as partial", func(t *testing.T) {
		score, mt := Score("concatenate strings", mustQuery(t, "cats dogs"))
		assert.Equal(t, domain.MatchPartial, mt)
		assert.Equal(t, 20.0, score)
	})

	t.Run("Should fall back to trigram", func(t *testing.T) {
		score, mt := Score("nothing here matches", mustQuery(t, "zebra"))
		assert.Equal(t, domain.MatchTrigram, mt)
		assert.Equal(t, 0.0, score)
	})

	t.Run("Should stay within bounds", func(t *testing.T) {
		for _, content := range []string{"", "x", "document documents documented", "the end"} {
			score, _ := Score(content, mustQuery(t, "documents ended"))
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	})
}

func TestContainsWord(t *testing.T) {
	assert.True(t, containsWord("the document.", "document"))
	assert.True(t, containsWord("document", "document"))
	assert.False(t, containsWord("documents", "document"))
	assert.False(t, containsWord("undocumented document_x", "document"))
	assert.True(t, containsWord("a undocumented document", "document"))
	assert.True(t, containsWord("über alles", "über"))
	assert.False(t, containsWord("xüber", "über"))
	assert.False(t, containsWord("anything", ""))
}
