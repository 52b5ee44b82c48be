package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docseek/internal/chunker"
	"docseek/internal/corpus/memory"
	"docseek/internal/corpus/sqlite"
	"docseek/internal/domain"
	"docseek/internal/retrieval"
	"docseek/internal/summarizer"
)

type countingCorpus struct {
	domain.Corpus
	phraseCalls   atomic.Int32
	failSubstring bool
}

func (c *countingCorpus) PhraseSearch(ctx context.Context, phrase string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	c.phraseCalls.Add(1)
	return c.Corpus.PhraseSearch(ctx, phrase, scope, limit)
}

func (c *countingCorpus) SubstringSearch(ctx context.Context, substr string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	if c.failSubstring {
		return nil, errors.New("substring index offline")
	}
	return c.Corpus.SubstringSearch(ctx, substr, scope, limit)
}

func corpora(t *testing.T) map[string]domain.Corpus {
	t.Helper()
	mem, err := memory.New()
	require.NoError(t, err)
	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "corpus.db"))
	require.NoError(t, err)
	return map[string]domain.Corpus{"memory": mem, "sqlite": db}
}

func newService(t *testing.T, corpus domain.Corpus, cacheSize int) *Service {
	t.Helper()
	ch, err := chunker.NewSentenceChunker(chunker.DefaultConfig())
	require.NoError(t, err)
	svc, err := New(ch, corpus, summarizer.NewFrequencySummarizer(), Config{SummaryMaxSentences: 2, CacheSize: cacheSize})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func pages(texts ...string) []domain.PageText {
	out := make([]domain.PageText, len(texts))
	for i, s := range texts {
		out[i] = domain.PageText{PageNumber: i + 1, Content: s}
	}
	return out
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	for name, corpus := range corpora(t) {
		t.Run(name, func(t *testing.T) {
			svc := newService(t, corpus, 16)
			_, err := svc.IngestDocument(ctx, "report", pages("Intro line. ...the document is ready..."))
			require.NoError(t, err)
			_, err = svc.IngestDocument(ctx, "notes", pages("The quick brown fox jumps over the fence."))
			require.NoError(t, err)

			t.Run("Should find a misspelled word as a fuzzy match", func(t *testing.T) {
				resp, err := svc.Search(ctx, "documnt", retrieval.DefaultOptions())
				require.NoError(t, err)
				require.Len(t, resp.Results, 1)
				got := resp.Results[0]
				assert.Equal(t, "report", got.Chunk.DocumentID)
				assert.Equal(t, domain.MatchFuzzy, got.MatchType)
				assert.GreaterOrEqual(t, got.Score, 22.5)
				assert.Contains(t, got.HighlightedContent, `<mark data-similarity="0.88">document</mark>`)
			})

			t.Run("Should return verbatim substrings as exact matches", func(t *testing.T) {
				resp, err := svc.Search(ctx, "Quick Brown", retrieval.DefaultOptions())
				require.NoError(t, err)
				require.NotEmpty(t, resp.Results)
				assert.Equal(t, "notes", resp.Results[0].Chunk.DocumentID)
				assert.Equal(t, domain.MatchExact, resp.Results[0].MatchType)
				assert.Equal(t, 100.0, resp.Results[0].Score)
			})

			t.Run("Should honor document scope", func(t *testing.T) {
				opts := retrieval.DefaultOptions()
				opts.DocumentID = "report"
				resp, err := svc.Search(ctx, "quick brown", opts)
				require.NoError(t, err)
				assert.Empty(t, resp.Results)
			})

			t.Run("Should reject an empty query", func(t *testing.T) {
				_, err := svc.Search(ctx, " !? ", retrieval.DefaultOptions())
				assert.ErrorIs(t, err, domain.ErrEmptyQuery)
			})
		})
	}
}

func TestService_IngestDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("Should report chunks tokens and summary", func(t *testing.T) {
		corpus, err := memory.New()
		require.NoError(t, err)
		svc := newService(t, corpus, 0)

		report, err := svc.IngestDocument(ctx, "doc", pages("First sentence. Second sentence.", "Third sentence."))
		require.NoError(t, err)
		assert.Equal(t, "doc", report.DocumentID)
		assert.Equal(t, 2, report.Pages)
		assert.Equal(t, 1, report.Chunks)
		assert.Positive(t, report.Tokens)
		assert.NotEmpty(t, report.Summary)
		assert.Equal(t, 1, corpus.Len())
	})

	t.Run("Should replace a re-ingested document and purge cached searches", func(t *testing.T) {
		corpus, err := memory.New()
		require.NoError(t, err)
		svc := newService(t, corpus, 16)

		_, err = svc.IngestDocument(ctx, "doc", pages("The fox sleeps."))
		require.NoError(t, err)
		resp, err := svc.Search(ctx, "fox", retrieval.DefaultOptions())
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)

		_, err = svc.IngestDocument(ctx, "doc", pages("The cat sleeps."))
		require.NoError(t, err)
		resp, err = svc.Search(ctx, "fox", retrieval.DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, resp.Results)
	})

	t.Run("Should store nothing for an empty document", func(t *testing.T) {
		corpus, err := memory.New()
		require.NoError(t, err)
		svc := newService(t, corpus, 0)

		report, err := svc.IngestDocument(ctx, "empty", pages("", "   "))
		require.NoError(t, err)
		assert.Zero(t, report.Chunks)
		assert.Zero(t, corpus.Len())
	})
}

func TestService_Cache(t *testing.T) {
	ctx := context.Background()

	t.Run("Should serve repeated searches from cache", func(t *testing.T) {
		mem, err := memory.New()
		require.NoError(t, err)
		corpus := &countingCorpus{Corpus: mem}
		svc := newService(t, corpus, 16)
		_, err = svc.IngestDocument(ctx, "doc", pages("Cached search results."))
		require.NoError(t, err)

		first, err := svc.Search(ctx, "cached", retrieval.DefaultOptions())
		require.NoError(t, err)
		second, err := svc.Search(ctx, "  cached ", retrieval.DefaultOptions())
		require.NoError(t, err)
		assert.NotSame(t, first, second)
		assert.Equal(t, first.Results, second.Results)
		assert.Equal(t, int32(1), corpus.phraseCalls.Load())
	})

	t.Run("Should isolate cached results from caller mutation", func(t *testing.T) {
		corpus, err := memory.New()
		require.NoError(t, err)
		svc := newService(t, corpus, 16)
		_, err = svc.IngestDocument(ctx, "doc", pages("Cached search results."))
		require.NoError(t, err)

		first, err := svc.Search(ctx, "cached", retrieval.DefaultOptions())
		require.NoError(t, err)
		require.NotEmpty(t, first.Results)
		want := first.Results[0]
		want.HighlightTags = append([]string(nil), want.HighlightTags...)
		first.Results[0].Score = -1
		first.Results[0].HighlightTags[0] = "tampered"
		first.Results = first.Results[:0]

		second, err := svc.Search(ctx, "cached", retrieval.DefaultOptions())
		require.NoError(t, err)
		require.NotEmpty(t, second.Results)
		assert.Equal(t, want.Score, second.Results[0].Score)
		assert.Equal(t, want.HighlightTags, second.Results[0].HighlightTags)

		second.Results[0].Sources[0] = "tampered"
		third, err := svc.Search(ctx, "cached", retrieval.DefaultOptions())
		require.NoError(t, err)
		assert.NotEqual(t, "tampered", third.Results[0].Sources[0])
	})

	t.Run("Should not cache degraded responses", func(t *testing.T) {
		mem, err := memory.New()
		require.NoError(t, err)
		corpus := &countingCorpus{Corpus: mem, failSubstring: true}
		svc := newService(t, corpus, 16)
		_, err = svc.IngestDocument(ctx, "doc", pages("Cached search results."))
		require.NoError(t, err)

		for i := 0; i < 2; i++ {
			resp, err := svc.Search(ctx, "cached", retrieval.DefaultOptions())
			require.NoError(t, err)
			assert.True(t, resp.Degraded())
			assert.NotEmpty(t, resp.Results)
		}
		assert.Equal(t, int32(2), corpus.phraseCalls.Load())
	})
}

func TestService_IngestFile(t *testing.T) {
	corpus, err := memory.New()
	require.NoError(t, err)
	svc := newService(t, corpus, 0)

	path := filepath.Join(t.TempDir(), "paged.txt")
	require.NoError(t, os.WriteFile(path, []byte("Page one text.\fPage two text."), 0o644))

	report, err := svc.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, DocumentID(path), report.DocumentID)
	assert.Equal(t, path, report.Path)
	assert.Equal(t, 2, report.Pages)
	assert.Len(t, report.DocumentID, 16)
}
