// Package memory is an in-process corpus. Chunks live in maps; the
// full-text strategy is answered by an in-memory bleve index.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"docseek/internal/domain"
)

// maxFuzziness is the edit distance bleve tolerates per query term.
const maxFuzziness = 2

// Corpus keeps chunk sequences in memory and mirrors them into bleve.
type Corpus struct {
	mu    sync.RWMutex
	docs  map[string][]domain.Chunk
	byID  map[string]domain.Chunk
	index bleve.Index
}

func New() (*Corpus, error) {
	idx, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("memory corpus: create index: %w", err)
	}
	return &Corpus{
		docs:  make(map[string][]domain.Chunk),
		byID:  make(map[string]domain.Chunk),
		index: idx,
	}, nil
}

func indexMapping() *mapping.IndexMappingImpl {
	content := bleve.NewTextFieldMapping()
	content.Analyzer = standard.Name
	docID := bleve.NewKeywordFieldMapping()
	docID.Analyzer = keyword.Name

	dm := bleve.NewDocumentMapping()
	dm.AddFieldMappingsAt("content", content)
	dm.AddFieldMappingsAt("document_id", docID)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = dm
	return im
}

func indexID(ch domain.Chunk) string {
	return fmt.Sprintf("%s/%08d", ch.DocumentID, ch.ChunkIndex)
}

func (c *Corpus) ReplaceDocument(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	for i := range stored {
		stored[i].DocumentID = documentID
	}
	sortChunks(stored)

	c.mu.Lock()
	defer c.mu.Unlock()

	batch := c.index.NewBatch()
	for _, old := range c.docs[documentID] {
		batch.Delete(indexID(old))
	}
	for _, ch := range stored {
		doc := map[string]any{"content": ch.Content, "document_id": documentID}
		if err := batch.Index(indexID(ch), doc); err != nil {
			return fmt.Errorf("memory corpus: index chunk %d: %w", ch.ChunkIndex, err)
		}
	}
	if err := c.index.Batch(batch); err != nil {
		return fmt.Errorf("memory corpus: apply batch: %w", err)
	}

	for _, old := range c.docs[documentID] {
		delete(c.byID, indexID(old))
	}
	for _, ch := range stored {
		c.byID[indexID(ch)] = ch
	}
	if len(stored) == 0 {
		delete(c.docs, documentID)
	} else {
		c.docs[documentID] = stored
	}
	return nil
}

// PhraseSearch matches the exact phrase, or every term within two edits.
func (c *Corpus) PhraseSearch(ctx context.Context, phrase string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	if limit <= 0 || strings.TrimSpace(phrase) == "" {
		return nil, nil
	}
	exact := bleve.NewMatchPhraseQuery(phrase)
	exact.SetField("content")
	fuzzy := bleve.NewMatchQuery(phrase)
	fuzzy.SetField("content")
	fuzzy.SetFuzziness(maxFuzziness)
	fuzzy.SetOperator(query.MatchQueryOperatorAnd)

	var q query.Query = bleve.NewDisjunctionQuery(exact, fuzzy)
	if scope.DocumentID != "" {
		doc := bleve.NewTermQuery(scope.DocumentID)
		doc.SetField("document_id")
		q = bleve.NewConjunctionQuery(q, doc)
	}
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.SortBy([]string{"-_score", "_id"})

	c.mu.RLock()
	defer c.mu.RUnlock()
	res, err := c.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("memory corpus: phrase search: %w", err)
	}
	out := make([]domain.Chunk, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if ch, ok := c.byID[hit.ID]; ok {
			out = append(out, ch)
		}
	}
	sortChunks(out)
	return out, nil
}

func (c *Corpus) SubstringSearch(ctx context.Context, substr string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	return c.scan(ctx, substr, scope, limit)
}

func (c *Corpus) KeywordSearch(ctx context.Context, keyword string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	return c.scan(ctx, keyword, scope, limit)
}

func (c *Corpus) scan(ctx context.Context, needle string, scope domain.Scope, limit int) ([]domain.Chunk, error) {
	needle = strings.ToLower(needle)
	if limit <= 0 || needle == "" {
		return nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ids []string
	if scope.DocumentID != "" {
		ids = []string{scope.DocumentID}
	} else {
		ids = make([]string, 0, len(c.docs))
		for id := range c.docs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	var out []domain.Chunk
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, ch := range c.docs[id] {
			if strings.Contains(strings.ToLower(ch.Content), needle) {
				out = append(out, ch)
				if len(out) == limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

// Len reports the number of stored chunks.
func (c *Corpus) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}

func (c *Corpus) Close() error {
	return c.index.Close()
}

func sortChunks(chunks []domain.Chunk) {
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].DocumentID != chunks[j].DocumentID {
			return chunks[i].DocumentID < chunks[j].DocumentID
		}
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})
}
