package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"docseek/internal/domain"
	"docseek/internal/logger"
)

const (
	StrategyPhrase    = "phrase"
	StrategySubstring = "substring"
	StrategyKeyword   = "keyword"
)

const (
	DefaultThreshold       = 10.0
	DefaultMaxResults      = 20
	DefaultStrategyTimeout = 5 * time.Second
)

// Options tune one search call.
type Options struct {
	Threshold  float64 `yaml:"threshold"`
	MaxResults int     `yaml:"max_results"`
	// DocumentID scopes every strategy to one document when set.
	DocumentID      string        `yaml:"-"`
	StrategyTimeout time.Duration `yaml:"strategy_timeout"`
}

func DefaultOptions() Options {
	return Options{
		Threshold:       DefaultThreshold,
		MaxResults:      DefaultMaxResults,
		StrategyTimeout: DefaultStrategyTimeout,
	}
}

// StrategyError records one retrieval strategy that failed or timed out.
type StrategyError struct {
	Strategy string
	Err      error
}

func (e *StrategyError) Error() string { return fmt.Sprintf("%s strategy: %v", e.Strategy, e.Err) }
func (e *StrategyError) Unwrap() error { return e.Err }

// Response carries the ranked results and any strategy failures.
type Response struct {
	Query      Query
	Results    []domain.ScoredResult
	Strategies int
	Failures   []*StrategyError
}

// AllStrategiesFailed reports the total-failure signal; Results is empty then.
func (r *Response) AllStrategiesFailed() bool {
	return r.Strategies > 0 && len(r.Failures) == r.Strategies
}

// Degraded reports that at least one strategy failed.
func (r *Response) Degraded() bool { return len(r.Failures) > 0 }

// Err returns ErrAllStrategiesFailed joined with every cause when no strategy succeeded.
func (r *Response) Err() error {
	if !r.AllStrategiesFailed() {
		return nil
	}
	errs := []error{domain.ErrAllStrategiesFailed}
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

type strategy struct {
	name string
	run  func(ctx context.Context, limit int) ([]domain.Chunk, error)
}

// Engine runs fuzzy searches over a corpus. The corpus is only read.
type Engine struct {
	corpus domain.Corpus
}

func NewEngine(corpus domain.Corpus) *Engine {
	return &Engine{corpus: corpus}
}

// Search preprocesses raw, fans the retrieval strategies out concurrently,
// then scores, ranks, filters and highlights the merged candidates.
// Strategy failures degrade the response instead of failing the call; the
// returned error is non-nil only for an invalid query or a cancelled ctx.
func (e *Engine) Search(ctx context.Context, raw string, opts Options) (*Response, error) {
	q, err := Preprocess(raw)
	if err != nil {
		return nil, err
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.StrategyTimeout <= 0 {
		opts.StrategyTimeout = DefaultStrategyTimeout
	}
	log := logger.FromContext(ctx).With("query", q.Processed)

	strategies := e.strategies(q, domain.Scope{DocumentID: opts.DocumentID})
	found := make([][]domain.Chunk, len(strategies))
	errs := make([]error, len(strategies))

	var g errgroup.Group
	for i, s := range strategies {
		i, s := i, s
		g.Go(func() error {
			sctx, cancel := context.WithTimeout(ctx, opts.StrategyTimeout)
			defer cancel()
			found[i], errs[i] = runWithin(sctx, s, opts.MaxResults)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp := &Response{Query: q, Strategies: len(strategies)}
	for i, err := range errs {
		if err != nil {
			log.Warn("retrieval strategy failed", "strategy", strategies[i].name, "error", err)
			resp.Failures = append(resp.Failures, &StrategyError{Strategy: strategies[i].name, Err: err})
		}
	}
	if resp.AllStrategiesFailed() {
		log.Error("every retrieval strategy failed", "strategies", resp.Strategies)
		return resp, nil
	}

	candidates := merge(strategies, found)
	results := make([]domain.ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		score, mt := Score(c.chunk.Content, q)
		if score < opts.Threshold {
			continue
		}
		results = append(results, domain.ScoredResult{
			Chunk:     c.chunk,
			Score:     score,
			MatchType: mt,
			Sources:   c.sources,
		})
	}
	Rank(results)
	if len(results) > opts.MaxResults {
		results = results[:opts.MaxResults]
	}
	for i := range results {
		results[i].HighlightedContent, results[i].HighlightTags = Highlight(results[i].Chunk.Content, q.Variations)
	}
	resp.Results = results
	log.Debug("search finished", "candidates", len(candidates), "results", len(results), "failures", len(resp.Failures))
	return resp, nil
}

func (e *Engine) strategies(q Query, scope domain.Scope) []strategy {
	out := []strategy{
		{name: StrategyPhrase, run: func(ctx context.Context, limit int) ([]domain.Chunk, error) {
			return e.corpus.PhraseSearch(ctx, q.Processed, scope, limit)
		}},
		{name: StrategySubstring, run: func(ctx context.Context, limit int) ([]domain.Chunk, error) {
			return e.corpus.SubstringSearch(ctx, q.Processed, scope, limit)
		}},
	}
	seen := make(map[string]struct{})
	for _, k := range q.Keywords {
		k := k
		if utf8.RuneCountInString(k) <= 2 {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, strategy{
			name: StrategyKeyword + ":" + k,
			run: func(ctx context.Context, limit int) ([]domain.Chunk, error) {
				return e.corpus.KeywordSearch(ctx, k, scope, limit)
			},
		})
	}
	return out
}

type outcome struct {
	chunks []domain.Chunk
	err    error
}

// runWithin bounds s by ctx even when the corpus ignores ctx. A result that
// arrives after ctx ended counts as a failure; the stray call finishes on its own.
func runWithin(ctx context.Context, s strategy, limit int) ([]domain.Chunk, error) {
	done := make(chan outcome, 1)
	go func() {
		chunks, err := s.run(ctx, limit)
		done <- outcome{chunks, err}
	}()
	select {
	case o := <-done:
		if o.err == nil && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return o.chunks, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type candidate struct {
	chunk   domain.Chunk
	sources []string
}

// merge deduplicates chunks by identity, remembering every strategy that returned them.
func merge(strategies []strategy, found [][]domain.Chunk) []*candidate {
	byKey := make(map[string]*candidate)
	var out []*candidate
	for i, chunks := range found {
		for _, ch := range chunks {
			key := ch.Key()
			c, ok := byKey[key]
			if !ok {
				c = &candidate{chunk: ch}
				byKey[key] = c
				out = append(out, c)
			}
			if n := len(c.sources); n == 0 || c.sources[n-1] != strategies[i].name {
				c.sources = append(c.sources, strategies[i].name)
			}
		}
	}
	return out
}

// Rank orders results by match tier, then score, then chunk index and document id.
func Rank(results []domain.ScoredResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.MatchType != b.MatchType {
			return a.MatchType > b.MatchType
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Chunk.ChunkIndex != b.Chunk.ChunkIndex {
			return a.Chunk.ChunkIndex < b.Chunk.ChunkIndex
		}
		return a.Chunk.DocumentID < b.Chunk.DocumentID
	})
}
