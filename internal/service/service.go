// Package service wires segmentation, the corpus and fuzzy retrieval
// into ingest and search operations.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"docseek/internal/domain"
	"docseek/internal/logger"
	"docseek/internal/pagesource"
	"docseek/internal/retrieval"
)

// Config tunes the service. A CacheSize of zero disables the search cache.
type Config struct {
	SummaryMaxSentences int
	CacheSize           int
}

// IngestReport describes one ingested document.
type IngestReport struct {
	DocumentID string
	Path       string
	Pages      int
	Chunks     int
	Tokens     int
	Summary    string
}

type cacheKey struct {
	query string
	opts  retrieval.Options
}

type Service struct {
	chunker    domain.Chunker
	corpus     domain.Corpus
	engine     *retrieval.Engine
	summarizer domain.Summarizer
	cfg        Config

	// writes hold mu exclusively so a purge cannot race a cache fill
	mu    sync.RWMutex
	cache *lru.Cache[cacheKey, *retrieval.Response]
}

func New(chunker domain.Chunker, corpus domain.Corpus, summarizer domain.Summarizer, cfg Config) (*Service, error) {
	s := &Service{
		chunker:    chunker,
		corpus:     corpus,
		engine:     retrieval.NewEngine(corpus),
		summarizer: summarizer,
		cfg:        cfg,
	}
	if cfg.CacheSize > 0 {
		c, err := lru.New[cacheKey, *retrieval.Response](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create search cache: %w", err)
		}
		s.cache = c
	}
	return s, nil
}

// DocumentID derives a stable id from a document path.
func DocumentID(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:8])
}

// IngestFile loads path and ingests it under DocumentID(path).
func (s *Service) IngestFile(ctx context.Context, path string) (IngestReport, error) {
	pages, err := pagesource.Load(path)
	if err != nil {
		return IngestReport{}, err
	}
	report, err := s.IngestDocument(ctx, DocumentID(path), pages)
	report.Path = path
	return report, err
}

// IngestDocument segments pages and replaces the document's chunks in the corpus.
func (s *Service) IngestDocument(ctx context.Context, documentID string, pages []domain.PageText) (IngestReport, error) {
	log := logger.FromContext(ctx).With("document", documentID)
	report := IngestReport{DocumentID: documentID, Pages: len(pages)}

	chunks, err := s.chunker.Chunk(documentID, pages)
	if err != nil {
		return report, fmt.Errorf("segment %s: %w", documentID, err)
	}

	s.mu.Lock()
	err = s.corpus.ReplaceDocument(ctx, documentID, chunks)
	if s.cache != nil {
		s.cache.Purge()
	}
	s.mu.Unlock()
	if err != nil {
		return report, fmt.Errorf("store %s: %w", documentID, err)
	}

	report.Chunks = len(chunks)
	for _, ch := range chunks {
		report.Tokens += ch.TokenCount
	}

	if s.summarizer != nil {
		texts := make([]string, len(pages))
		for i, p := range pages {
			texts[i] = p.Content
		}
		summary, err := s.summarizer.Summarize(strings.Join(texts, "\n"), s.cfg.SummaryMaxSentences)
		if err != nil {
			log.Warn("summary failed", "error", err)
		}
		report.Summary = summary
	}

	log.Info("document ingested", "pages", report.Pages, "chunks", report.Chunks, "tokens", report.Tokens)
	return report, nil
}

// Search runs a fuzzy search. Responses with no failed strategy are cached
// until the next ingest. Every caller gets its own copy of the results.
func (s *Service) Search(ctx context.Context, query string, opts retrieval.Options) (*retrieval.Response, error) {
	key := cacheKey{query: strings.TrimSpace(query), opts: opts}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil {
		if resp, ok := s.cache.Get(key); ok {
			logger.FromContext(ctx).Debug("search cache hit", "query", key.query)
			return cloneResponse(resp), nil
		}
	}
	resp, err := s.engine.Search(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && !resp.Degraded() {
		s.cache.Add(key, cloneResponse(resp))
	}
	return resp, nil
}

func cloneResponse(r *retrieval.Response) *retrieval.Response {
	c := *r
	c.Results = slices.Clone(r.Results)
	for i := range c.Results {
		c.Results[i].HighlightTags = slices.Clone(c.Results[i].HighlightTags)
		c.Results[i].Sources = slices.Clone(c.Results[i].Sources)
	}
	c.Failures = slices.Clone(r.Failures)
	return &c
}

func (s *Service) Close() error {
	return s.corpus.Close()
}
