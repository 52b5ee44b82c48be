package domain

import "context"

// Scope restricts a corpus read to one document. The zero value searches the whole corpus.
type Scope struct {
	DocumentID string
}

// Chunker splits a document's pages into an ordered chunk sequence.
type Chunker interface {
	Chunk(documentID string, pages []PageText) ([]Chunk, error)
}

// Corpus stores chunk sequences and serves the candidate retrieval strategies.
// Reads return at most limit chunks ordered by document id, then chunk index.
type Corpus interface {
	// ReplaceDocument deletes every stored chunk of the document and inserts chunks as one batch.
	ReplaceDocument(ctx context.Context, documentID string, chunks []Chunk) error
	// PhraseSearch runs a full-text phrase match.
	PhraseSearch(ctx context.Context, phrase string, scope Scope, limit int) ([]Chunk, error)
	// SubstringSearch returns chunks whose lowercased content contains substr.
	SubstringSearch(ctx context.Context, substr string, scope Scope, limit int) ([]Chunk, error)
	// KeywordSearch returns chunks whose lowercased content contains a single keyword.
	KeywordSearch(ctx context.Context, keyword string, scope Scope, limit int) ([]Chunk, error)
	Close() error
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
