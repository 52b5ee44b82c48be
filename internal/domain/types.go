package domain

import (
	"encoding/json"
	"fmt"
)

// PageText is the extracted text of one page of a document.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// Position marks where a chunk sits in its document's chunk sequence.
type Position uint8

const (
	PositionStart Position = iota
	PositionMiddle
	PositionEnd
)

func (p Position) String() string {
	switch p {
	case PositionStart:
		return "start"
	case PositionMiddle:
		return "middle"
	case PositionEnd:
		return "end"
	default:
		return fmt.Sprintf("position(%d)", uint8(p))
	}
}

// ParsePosition is the inverse of Position.String.
func ParsePosition(s string) (Position, error) {
	switch s {
	case "start":
		return PositionStart, nil
	case "middle":
		return PositionMiddle, nil
	case "end":
		return PositionEnd, nil
	}
	return 0, fmt.Errorf("unknown chunk position %q", s)
}

func (p Position) MarshalJSON() ([]byte, error) { return json.Marshal(p.String()) }

func (p *Position) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParsePosition(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Chunk is a token-bounded, sentence-aligned segment of a document.
// Identity within a corpus is (DocumentID, ChunkIndex).
type Chunk struct {
	DocumentID  string   `json:"document_id"`
	Content     string   `json:"content"`
	TokenCount  int      `json:"token_count"`
	PageNumber  int      `json:"page_number"`
	ChunkIndex  int      `json:"chunk_index"`
	Position    Position `json:"position"`
	HasOverlap  bool     `json:"has_overlap"`
	Fingerprint string   `json:"content_fingerprint"`
	// OverlapSentences counts the leading sentences repeated from the previous chunk.
	OverlapSentences int `json:"overlap_sentences"`
}

// Key returns the chunk identity used for deduplication.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s#%d", c.DocumentID, c.ChunkIndex)
}

// MatchType is the priority tier of a search result.
type MatchType uint8

// Declared in ascending priority.
const (
	MatchTrigram MatchType = iota
	MatchPartial
	MatchFuzzy
	MatchExact
)

func (m MatchType) String() string {
	switch m {
	case MatchTrigram:
		return "trigram"
	case MatchPartial:
		return "partial"
	case MatchFuzzy:
		return "fuzzy"
	case MatchExact:
		return "exact"
	default:
		return fmt.Sprintf("match(%d)", uint8(m))
	}
}

func (m MatchType) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

// ScoredResult is one ranked search hit.
type ScoredResult struct {
	Chunk              Chunk     `json:"chunk"`
	Score              float64   `json:"score"`
	MatchType          MatchType `json:"match_type"`
	HighlightTags      []string  `json:"highlight_tags"`
	HighlightedContent string    `json:"highlighted_content"`
	// Sources names the retrieval strategies that surfaced the chunk.
	Sources []string `json:"sources"`
}
