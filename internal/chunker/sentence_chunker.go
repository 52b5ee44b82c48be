package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strings"

	"docseek/internal/domain"
	"docseek/internal/tokens"
)

// SentenceChunker greedily packs sentences into chunks of at most MaxTokens,
// seeding each new chunk with the trailing sentences of the previous one.
type SentenceChunker struct {
	cfg Config
}

func NewSentenceChunker(cfg Config) (*SentenceChunker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &SentenceChunker{cfg: cfg}, nil
}

type sentence struct {
	text   string
	tokens int
	page   int
}

// Chunk segments pages in order. Chunk indexes run 0..N-1 across the whole
// document and the accumulator carries over page boundaries.
func (c *SentenceChunker) Chunk(documentID string, pages []domain.PageText) ([]domain.Chunk, error) {
	var (
		chunks []domain.Chunk
		acc    []sentence
		sum    int
		seeded int
	)
	for _, page := range pages {
		for _, text := range SplitSentences(page.Content) {
			s := sentence{text: text, tokens: tokens.Estimate(text), page: page.PageNumber}
			if sum+s.tokens > c.cfg.MaxTokens && len(acc) > 0 {
				idx := len(chunks)
				pos := domain.PositionMiddle
				if idx == 0 {
					pos = domain.PositionStart
				}
				chunk := buildChunk(documentID, acc, idx, pos, seeded)
				chunks = append(chunks, chunk)

				target := int(math.Floor(float64(chunk.TokenCount) * c.cfg.OverlapPercentage / 100))
				acc, sum = overlapTail(acc, target)
				seeded = len(acc)
			}
			acc = append(acc, s)
			sum += s.tokens
		}
	}
	if len(acc) > 0 {
		chunks = append(chunks, buildChunk(documentID, acc, len(chunks), domain.PositionEnd, seeded))
	}
	return chunks, nil
}

// overlapTail walks sentences backward and keeps the longest suffix whose
// token sum does not exceed target. The returned slice is freshly allocated.
func overlapTail(sentences []sentence, target int) ([]sentence, int) {
	sum := 0
	start := len(sentences)
	for i := len(sentences) - 1; i >= 0; i-- {
		if sum+sentences[i].tokens > target {
			break
		}
		sum += sentences[i].tokens
		start = i
	}
	tail := make([]sentence, len(sentences)-start)
	copy(tail, sentences[start:])
	return tail, sum
}

func buildChunk(documentID string, acc []sentence, idx int, pos domain.Position, seeded int) domain.Chunk {
	parts := make([]string, len(acc))
	for i, s := range acc {
		parts[i] = s.text
	}
	content := strings.Join(parts, " ")
	count := tokens.Estimate(content)
	if count < 0 {
		panic("chunker: negative token estimate")
	}
	return domain.Chunk{
		DocumentID:       documentID,
		Content:          content,
		TokenCount:       count,
		PageNumber:       acc[0].page,
		ChunkIndex:       idx,
		Position:         pos,
		HasOverlap:       idx > 0,
		Fingerprint:      Fingerprint(content),
		OverlapSentences: seeded,
	}
}

// Fingerprint is the hex SHA-256 of content's UTF-8 bytes.
func Fingerprint(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
