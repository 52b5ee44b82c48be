// Package summarizer builds extractive document summaries.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"docseek/internal/chunker"
)

// DefaultMaxSentences applies when a caller passes a non-positive limit.
const DefaultMaxSentences = 3

var wordPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// FrequencySummarizer picks the sentences whose content words occur most
// often across the text and returns them in document order.
type FrequencySummarizer struct {
	stopwords map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{stopwords: stopwords()}
}

func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = DefaultMaxSentences
	}
	sentences := chunker.SplitSentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " "), nil
	}

	words := make([][]string, len(sentences))
	freq := make(map[string]float64)
	for i, sent := range sentences {
		words[i] = wordPattern.FindAllString(strings.ToLower(sent), -1)
		for _, w := range words[i] {
			if _, stop := s.stopwords[w]; !stop {
				freq[w]++
			}
		}
	}

	var peak float64
	for _, v := range freq {
		peak = math.Max(peak, v)
	}

	type ranked struct {
		idx   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, ws := range words {
		var sum float64
		for _, w := range ws {
			sum += freq[w]
		}
		if len(ws) > 0 && peak > 0 {
			// dampen long sentences
			sum = sum / peak / math.Sqrt(float64(len(ws)))
		}
		scores[i] = ranked{i, sum}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].idx
	}
	sort.Ints(picked)

	out := make([]string, len(picked))
	for i, idx := range picked {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " "), nil
}

func stopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at",
		"by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "from", "up", "down", "over", "under", "again", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "out", "off", "same", "too", "very",
		"can", "will", "just", "should", "now", "not", "no", "we", "you", "they", "he", "she", "i",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
