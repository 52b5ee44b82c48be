package retrieval

import (
	"strings"
	"unicode/utf8"

	"docseek/internal/domain"
)

const (
	exactPoints     = 100.0
	wordPoints      = 50.0
	fuzzyPoints     = 30.0
	partialPoints   = 20.0
	exactMultiplier = 1.5
	fuzzyCutoff     = 0.7
	maxScore        = 100.0
)

// Score rates content against q and reports the highest match tier that fired.
func Score(content string, q Query) (float64, domain.MatchType) {
	lower := strings.ToLower(content)
	var (
		total                 float64
		exact, fuzzy, partial bool
	)

	if strings.Contains(lower, q.Processed) {
		total += exactPoints
		exact = true
	}
	for _, tok := range strings.Fields(q.Processed) {
		if containsWord(lower, tok) {
			total += wordPoints
			exact = true
		}
	}
	for _, w := range strings.Fields(lower) {
		if utf8.RuneCountInString(w) <= 2 {
			continue
		}
		for _, v := range q.Variations {
			if s := Similarity(w, v); s > fuzzyCutoff {
				total += fuzzyPoints * s
				fuzzy = true
			}
		}
	}
	for _, v := range q.Variations {
		if strings.Contains(lower, v) {
			total += partialPoints
			partial = true
		}
	}

	if exact {
		total *= exactMultiplier
	}
	total = min(max(total, 0), maxScore)

	switch {
	case exact:
		return total, domain.MatchExact
	case fuzzy:
		return total, domain.MatchFuzzy
	case partial:
		return total, domain.MatchPartial
	}
	return total, domain.MatchTrigram
}

// containsWord reports whether word occurs in s delimited by non-word runes.
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for from := 0; from < len(s); {
		i := strings.Index(s[from:], word)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(word)
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(s) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(s[start:])
		from = start + size
	}
	return false
}
