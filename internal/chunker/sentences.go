package chunker

import "strings"

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences cuts text after every run of terminal punctuation.
// Trailing text without a terminator forms the last sentence; blank pieces are dropped.
func SplitSentences(text string) []string {
	var (
		out   []string
		start int
		prev  bool
	)
	emit := func(end int) {
		if s := strings.TrimSpace(text[start:end]); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i, r := range text {
		term := isTerminal(r)
		if prev && !term {
			emit(i)
		}
		prev = term
	}
	emit(len(text))
	return out
}
