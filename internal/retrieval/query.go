package retrieval

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"docseek/internal/domain"
)

var stemSuffixes = []string{"ing", "ed", "er", "est", "ly", "s"}

// Query is a preprocessed search query.
type Query struct {
	Raw       string
	Processed string
	Keywords  []string
	// Variations is sorted so scoring sums in a fixed order.
	Variations []string
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Normalize lowercases s, drops every rune that is neither a word rune nor
// whitespace, and collapses whitespace runs to single spaces.
func Normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case isWordRune(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Preprocess builds the normalized form, keywords and variation set of raw.
func Preprocess(raw string) (Query, error) {
	if strings.TrimSpace(raw) == "" {
		return Query{}, domain.ErrEmptyQuery
	}
	processed := Normalize(raw)
	if processed == "" {
		return Query{}, fmt.Errorf("%w: %q has no searchable characters", domain.ErrEmptyQuery, raw)
	}
	keywords := strings.Fields(processed)
	return Query{
		Raw:        raw,
		Processed:  processed,
		Keywords:   keywords,
		Variations: variations(processed, keywords),
	}, nil
}

func variations(processed string, keywords []string) []string {
	set := map[string]struct{}{processed: {}}
	add := func(v string) {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	for _, k := range keywords {
		add(k)
		n := utf8.RuneCountInString(k)
		if n > 3 {
			for _, suf := range stemSuffixes {
				if strings.HasSuffix(k, suf) && n-len(suf) > 2 {
					add(k[:len(k)-len(suf)])
				}
			}
		}
		// typo tolerance: drop the last rune, or the two before the last
		r := []rune(k)
		if n > 4 {
			add(string(r[:n-1]))
		}
		if n > 5 {
			add(string(r[:n-2]) + string(r[n-1]))
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
