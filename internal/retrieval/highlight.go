package retrieval

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const highlightCutoff = 0.6

// Highlight wraps every word of content whose best similarity to a variation
// exceeds 0.6 in a <mark data-similarity="..."> annotation. Punctuation around
// a word and all whitespace are left untouched. The returned tags are the
// distinct marked words in order of first appearance. Content is not
// escaped; renderers pair the raw content with the tags via SplitWord
// instead of parsing the markup.
func Highlight(content string, variations []string) (string, []string) {
	var (
		b    strings.Builder
		tags []string
		seen = make(map[string]struct{})
	)
	b.Grow(len(content))
	for len(content) > 0 {
		ws := strings.IndexFunc(content, func(r rune) bool { return !unicode.IsSpace(r) })
		if ws < 0 {
			b.WriteString(content)
			break
		}
		b.WriteString(content[:ws])
		content = content[ws:]
		end := strings.IndexFunc(content, unicode.IsSpace)
		if end < 0 {
			end = len(content)
		}
		token := content[:end]
		content = content[end:]

		prefix, core, suffix := SplitWord(token)
		if core == "" {
			b.WriteString(token)
			continue
		}

		best := 0.0
		for _, v := range variations {
			best = max(best, Similarity(core, v))
		}
		if best <= highlightCutoff {
			b.WriteString(token)
			continue
		}
		b.WriteString(prefix)
		b.WriteString(`<mark data-similarity="`)
		b.WriteString(strconv.FormatFloat(best, 'f', 2, 64))
		b.WriteString(`">`)
		b.WriteString(core)
		b.WriteString("</mark>")
		b.WriteString(suffix)
		if _, ok := seen[core]; !ok {
			seen[core] = struct{}{}
			tags = append(tags, core)
		}
	}
	return b.String(), tags
}

// SplitWord cuts a whitespace-free token into leading punctuation, the word
// core and trailing punctuation. core is empty when token has no word rune.
func SplitWord(token string) (prefix, core, suffix string) {
	lead := strings.IndexFunc(token, isWordRune)
	if lead < 0 {
		return token, "", ""
	}
	trail := strings.LastIndexFunc(token, isWordRune)
	_, size := utf8.DecodeRuneInString(token[trail:])
	return token[:lead], token[lead : trail+size], token[trail+size:]
}
