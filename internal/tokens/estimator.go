// Package tokens approximates token counts for chunk sizing.
//
// The estimate is one token per four characters, rounded up. It is not
// compatible with any model tokenizer and must not be used for billing or
// context-window accounting.
package tokens

import "unicode/utf8"

// CharsPerToken is the character-to-token ratio used by Estimate.
const CharsPerToken = 4

// Estimate returns ceil(characters/4) for text, or 0 for empty text.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + CharsPerToken - 1) / CharsPerToken
}
