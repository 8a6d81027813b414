// Package tokenizer turns extracted document text into index terms. It maps
// non-word characters to spaces, strips ASCII digits and underscores, splits
// on whitespace, lower-cases, and keeps tokens of 3 to 9 characters that are
// not stopwords.
package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Term length bounds, inclusive, counted in characters.
const (
	MinTermLen = 3
	MaxTermLen = 9
)

// Result is the frequency table of one document's accepted terms.
type Result struct {
	Terms map[string]int
	Total int
}

// Tokenize normalizes text and returns the accepted tokens in document order.
func Tokenize(text string, stop Stopwords) []string {
	words := strings.Fields(strings.Map(clean, text))
	tokens := make([]string, 0, len(words)/2)
	// a Caser holds state, so each call gets its own
	lower := cases.Lower(language.Und)
	for _, word := range words {
		if stop.Contains(word) {
			continue
		}
		term := lower.String(word)
		if n := utf8.RuneCountInString(term); n < MinTermLen || n > MaxTermLen {
			continue
		}
		if stop.Contains(term) {
			continue
		}
		tokens = append(tokens, term)
	}
	return tokens
}

// Count normalizes text into a frequency table. A text with no accepted
// tokens yields an empty table and a zero total.
func Count(text string, stop Stopwords) Result {
	tokens := Tokenize(text, stop)
	terms := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		terms[tok]++
	}
	return Result{Terms: terms, Total: len(tokens)}
}

// clean maps a rune for the strings.Map pass: non-word runes become spaces,
// ASCII digits and underscores are dropped.
func clean(r rune) rune {
	switch {
	case r >= '0' && r <= '9', r == '_':
		return -1
	case unicode.IsLetter(r), unicode.IsNumber(r):
		return r
	default:
		return ' '
	}
}
