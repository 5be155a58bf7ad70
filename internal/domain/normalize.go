package domain

import (
	"strings"
	"unicode"
)

// NormalizeText folds a word or phrase into the key used for caching and
// de-duplication: lower case, single spaces, no surrounding punctuation.
// Inner hyphens and apostrophes stay ("don't", "well-known").
func NormalizeText(text string) string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) && r != '\''
	})
}
