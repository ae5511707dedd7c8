package textmatch

import "strings"

// Tokenize splits phrase text into display tokens. Markup and trailing
// sentence punctuation are removed but casing is preserved. Splitting
// happens on whitespace only, so contractions such as "don't" stay whole.
func Tokenize(s string) []string {
	s = strings.Join(strings.Fields(stripMarkup(s)), " ")
	s = trimSentenceEnd(s)
	return strings.Fields(s)
}
