package textmatch

import (
	"regexp"
	"strings"
)

var (
	invisibleReplacer = strings.NewReplacer(
		"\u200b", " ",
		"\u200c", " ",
		"\u200d", " ",
		"\ufeff", " ",
		"\u00ad", " ",
	)
	emphasisRun = regexp.MustCompile(`[*_]+`)
	// The run may interleave spaces ("done. !") so a second pass finds nothing left to strip.
	sentenceEnd = regexp.MustCompile(`[\s.?!…]+$`)
)

// Normalize canonicalizes s for comparison. It folds case, collapses
// whitespace, drops emphasis markup and invisible characters and strips
// trailing sentence punctuation. Interior punctuation, apostrophes
// included, is kept. Normalize is idempotent.
func Normalize(s string) string {
	s = stripMarkup(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)
	s = trimSentenceEnd(s)
	return strings.TrimSpace(s)
}

// StripEmphasis removes markdown emphasis characters so text can be shown
// to the learner as plain words.
func StripEmphasis(s string) string {
	return emphasisRun.ReplaceAllString(s, "")
}

func stripMarkup(s string) string {
	s = invisibleReplacer.Replace(s)
	return emphasisRun.ReplaceAllString(s, " ")
}

func trimSentenceEnd(s string) string {
	return sentenceEnd.ReplaceAllString(s, "")
}
