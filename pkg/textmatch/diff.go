package textmatch

import (
	"regexp"
	"strings"
)

// SegmentType marks whether a diff segment matches the other side.
type SegmentType string

const (
	SegmentEqual     SegmentType = "equal"
	SegmentDifferent SegmentType = "different"
)

// Segment is a run of original text with its match status.
type Segment struct {
	Type SegmentType `json:"type"`
	Text string      `json:"text"`
}

// DiffResult holds parallel segment lists for the user and the expected answer.
type DiffResult struct {
	User    []Segment `json:"user"`
	Correct []Segment `json:"correct"`
}

var wordOrSpace = regexp.MustCompile(`[\s\p{Z}]+|[^\s\p{Z}]+`)

type diffToken struct {
	text  string
	space bool
}

// Diff aligns two answers word by word for feedback rendering. The
// normalized forms decide whether the answers are equal as a whole; when
// they differ, words are matched greedily in order. The alignment is
// deterministic but not minimal. Concatenating the Text of one side's
// segments always reproduces that side's input.
func Diff(userAnswer, correctAnswer, normalizedUser, normalizedCorrect string) DiffResult {
	if normalizedUser == normalizedCorrect {
		return DiffResult{
			User:    []Segment{{Type: SegmentEqual, Text: userAnswer}},
			Correct: []Segment{{Type: SegmentEqual, Text: correctAnswer}},
		}
	}

	userTokens := splitDiffTokens(userAnswer)
	correctTokens := splitDiffTokens(correctAnswer)
	userMatched, correctMatched := alignWords(wordKeys(userTokens), wordKeys(correctTokens))

	return DiffResult{
		User:    renderSegments(userTokens, userMatched),
		Correct: renderSegments(correctTokens, correctMatched),
	}
}

func splitDiffTokens(s string) []diffToken {
	parts := wordOrSpace.FindAllString(s, -1)
	tokens := make([]diffToken, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, diffToken{text: p, space: strings.TrimSpace(p) == ""})
	}
	return tokens
}

func wordKeys(tokens []diffToken) []string {
	keys := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.space {
			continue
		}
		key := Normalize(t.text)
		if key == "" {
			key = strings.ToLower(t.text)
		}
		keys = append(keys, key)
	}
	return keys
}

// alignWords walks both word lists in lock-step. On a mismatch it skips a
// single word on one side when that resynchronises the pair, otherwise it
// consumes one word from each side.
func alignWords(user, correct []string) ([]bool, []bool) {
	userMatched := make([]bool, len(user))
	correctMatched := make([]bool, len(correct))

	i, j := 0, 0
	for i < len(user) && j < len(correct) {
		switch {
		case user[i] == correct[j]:
			userMatched[i], correctMatched[j] = true, true
			i++
			j++
		case j+1 < len(correct) && user[i] == correct[j+1]:
			j++
		case i+1 < len(user) && user[i+1] == correct[j]:
			i++
		default:
			i++
			j++
		}
	}
	return userMatched, correctMatched
}

func renderSegments(tokens []diffToken, matched []bool) []Segment {
	segments := make([]Segment, 0, len(tokens))
	word := 0
	for _, t := range tokens {
		typ := SegmentEqual
		if !t.space {
			if !matched[word] {
				typ = SegmentDifferent
			}
			word++
		}
		if n := len(segments); n > 0 && segments[n-1].Type == typ {
			segments[n-1].Text += t.text
			continue
		}
		segments = append(segments, Segment{Type: typ, Text: t.text})
	}
	return segments
}
