package textmatch

import (
	"fmt"
	"strings"
)

// Mode is an answer acceptance policy.
type Mode int

const (
	// Exact accepts answers whose normalized form equals the expected one.
	Exact Mode = iota
	// Contains accepts answers sharing at least one normalized word with the expected one.
	Contains
	// WordBank compares an answer assembled from tokens under Exact rules.
	WordBank
)

var modeNames = [...]string{Exact: "exact", Contains: "contains", WordBank: "word_bank"}

func (m Mode) String() string {
	if m >= Exact && m <= WordBank {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Result is the outcome of comparing one answer.
type Result struct {
	IsCorrect         bool
	NormalizedUser    string
	NormalizedCorrect string
}

// Compare checks userAnswer against correctAnswer under mode.
// WordBank callers that hold tokens should use CompareWordBank.
func Compare(userAnswer, correctAnswer string, mode Mode) Result {
	res := Result{
		NormalizedUser:    Normalize(userAnswer),
		NormalizedCorrect: Normalize(correctAnswer),
	}
	res.IsCorrect = res.NormalizedUser == res.NormalizedCorrect
	if !res.IsCorrect && mode == Contains {
		res.IsCorrect = sharesWord(res.NormalizedUser, res.NormalizedCorrect)
	}
	return res
}

// CompareWordBank joins the selected tokens with single spaces and compares
// the result under Exact rules. Word bank answers never use Contains.
func CompareWordBank(tokens []string, correctAnswer string) Result {
	return Compare(strings.Join(tokens, " "), correctAnswer, Exact)
}

func sharesWord(user, correct string) bool {
	words := strings.Fields(correct)
	if len(words) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	for _, w := range strings.Fields(user) {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
