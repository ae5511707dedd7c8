package learn

import (
	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/pkg/textmatch"
)

// hybridWordBankThreshold is the largest answer, in tokens, that hybrid
// input still asks the learner to type.
const hybridWordBankThreshold = 2

// EffectiveInput resolves the input mode used for one card. Hybrid picks
// text for short answers and the word bank otherwise; the other modes are
// returned unchanged.
func EffectiveInput(mode entity.InputMode, correctTokenCount int) entity.InputMode {
	if mode != entity.InputHybrid {
		return mode
	}
	if correctTokenCount <= hybridWordBankThreshold {
		return entity.InputText
	}
	return entity.InputWordBank
}

// AnswerModeFor maps a resolved input mode plus the contains flag onto the
// comparison policy. Word bank input always compares exactly.
func AnswerModeFor(input entity.InputMode, useContains bool) entity.AnswerMode {
	switch {
	case input == entity.InputWordBank:
		return entity.AnswerWordBank
	case useContains:
		return entity.AnswerContains
	default:
		return entity.AnswerExact
	}
}

func matchMode(mode entity.AnswerMode) textmatch.Mode {
	switch mode {
	case entity.AnswerContains:
		return textmatch.Contains
	case entity.AnswerWordBank:
		return textmatch.WordBank
	default:
		return textmatch.Exact
	}
}

// Evaluate runs the canonical comparison for a check request against the
// expected answer. Remote checkers must produce the same outcome.
func Evaluate(userAnswer, correctAnswer string, useContains bool) entity.CheckOutcome {
	mode := textmatch.Exact
	if useContains {
		mode = textmatch.Contains
	}
	return toOutcome(textmatch.Compare(userAnswer, correctAnswer, mode))
}

func toOutcome(res textmatch.Result) entity.CheckOutcome {
	return entity.CheckOutcome{
		IsCorrect:         res.IsCorrect,
		NormalizedUser:    res.NormalizedUser,
		NormalizedCorrect: res.NormalizedCorrect,
	}
}
