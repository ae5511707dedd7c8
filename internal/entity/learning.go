package entity

import (
	"fmt"
	"strings"
)

// Direction selects which side of a phrase is the prompt for a session.
type Direction string

const (
	SourceToTarget Direction = "source_to_target"
	TargetToSource Direction = "target_to_source"
)

// ParseDirection accepts the canonical names plus the short aliases used by
// the CLI ("s2t", "t2s").
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SourceToTarget), "s2t":
		return SourceToTarget, nil
	case string(TargetToSource), "t2s":
		return TargetToSource, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, raw)
	}
}

// AnswerMode is the comparison policy applied to one card.
type AnswerMode string

const (
	AnswerExact    AnswerMode = "exact"
	AnswerContains AnswerMode = "contains"
	AnswerWordBank AnswerMode = "word_bank"
)

// InputMode is how the learner enters answers during a session.
type InputMode string

const (
	InputText     InputMode = "text"
	InputWordBank InputMode = "word_bank"
	InputHybrid   InputMode = "hybrid"
)

// ParseInputMode converts user input into an InputMode.
func ParseInputMode(raw string) (InputMode, error) {
	switch InputMode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", InputText:
		return InputText, nil
	case InputWordBank:
		return InputWordBank, nil
	case InputHybrid:
		return InputHybrid, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidInputMode, raw)
	}
}

// Phase is the lifecycle stage of a learn session.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseInProgress   Phase = "in_progress"
	PhaseRoundSummary Phase = "round_summary"
)

// CardResult is the learner's answer state for one card in a round.
type CardResult struct {
	IsChecked         bool     `json:"is_checked"`
	IsCorrect         *bool    `json:"is_correct"`
	UserAnswer        string   `json:"user_answer"`
	NormalizedUser    string   `json:"normalized_user"`
	NormalizedCorrect string   `json:"normalized_correct"`
	SelectedTokens    []string `json:"selected_tokens,omitempty"`
}

// Clone returns a deep copy safe to hand out of a session.
func (c CardResult) Clone() CardResult {
	out := c
	if c.IsCorrect != nil {
		v := *c.IsCorrect
		out.IsCorrect = &v
	}
	if c.SelectedTokens != nil {
		out.SelectedTokens = append([]string(nil), c.SelectedTokens...)
	}
	return out
}

// CheckRequest is the input of a remote answer check.
type CheckRequest struct {
	PhraseID        int64     `json:"phrase_id"`
	UserAnswer      string    `json:"user_answer"`
	Direction       Direction `json:"direction"`
	UseContainsMode bool      `json:"use_contains_mode"`
}

// CheckOutcome is the comparison triple produced by every check, local or remote.
type CheckOutcome struct {
	IsCorrect         bool   `json:"is_correct"`
	NormalizedUser    string `json:"normalized_user"`
	NormalizedCorrect string `json:"normalized_correct"`
}

// RoundSummary reports the results of one finished round.
type RoundSummary struct {
	RoundNumber    int `json:"round_number"`
	CorrectCount   int `json:"correct_count"`
	IncorrectCount int `json:"incorrect_count"`
	SkippedCount   int `json:"skipped_count"`
	Total          int `json:"total"`
}
