package entity

import "errors"

// Domain errors for phrases.
var (
	ErrPhraseNotFound    = errors.New("phrase not found")
	ErrInvalidPhraseID   = errors.New("invalid phrase ID")
	ErrInvalidPhraseText = errors.New("invalid phrase text")
	ErrDuplicatePhrase   = errors.New("phrase already exists")
	ErrInvalidFilter     = errors.New("invalid filter or order")
)

// Learn session errors. None of them leave a session half-mutated.
var (
	ErrNoPhrases          = errors.New("no phrases selected")
	ErrInvalidTransition  = errors.New("transition not allowed in current phase")
	ErrPhraseNotInRound   = errors.New("phrase is not part of the current round")
	ErrNotCurrentCard     = errors.New("phrase is not the current card")
	ErrCardChecked        = errors.New("card already checked")
	ErrCardNotChecked     = errors.New("card not checked yet")
	ErrNoIncorrectPhrases = errors.New("no incorrect phrases to repeat")
	ErrNotWordBank        = errors.New("card does not use word bank input")
	ErrWordBankCard       = errors.New("card takes its answer from the word bank")
	ErrTokenUnavailable   = errors.New("token not available in word pool")
	ErrAmendDisabled      = errors.New("amending checked answers is disabled")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidDirection   = errors.New("invalid direction")
	ErrInvalidInputMode   = errors.New("invalid input mode")
)

// Remote comparison errors. A remote failure is never an incorrect answer.
var (
	ErrRemoteUnavailable = errors.New("remote answer check unavailable")
	ErrRemoteMismatch    = errors.New("remote answer check disagrees with local result")
)
