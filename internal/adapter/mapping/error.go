package mapping

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/eslsoft/phrasedrill/internal/entity"
)

var codeTable = []struct {
	code connect.Code
	errs []error
}{
	{connect.CodeInvalidArgument, []error{
		entity.ErrInvalidPhraseID, entity.ErrInvalidPhraseText, entity.ErrInvalidFilter,
		entity.ErrInvalidDirection, entity.ErrInvalidInputMode, entity.ErrPhraseNotInRound,
		entity.ErrNotCurrentCard, entity.ErrNotWordBank, entity.ErrWordBankCard, entity.ErrTokenUnavailable,
	}},
	{connect.CodeNotFound, []error{entity.ErrPhraseNotFound, entity.ErrSessionNotFound}},
	{connect.CodeAlreadyExists, []error{entity.ErrDuplicatePhrase}},
	{connect.CodeFailedPrecondition, []error{
		entity.ErrNoPhrases, entity.ErrInvalidTransition, entity.ErrCardChecked, entity.ErrCardNotChecked,
		entity.ErrNoIncorrectPhrases, entity.ErrAmendDisabled,
	}},
	{connect.CodeUnavailable, []error{entity.ErrRemoteUnavailable}},
	{connect.CodeAborted, []error{entity.ErrRemoteMismatch}},
	{connect.CodeCanceled, []error{context.Canceled}},
	{connect.CodeDeadlineExceeded, []error{context.DeadlineExceeded}},
}

// CodeOf returns the Connect code for a domain error.
func CodeOf(err error) connect.Code {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr.Code()
	}
	for _, row := range codeTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.code
			}
		}
	}
	return connect.CodeInternal
}

// ToConnectError converts a domain error into a Connect error. Errors that
// already carry a code pass through unchanged.
func ToConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	return connect.NewError(CodeOf(err), err)
}
