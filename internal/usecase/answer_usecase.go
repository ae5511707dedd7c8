package usecase

import (
	"context"
	"fmt"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
)

// AnswerUsecase is the server side of remote answer checking.
type AnswerUsecase interface {
	Check(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error)
}

type answerUsecase struct {
	repo repository.PhraseRepository
}

func NewAnswerUsecase(repo repository.PhraseRepository) AnswerUsecase {
	return &answerUsecase{repo: repo}
}

// Check compares the answer against the stored phrase with the same rules
// a local session applies.
func (u *answerUsecase) Check(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
	if req.PhraseID <= 0 {
		return entity.CheckOutcome{}, entity.ErrInvalidPhraseID
	}
	direction, err := entity.ParseDirection(string(req.Direction))
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	phrase, err := u.repo.GetByID(ctx, req.PhraseID)
	if err != nil {
		return entity.CheckOutcome{}, fmt.Errorf("load phrase %d: %w", req.PhraseID, err)
	}
	return learn.Evaluate(req.UserAnswer, phrase.Answer(direction), req.UseContainsMode), nil
}
