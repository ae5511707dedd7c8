package repository

import (
	"context"

	"github.com/eslsoft/phrasedrill/internal/entity"
)

// ListPhraseQuery selects phrases. Notebook, when set, is combined with the
// filter expression.
type ListPhraseQuery struct {
	Pagination
	FilterOrder
	Notebook string
}

// PhraseRepository defines data access for phrases.
type PhraseRepository interface {
	Create(ctx context.Context, phrase *entity.Phrase) (*entity.Phrase, error)
	GetByID(ctx context.Context, id int64) (*entity.Phrase, error)
	ListByIDs(ctx context.Context, ids []int64) ([]*entity.Phrase, error)
	List(ctx context.Context, query *ListPhraseQuery) ([]*entity.Phrase, int64, error)
	Delete(ctx context.Context, id int64) error
}
