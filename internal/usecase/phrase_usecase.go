package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
)

// PhraseUsecase defines business logic for phrases.
type PhraseUsecase interface {
	Create(ctx context.Context, phrase *entity.Phrase) (*entity.Phrase, error)
	Get(ctx context.Context, id int64) (*entity.Phrase, error)
	List(ctx context.Context, query *repository.ListPhraseQuery) ([]*entity.Phrase, int64, error)
	Delete(ctx context.Context, id int64) error
	Import(ctx context.Context, phrases []entity.Phrase) (ImportResult, error)
	SelectForSession(ctx context.Context, query *repository.ListPhraseQuery) ([]entity.Phrase, error)
	SelectByIDs(ctx context.Context, ids []int64) ([]entity.Phrase, error)
}

// ImportResult reports what an import did.
type ImportResult struct {
	Created  int
	Skipped  int
	Rejected []RejectedPhrase
}

// RejectedPhrase is an import row that failed validation.
type RejectedPhrase struct {
	Index int
	Err   error
}

const (
	_defaultPageSize = int32(20)
	_maxPageSize     = int32(1000)
)

type phraseUsecase struct {
	repo repository.PhraseRepository
}

func NewPhraseUsecase(repo repository.PhraseRepository) PhraseUsecase {
	return &phraseUsecase{repo: repo}
}

func (u *phraseUsecase) Create(ctx context.Context, phrase *entity.Phrase) (*entity.Phrase, error) {
	norm, err := normalizePhrase(phrase)
	if err != nil {
		return nil, err
	}
	return u.repo.Create(ctx, norm)
}

func (u *phraseUsecase) Get(ctx context.Context, id int64) (*entity.Phrase, error) {
	if id <= 0 {
		return nil, entity.ErrInvalidPhraseID
	}
	return u.repo.GetByID(ctx, id)
}

func (u *phraseUsecase) List(ctx context.Context, query *repository.ListPhraseQuery) ([]*entity.Phrase, int64, error) {
	q := repository.ListPhraseQuery{}
	if query != nil {
		q = *query
	}
	if q.PageNo <= 0 {
		q.PageNo = 1
	}
	switch {
	case q.PageSize <= 0:
		q.PageSize = _defaultPageSize
	case q.PageSize > _maxPageSize:
		q.PageSize = _maxPageSize
	}
	return u.repo.List(ctx, &q)
}

func (u *phraseUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return entity.ErrInvalidPhraseID
	}
	return u.repo.Delete(ctx, id)
}

// Import stores phrases in order. Invalid rows are rejected and duplicates
// skipped; neither stops the import. Any other error aborts it.
func (u *phraseUsecase) Import(ctx context.Context, phrases []entity.Phrase) (ImportResult, error) {
	var res ImportResult
	for i := range phrases {
		norm, err := normalizePhrase(&phrases[i])
		if err != nil {
			res.Rejected = append(res.Rejected, RejectedPhrase{Index: i, Err: err})
			continue
		}
		if _, err := u.repo.Create(ctx, norm); err != nil {
			if errors.Is(err, entity.ErrDuplicatePhrase) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("import phrase %d: %w", i, err)
		}
		res.Created++
	}
	return res, nil
}

// SelectForSession loads every phrase matching query, unpaged, in listing
// order. An empty selection is ErrNoPhrases.
func (u *phraseUsecase) SelectForSession(ctx context.Context, query *repository.ListPhraseQuery) ([]entity.Phrase, error) {
	q := repository.ListPhraseQuery{}
	if query != nil {
		q = *query
	}
	q.Pagination = repository.Pagination{}
	items, _, err := u.repo.List(ctx, &q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, entity.ErrNoPhrases
	}
	return lo.Map(items, func(p *entity.Phrase, _ int) entity.Phrase { return *p }), nil
}

// SelectByIDs loads phrases in the given order, ignoring unknown ids.
func (u *phraseUsecase) SelectByIDs(ctx context.Context, ids []int64) ([]entity.Phrase, error) {
	for _, id := range ids {
		if id <= 0 {
			return nil, entity.ErrInvalidPhraseID
		}
	}
	items, err := u.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, entity.ErrNoPhrases
	}
	return lo.Map(items, func(p *entity.Phrase, _ int) entity.Phrase { return *p }), nil
}

func normalizePhrase(in *entity.Phrase) (*entity.Phrase, error) {
	if in == nil {
		return nil, errors.New("phrase payload required")
	}
	out := *in
	out.SourceText = strings.TrimSpace(out.SourceText)
	out.TargetText = strings.TrimSpace(out.TargetText)
	if out.SourceText == "" || out.TargetText == "" {
		return nil, fmt.Errorf("%w: both sides are required", entity.ErrInvalidPhraseText)
	}
	for _, lang := range []*entity.Language{&out.SourceLanguage, &out.TargetLanguage} {
		if lang.Code() == "" {
			continue
		}
		parsed := entity.ParseLanguage(lang.Code())
		if parsed == entity.LanguageUnspecified {
			return nil, fmt.Errorf("%w: unsupported language %q", entity.ErrInvalidPhraseText, string(*lang))
		}
		*lang = parsed
	}
	return &out, nil
}
