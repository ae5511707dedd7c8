package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/samber/lo"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/pkg/filterexpr"
)

const phrasesTable = "phrases"

var phraseColumns = []string{
	"id", "notebook", "source_text", "target_text", "source_language", "target_language",
	"difficulty", "source_audio", "target_audio", "created_at", "updated_at",
}

type phraseRepository struct {
	drv dialect.Driver
	now func() time.Time
}

// NewPhraseRepository creates a SQL phrase repository over an ent driver.
func NewPhraseRepository(drv dialect.Driver) repository.PhraseRepository {
	return &phraseRepository{drv: drv, now: time.Now}
}

func (r *phraseRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *phraseRepository) Create(ctx context.Context, phrase *entity.Phrase) (*entity.Phrase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if phrase == nil {
		return nil, entity.ErrInvalidPhraseText
	}
	p := *phrase
	p.Normalize(r.now().UTC())

	insert := r.builder().Insert(phrasesTable).
		Columns(phraseColumns[1:]...).
		Values(p.Notebook, p.SourceText, p.TargetText, p.SourceLanguage.Code(), p.TargetLanguage.Code(),
			p.Difficulty, p.Audio.Source, p.Audio.Target, p.CreatedAt, p.UpdatedAt)

	if r.drv.Dialect() == dialect.Postgres {
		query, args := insert.Returning("id").Query()
		rows := &entsql.Rows{}
		if err := r.drv.Query(ctx, query, args, rows); err != nil {
			return nil, translatePhraseError(err)
		}
		defer rows.Close()
		if !rows.Next() {
			if err := rows.Err(); err != nil {
				return nil, translatePhraseError(err)
			}
			return nil, errors.New("insert phrase: no id returned")
		}
		if err := rows.Scan(&p.ID); err != nil {
			return nil, fmt.Errorf("scan phrase id: %w", err)
		}
		return &p, nil
	}

	query, args := insert.Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, translatePhraseError(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("phrase id: %w", err)
	}
	p.ID = id
	return &p, nil
}

func (r *phraseRepository) GetByID(ctx context.Context, id int64) (*entity.Phrase, error) {
	if id <= 0 {
		return nil, entity.ErrInvalidPhraseID
	}
	t := entsql.Table(phrasesTable)
	sel := r.builder().Select(t.Columns(phraseColumns...)...).From(t).Where(entsql.EQ(t.C("id"), id))
	items, err := r.queryPhrases(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("get phrase: %w", err)
	}
	if len(items) == 0 {
		return nil, entity.ErrPhraseNotFound
	}
	return items[0], nil
}

// ListByIDs returns the phrases in the order of ids; unknown ids are skipped.
func (r *phraseRepository) ListByIDs(ctx context.Context, ids []int64) ([]*entity.Phrase, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	t := entsql.Table(phrasesTable)
	sel := r.builder().Select(t.Columns(phraseColumns...)...).From(t).
		Where(entsql.In(t.C("id"), lo.ToAnySlice(lo.Uniq(ids))...))
	items, err := r.queryPhrases(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("list phrases by id: %w", err)
	}
	byID := lo.KeyBy(items, func(p *entity.Phrase) int64 { return p.ID })
	return lo.FilterMap(ids, func(id int64, _ int) (*entity.Phrase, bool) {
		p, ok := byID[id]
		return p, ok
	}), nil
}

func (r *phraseRepository) List(ctx context.Context, query *repository.ListPhraseQuery) ([]*entity.Phrase, int64, error) {
	if query == nil {
		query = &repository.ListPhraseQuery{}
	}
	conds, err := filterexpr.Parse(query.Filter, listPhrasesSchema.Fields)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: filter: %v", entity.ErrInvalidFilter, err)
	}
	order, err := filterexpr.ParseOrder(query.OrderBy, listPhrasesSchema.Order)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: order_by: %v", entity.ErrInvalidFilter, err)
	}

	t := entsql.Table(phrasesTable)
	sel := r.builder().Select(t.Columns(phraseColumns...)...).From(t)
	if preds := phrasePredicates(t, query.Notebook, conds); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	for _, term := range order {
		if term.Desc {
			sel.OrderBy(entsql.Desc(t.C(term.Key)))
		} else {
			sel.OrderBy(entsql.Asc(t.C(term.Key)))
		}
	}
	if query.Paged() {
		sel.Limit(int(query.PageSize)).Offset(int(query.Offset()))
	}

	items, err := r.queryPhrases(ctx, sel)
	if err != nil {
		return nil, 0, fmt.Errorf("list phrases: %w", err)
	}

	total := int64(len(items))
	if query.Paged() {
		count := r.builder().Select(entsql.Count("*")).From(t)
		if preds := phrasePredicates(t, query.Notebook, conds); len(preds) > 0 {
			count.Where(entsql.And(preds...))
		}
		if total, err = r.count(ctx, count); err != nil {
			return nil, 0, fmt.Errorf("count phrases: %w", err)
		}
	}
	return items, total, nil
}

func (r *phraseRepository) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return entity.ErrInvalidPhraseID
	}
	query, args := r.builder().Delete(phrasesTable).Where(entsql.EQ("id", id)).Query()
	var res sql.Result
	if err := r.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete phrase: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete phrase: %w", err)
	}
	if affected == 0 {
		return entity.ErrPhraseNotFound
	}
	return nil
}

// phrasePredicates builds fresh predicates on every call; a predicate is
// bound to the selector it is rendered into.
func phrasePredicates(t *entsql.SelectTable, notebook string, conds []filterexpr.Condition) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if nb := strings.TrimSpace(notebook); nb != "" {
		preds = append(preds, entsql.EQ(t.C("notebook"), nb))
	}
	for _, c := range conds {
		switch c.Field {
		case "keyword":
			preds = append(preds, entsql.Or(
				entsql.ContainsFold(t.C("source_text"), c.String()),
				entsql.ContainsFold(t.C("target_text"), c.String()),
			))
		case "has_audio":
			either := entsql.Or(entsql.EQ(t.C("source_audio"), true), entsql.EQ(t.C("target_audio"), true))
			if v, _ := c.Value.(bool); !v {
				either = entsql.Not(either)
			}
			preds = append(preds, either)
		default:
			col := t.C(filterColumns[c.Field])
			switch c.Op {
			case filterexpr.OpEQ:
				preds = append(preds, entsql.EQ(col, c.Value))
			case filterexpr.OpIN:
				preds = append(preds, entsql.In(col, lo.ToAnySlice(c.Strings())...))
			case filterexpr.OpSW:
				preds = append(preds, entsql.HasPrefix(col, c.String()))
			case filterexpr.OpGTE:
				preds = append(preds, entsql.GTE(col, literalFor(c)))
			case filterexpr.OpLTE:
				preds = append(preds, entsql.LTE(col, literalFor(c)))
			}
		}
	}
	return preds
}

// literalFor converts numeric literals to int64 for integer columns.
func literalFor(c filterexpr.Condition) any {
	if c.Field == "id" {
		return int64(c.Number())
	}
	return c.Value
}

func (r *phraseRepository) queryPhrases(ctx context.Context, sel *entsql.Selector) ([]*entity.Phrase, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*entity.Phrase
	for rows.Next() {
		var (
			p                      entity.Phrase
			sourceLang, targetLang string
		)
		if err := rows.Scan(&p.ID, &p.Notebook, &p.SourceText, &p.TargetText, &sourceLang, &targetLang,
			&p.Difficulty, &p.Audio.Source, &p.Audio.Target, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan phrase: %w", err)
		}
		p.SourceLanguage = entity.Language(sourceLang)
		p.TargetLanguage = entity.Language(targetLang)
		items = append(items, &p)
	}
	return items, rows.Err()
}

func (r *phraseRepository) count(ctx context.Context, sel *entsql.Selector) (int64, error) {
	query, args := sel.Query()
	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return 0, err
	}
	defer rows.Close()
	var total int64
	if rows.Next() {
		if err := rows.Scan(&total); err != nil {
			return 0, err
		}
	}
	return total, rows.Err()
}

func translatePhraseError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return entity.ErrDuplicatePhrase
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return entity.ErrDuplicatePhrase
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return entity.ErrDuplicatePhrase
	}
	return fmt.Errorf("insert phrase: %w", err)
}
