package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
	"github.com/eslsoft/phrasedrill/pkg/textmatch"
)

// SessionUsecase hosts learn sessions for remote clients. Every call on a
// session is serialised by that session's own lock.
type SessionUsecase interface {
	Start(ctx context.Context, in StartSessionInput) (*SessionView, error)
	Get(ctx context.Context, id string) (*SessionView, error)
	SetAnswer(ctx context.Context, id string, phraseID int64, value string) (*SessionView, error)
	SelectToken(ctx context.Context, id string, phraseID int64, token string) (*SessionView, error)
	RemoveToken(ctx context.Context, id string, phraseID int64, index int) (*SessionView, error)
	Check(ctx context.Context, id string) (*SessionView, error)
	Confirm(ctx context.Context, id string) (*SessionView, error)
	Skip(ctx context.Context, id string) (*SessionView, error)
	Next(ctx context.Context, id string) (*SessionView, error)
	Reopen(ctx context.Context, id string, phraseID int64) (*SessionView, error)
	Continue(ctx context.Context, id string) (*SessionView, error)
	Finish(ctx context.Context, id string) (*SessionView, error)
}

// StartSessionInput selects phrases either by id or by query.
type StartSessionInput struct {
	Settings  learn.Settings
	PhraseIDs []int64
	Query     repository.ListPhraseQuery
}

// SessionView is a snapshot of a hosted session.
type SessionView struct {
	ID             string               `json:"id"`
	Phase          entity.Phase         `json:"phase"`
	Settings       learn.Settings       `json:"settings"`
	RoundNumber    int                  `json:"round_number"`
	Index          int                  `json:"index"`
	Total          int                  `json:"total"`
	CorrectCount   int                  `json:"correct_count"`
	IncorrectCount int                  `json:"incorrect_count"`
	Card           *CardView            `json:"card,omitempty"`
	Summary        *entity.RoundSummary `json:"summary,omitempty"`
}

// CardView describes the current card.
type CardView struct {
	PhraseID int64                    `json:"phrase_id"`
	Prompt   string                   `json:"prompt"`
	Input    entity.InputMode         `json:"input"`
	Mode     entity.AnswerMode        `json:"mode"`
	Audio    entity.AudioAvailability `json:"audio"`
	Result   entity.CardResult        `json:"result"`
	Tiles    []learn.Tile             `json:"tiles,omitempty"`
	Feedback *textmatch.DiffResult    `json:"feedback,omitempty"`
}

type hostedSession struct {
	mu      sync.Mutex
	session *learn.Session
	// touched holds unix nanos; eviction reads it without taking mu.
	touched atomic.Int64
}

func (h *hostedSession) idle(now time.Time) time.Duration {
	return time.Duration(now.UnixNano() - h.touched.Load())
}

type sessionUsecase struct {
	phrases PhraseUsecase
	ttl     time.Duration
	clock   func() time.Time
	seed    func() int64

	mu       sync.RWMutex
	sessions map[string]*hostedSession
}

// NewSessionUsecase creates a session host. Sessions idle for longer than
// ttl are dropped; a zero ttl keeps them until finished.
func NewSessionUsecase(phrases PhraseUsecase, ttl time.Duration) SessionUsecase {
	return &sessionUsecase{
		phrases:  phrases,
		ttl:      ttl,
		clock:    time.Now,
		seed:     func() int64 { return time.Now().UnixNano() },
		sessions: make(map[string]*hostedSession),
	}
}

func (u *sessionUsecase) Start(ctx context.Context, in StartSessionInput) (*SessionView, error) {
	var (
		phrases []entity.Phrase
		err     error
	)
	if len(in.PhraseIDs) > 0 {
		phrases, err = u.phrases.SelectByIDs(ctx, in.PhraseIDs)
	} else {
		phrases, err = u.phrases.SelectForSession(ctx, &in.Query)
	}
	if err != nil {
		return nil, fmt.Errorf("select phrases: %w", err)
	}

	s := learn.NewSession(in.Settings, learn.WithRand(rand.New(rand.NewSource(u.seed()))))
	if err := s.Start(phrases); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	view, err := buildView(id, s)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	u.mu.Lock()
	u.evictLocked(now)
	h := &hostedSession{session: s}
	h.touched.Store(now.UnixNano())
	u.sessions[id] = h
	u.mu.Unlock()
	return view, nil
}

func (u *sessionUsecase) evictLocked(now time.Time) {
	if u.ttl <= 0 {
		return
	}
	for id, h := range u.sessions {
		if h.idle(now) > u.ttl {
			delete(u.sessions, id)
		}
	}
}

// with runs fn on the session under its lock and returns a fresh view even
// when fn fails, so callers can render the unchanged state.
func (u *sessionUsecase) with(ctx context.Context, id string, fn func(s *learn.Session) error) (*SessionView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.mu.RLock()
	h, ok := u.sessions[id]
	u.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, entity.ErrSessionNotFound)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	now := u.clock()
	if u.ttl > 0 && h.idle(now) > u.ttl {
		u.mu.Lock()
		delete(u.sessions, id)
		u.mu.Unlock()
		return nil, fmt.Errorf("session %q expired: %w", id, entity.ErrSessionNotFound)
	}
	h.touched.Store(now.UnixNano())

	if err := fn(h.session); err != nil {
		return nil, err
	}
	return buildView(id, h.session)
}

func (u *sessionUsecase) Get(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(*learn.Session) error { return nil })
}

func (u *sessionUsecase) SetAnswer(ctx context.Context, id string, phraseID int64, value string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.SetAnswer(phraseID, value) })
}

func (u *sessionUsecase) SelectToken(ctx context.Context, id string, phraseID int64, token string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error {
		_, err := s.SelectToken(phraseID, token)
		return err
	})
}

func (u *sessionUsecase) RemoveToken(ctx context.Context, id string, phraseID int64, index int) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.RemoveToken(phraseID, index) })
}

func (u *sessionUsecase) Check(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error {
		_, err := s.Check()
		return err
	})
}

func (u *sessionUsecase) Confirm(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error {
		_, err := s.Confirm()
		return err
	})
}

func (u *sessionUsecase) Skip(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.Skip() })
}

func (u *sessionUsecase) Next(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.Next() })
}

func (u *sessionUsecase) Reopen(ctx context.Context, id string, phraseID int64) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.Reopen(phraseID) })
}

func (u *sessionUsecase) Continue(ctx context.Context, id string) (*SessionView, error) {
	return u.with(ctx, id, func(s *learn.Session) error { return s.ContinueWithIncorrect() })
}

// Finish returns the final view, with the last summary, and forgets the session.
func (u *sessionUsecase) Finish(ctx context.Context, id string) (*SessionView, error) {
	var summary entity.RoundSummary
	view, err := u.with(ctx, id, func(s *learn.Session) error {
		summary = s.Summary()
		s.Finish()
		return nil
	})
	if err != nil {
		return nil, err
	}
	view.Summary = &summary

	u.mu.Lock()
	delete(u.sessions, id)
	u.mu.Unlock()
	return view, nil
}

func buildView(id string, s *learn.Session) (*SessionView, error) {
	correct, incorrect := s.Counts()
	view := &SessionView{
		ID:             id,
		Phase:          s.Phase(),
		Settings:       s.Settings(),
		RoundNumber:    s.RoundNumber(),
		Index:          s.CurrentIndex(),
		Total:          len(s.Round()),
		CorrectCount:   correct,
		IncorrectCount: incorrect,
	}

	switch s.Phase() {
	case entity.PhaseRoundSummary:
		summary := s.Summary()
		view.Summary = &summary
	case entity.PhaseInProgress:
		card, err := buildCard(s)
		if err != nil {
			return nil, err
		}
		view.Card = card
	}
	return view, nil
}

func buildCard(s *learn.Session) (*CardView, error) {
	p, err := s.Current()
	if err != nil {
		return nil, err
	}
	card := &CardView{
		PhraseID: p.ID,
		Prompt:   p.Prompt(s.Settings().Direction),
		Input:    s.InputFor(p),
		Mode:     s.ModeFor(p),
		Audio:    p.Audio,
	}
	if res, ok := s.Result(p.ID); ok {
		card.Result = res
	}
	if card.Input == entity.InputWordBank {
		if card.Tiles, err = s.WordPool(p.ID); err != nil {
			return nil, err
		}
	}
	if card.Result.IsChecked {
		diff, err := s.Feedback(p.ID)
		if err != nil {
			return nil, err
		}
		card.Feedback = &diff
	}
	return card, nil
}
