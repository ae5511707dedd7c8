package learn

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/pkg/textmatch"
)

// Settings are chosen before Start and fixed for the session's lifetime.
type Settings struct {
	Direction       entity.Direction `json:"direction"`
	Input           entity.InputMode `json:"input"`
	UseContainsMode bool             `json:"use_contains_mode"`
	Shuffle         bool             `json:"shuffle"`
	// AllowAmend lets a checked card be reopened and checked again before
	// moving on. Counters are corrected if the outcome flips.
	AllowAmend bool `json:"allow_amend"`
}

// Option customises a Session.
type Option func(*Session)

// WithRand sets the random source used for shuffling rounds and pools.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		if rng != nil {
			s.rng = rng
		}
	}
}

type card struct {
	result  entity.CardResult
	counted bool
	bank    *TokenBank
}

// Session is one run of the learn exercise. It is not safe for concurrent
// use; hosts serialise calls.
type Session struct {
	settings Settings
	rng      *rand.Rand

	phase       entity.Phase
	phrases     []entity.Phrase
	round       []entity.Phrase
	index       int
	roundNumber int
	correct     int
	incorrect   int
	cards       map[int64]*card
	missed      []entity.Phrase
}

// NewSession creates an idle session.
func NewSession(settings Settings, opts ...Option) *Session {
	if settings.Direction == "" {
		settings.Direction = entity.SourceToTarget
	}
	if settings.Input == "" {
		settings.Input = entity.InputText
	}
	s := &Session{
		settings: settings,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		phase:    entity.PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Settings() Settings { return s.settings }
func (s *Session) Phase() entity.Phase { return s.phase }
func (s *Session) RoundNumber() int    { return s.roundNumber }
func (s *Session) CurrentIndex() int   { return s.index }

// Counts returns the running tallies of the current round.
func (s *Session) Counts() (correct, incorrect int) { return s.correct, s.incorrect }

// Round returns the phrases of the current round in play order.
func (s *Session) Round() []entity.Phrase { return append([]entity.Phrase(nil), s.round...) }

// IncorrectPhrases returns the round's phrases whose latest check failed,
// in play order.
func (s *Session) IncorrectPhrases() []entity.Phrase {
	return append([]entity.Phrase(nil), s.missed...)
}

// Start begins round one. An empty phrase list leaves the session idle and
// returns ErrNoPhrases.
func (s *Session) Start(phrases []entity.Phrase) error {
	if s.phase != entity.PhaseIdle {
		return fmt.Errorf("start from %s: %w", s.phase, entity.ErrInvalidTransition)
	}
	if len(phrases) == 0 {
		return entity.ErrNoPhrases
	}
	s.phrases = append([]entity.Phrase(nil), phrases...)
	round := s.phrases
	if s.settings.Shuffle {
		round = shuffled(s.phrases, s.rng)
	}
	s.beginRound(round, 1)
	return nil
}

func (s *Session) beginRound(round []entity.Phrase, number int) {
	s.round = append([]entity.Phrase(nil), round...)
	s.roundNumber = number
	s.index = 0
	s.correct, s.incorrect = 0, 0
	s.cards = make(map[int64]*card, len(round))
	s.missed = nil
	s.phase = entity.PhaseInProgress
}

// Current returns the card being answered.
func (s *Session) Current() (entity.Phrase, error) {
	if s.phase != entity.PhaseInProgress {
		return entity.Phrase{}, fmt.Errorf("current card in %s: %w", s.phase, entity.ErrInvalidTransition)
	}
	return s.round[s.index], nil
}

// ExpectedAnswer is the text the learner must produce for p.
func (s *Session) ExpectedAnswer(p entity.Phrase) string {
	return p.Answer(s.settings.Direction)
}

// InputFor resolves how the answer for p is entered.
func (s *Session) InputFor(p entity.Phrase) entity.InputMode {
	return EffectiveInput(s.settings.Input, len(textmatch.Tokenize(s.ExpectedAnswer(p))))
}

// ModeFor is the comparison policy applied to p.
func (s *Session) ModeFor(p entity.Phrase) entity.AnswerMode {
	return AnswerModeFor(s.InputFor(p), s.settings.UseContainsMode)
}

// Result returns a copy of the answer state recorded for a phrase.
func (s *Session) Result(phraseID int64) (entity.CardResult, bool) {
	c, ok := s.cards[phraseID]
	if !ok {
		return entity.CardResult{}, false
	}
	return c.result.Clone(), true
}

// Answers returns copies of every answer state in the current round.
func (s *Session) Answers() map[int64]entity.CardResult {
	out := make(map[int64]entity.CardResult, len(s.cards))
	for id, c := range s.cards {
		out[id] = c.result.Clone()
	}
	return out
}

func (s *Session) roundPhrase(phraseID int64) (entity.Phrase, error) {
	if s.phase != entity.PhaseInProgress {
		return entity.Phrase{}, fmt.Errorf("answer in %s: %w", s.phase, entity.ErrInvalidTransition)
	}
	p, ok := lo.Find(s.round, func(p entity.Phrase) bool { return p.ID == phraseID })
	if !ok {
		return entity.Phrase{}, fmt.Errorf("phrase %d: %w", phraseID, entity.ErrPhraseNotInRound)
	}
	return p, nil
}

func (s *Session) currentPhrase(phraseID int64) (entity.Phrase, error) {
	p, err := s.roundPhrase(phraseID)
	if err != nil {
		return p, err
	}
	if s.round[s.index].ID != phraseID {
		return p, fmt.Errorf("phrase %d: %w", phraseID, entity.ErrNotCurrentCard)
	}
	return p, nil
}

func (s *Session) cardFor(phraseID int64) *card {
	c, ok := s.cards[phraseID]
	if !ok {
		c = &card{}
		s.cards[phraseID] = c
	}
	return c
}

// SetAnswer stores typed text for a card that is still unchecked.
func (s *Session) SetAnswer(phraseID int64, value string) error {
	p, err := s.roundPhrase(phraseID)
	if err != nil {
		return err
	}
	if s.InputFor(p) == entity.InputWordBank {
		return fmt.Errorf("phrase %d: %w", phraseID, entity.ErrWordBankCard)
	}
	if c, ok := s.cards[phraseID]; ok && c.result.IsChecked {
		return fmt.Errorf("phrase %d: %w", phraseID, entity.ErrCardChecked)
	}
	s.cardFor(phraseID).result.UserAnswer = value
	return nil
}

func (s *Session) bankFor(p entity.Phrase) *TokenBank {
	c := s.cardFor(p.ID)
	if c.bank == nil {
		c.bank = NewTokenBank(BuildWordPool(PoolInput{
			CorrectAnswer:   s.ExpectedAnswer(p),
			Siblings:        s.phrases,
			CurrentPhraseID: p.ID,
			Direction:       s.settings.Direction,
		}, s.rng))
	}
	return c.bank
}

func (s *Session) wordBankCard(phraseID int64) (entity.Phrase, *card, error) {
	p, err := s.currentPhrase(phraseID)
	if err != nil {
		return p, nil, err
	}
	if s.InputFor(p) != entity.InputWordBank {
		return p, nil, fmt.Errorf("phrase %d: %w", phraseID, entity.ErrNotWordBank)
	}
	s.bankFor(p)
	return p, s.cards[phraseID], nil
}

// WordPool returns the tiles of the current card's word bank. The pool is
// built on first access and stays stable for the rest of the round.
func (s *Session) WordPool(phraseID int64) ([]Tile, error) {
	_, c, err := s.wordBankCard(phraseID)
	if err != nil {
		return nil, err
	}
	return c.bank.Tiles(), nil
}

// SelectToken appends a pool token to the current card's answer. When the
// selection reaches the length of the correct answer the card is checked
// immediately and the outcome is returned; otherwise the outcome is nil.
func (s *Session) SelectToken(phraseID int64, token string) (*entity.CheckOutcome, error) {
	p, c, err := s.wordBankCard(phraseID)
	if err != nil {
		return nil, err
	}
	if c.result.IsChecked {
		return nil, fmt.Errorf("phrase %d: %w", phraseID, entity.ErrCardChecked)
	}
	if err := c.bank.Select(token); err != nil {
		return nil, err
	}
	s.syncSelection(c)

	if len(c.result.SelectedTokens) != len(textmatch.Tokenize(s.ExpectedAnswer(p))) {
		return nil, nil
	}
	outcome, err := s.Check()
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// RemoveToken returns the selected token at index to the pool.
func (s *Session) RemoveToken(phraseID int64, index int) error {
	_, c, err := s.wordBankCard(phraseID)
	if err != nil {
		return err
	}
	if c.result.IsChecked {
		return fmt.Errorf("phrase %d: %w", phraseID, entity.ErrCardChecked)
	}
	if _, err := c.bank.Remove(index); err != nil {
		return err
	}
	s.syncSelection(c)
	return nil
}

func (s *Session) syncSelection(c *card) {
	c.result.SelectedTokens = c.bank.Selected()
	c.result.UserAnswer = strings.Join(c.result.SelectedTokens, " ")
}

func (s *Session) evaluate(p entity.Phrase, c *card) entity.CheckOutcome {
	correct := s.ExpectedAnswer(p)
	if s.InputFor(p) == entity.InputWordBank {
		return toOutcome(textmatch.CompareWordBank(c.result.SelectedTokens, correct))
	}
	return toOutcome(textmatch.Compare(c.result.UserAnswer, correct, matchMode(s.ModeFor(p))))
}

// Check evaluates the current card locally and freezes it. A card that is
// already checked is left untouched and ErrCardChecked is returned.
func (s *Session) Check() (entity.CheckOutcome, error) {
	p, err := s.Current()
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	c := s.cardFor(p.ID)
	if c.result.IsChecked {
		return entity.CheckOutcome{}, fmt.Errorf("phrase %d: %w", p.ID, entity.ErrCardChecked)
	}
	outcome := s.evaluate(p, c)
	s.apply(c, outcome)
	return outcome, nil
}

func (s *Session) apply(c *card, outcome entity.CheckOutcome) {
	switch {
	case !c.counted:
		if outcome.IsCorrect {
			s.correct++
		} else {
			s.incorrect++
		}
		c.counted = true
	case c.result.IsCorrect != nil && *c.result.IsCorrect != outcome.IsCorrect:
		if outcome.IsCorrect {
			s.correct++
			s.incorrect--
		} else {
			s.correct--
			s.incorrect++
		}
	}

	isCorrect := outcome.IsCorrect
	c.result.IsChecked = true
	c.result.IsCorrect = &isCorrect
	c.result.NormalizedUser = outcome.NormalizedUser
	c.result.NormalizedCorrect = outcome.NormalizedCorrect
	s.refreshMissed()
}

func (s *Session) refreshMissed() {
	s.missed = lo.Filter(s.round, func(p entity.Phrase, _ int) bool {
		c, ok := s.cards[p.ID]
		return ok && c.result.IsChecked && c.result.IsCorrect != nil && !*c.result.IsCorrect
	})
}

// Reopen unfreezes the current, checked card so its answer can be amended.
// It requires Settings.AllowAmend.
func (s *Session) Reopen(phraseID int64) error {
	if !s.settings.AllowAmend {
		return entity.ErrAmendDisabled
	}
	if _, err := s.currentPhrase(phraseID); err != nil {
		return err
	}
	c, ok := s.cards[phraseID]
	if !ok || !c.result.IsChecked {
		return fmt.Errorf("phrase %d: %w", phraseID, entity.ErrCardNotChecked)
	}
	c.result.IsChecked = false
	s.refreshMissed()
	return nil
}

// Skip moves past the current card without checking it. Skipped cards count
// neither as correct nor as missed.
func (s *Session) Skip() error {
	p, err := s.Current()
	if err != nil {
		return err
	}
	if c, ok := s.cards[p.ID]; ok && (c.result.IsChecked || c.counted) {
		return fmt.Errorf("skip phrase %d: %w", p.ID, entity.ErrCardChecked)
	}
	s.advance()
	return nil
}

// Next moves past the current card once it has been checked.
func (s *Session) Next() error {
	p, err := s.Current()
	if err != nil {
		return err
	}
	if c, ok := s.cards[p.ID]; !ok || !c.result.IsChecked {
		return fmt.Errorf("next from phrase %d: %w", p.ID, entity.ErrCardNotChecked)
	}
	s.advance()
	return nil
}

func (s *Session) advance() {
	if s.index == len(s.round)-1 {
		s.phase = entity.PhaseRoundSummary
		return
	}
	s.index++
}

// ConfirmResult reports what a confirm action did.
type ConfirmResult struct {
	Outcome  *entity.CheckOutcome
	Advanced bool
}

// Confirm is the single "confirm" key: it checks an unchecked card and
// advances from a checked one.
func (s *Session) Confirm() (ConfirmResult, error) {
	p, err := s.Current()
	if err != nil {
		return ConfirmResult{}, err
	}
	if c, ok := s.cards[p.ID]; ok && c.result.IsChecked {
		if err := s.Next(); err != nil {
			return ConfirmResult{}, err
		}
		return ConfirmResult{Advanced: true}, nil
	}
	outcome, err := s.Check()
	if err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{Outcome: &outcome}, nil
}

// Summary reports the current round's tallies. Cards passed without a
// check are counted as skipped.
func (s *Session) Summary() entity.RoundSummary {
	passed := s.index
	if s.phase == entity.PhaseRoundSummary {
		passed = len(s.round)
	}
	skipped := 0
	for _, p := range s.round[:passed] {
		if c, ok := s.cards[p.ID]; !ok || !c.counted {
			skipped++
		}
	}
	return entity.RoundSummary{
		RoundNumber:    s.roundNumber,
		CorrectCount:   s.correct,
		IncorrectCount: s.incorrect,
		SkippedCount:   skipped,
		Total:          len(s.round),
	}
}

// ContinueWithIncorrect starts the next round with the phrases missed in
// this one. Repeat rounds are always shuffled.
func (s *Session) ContinueWithIncorrect() error {
	if s.phase != entity.PhaseRoundSummary {
		return fmt.Errorf("continue from %s: %w", s.phase, entity.ErrInvalidTransition)
	}
	if len(s.missed) == 0 {
		return entity.ErrNoIncorrectPhrases
	}
	s.beginRound(shuffled(s.missed, s.rng), s.roundNumber+1)
	return nil
}

// Finish ends the session and returns it to idle.
func (s *Session) Finish() {
	*s = Session{settings: s.settings, rng: s.rng, phase: entity.PhaseIdle}
}

// Restart is Finish under the name the configuration screen uses.
func (s *Session) Restart() { s.Finish() }

// Feedback diffs the learner's answer against the expected one for a
// checked card, with emphasis markup removed for display.
func (s *Session) Feedback(phraseID int64) (textmatch.DiffResult, error) {
	p, err := s.roundPhrase(phraseID)
	if err != nil {
		return textmatch.DiffResult{}, err
	}
	c, ok := s.cards[phraseID]
	if !ok || !c.result.IsChecked {
		return textmatch.DiffResult{}, fmt.Errorf("phrase %d: %w", phraseID, entity.ErrCardNotChecked)
	}
	return textmatch.Diff(
		textmatch.StripEmphasis(c.result.UserAnswer),
		textmatch.StripEmphasis(s.ExpectedAnswer(p)),
		c.result.NormalizedUser,
		c.result.NormalizedCorrect,
	), nil
}

// CheckRequest builds the remote check payload for a card's current answer.
func (s *Session) CheckRequest(phraseID int64) (entity.CheckRequest, error) {
	p, err := s.roundPhrase(phraseID)
	if err != nil {
		return entity.CheckRequest{}, err
	}
	answer := ""
	if c, ok := s.cards[phraseID]; ok {
		answer = c.result.UserAnswer
	}
	return entity.CheckRequest{
		PhraseID:        p.ID,
		UserAnswer:      answer,
		Direction:       s.settings.Direction,
		UseContainsMode: s.ModeFor(p) == entity.AnswerContains,
	}, nil
}

// CheckRemote checks the current card through a remote checker. A failed
// call returns ErrRemoteUnavailable and leaves the card unchecked. On
// success the local outcome is applied; if the remote outcome differs the
// card is still checked and the returned error wraps ErrRemoteMismatch.
func (s *Session) CheckRemote(ctx context.Context, checker RemoteChecker) (entity.CheckOutcome, error) {
	p, err := s.Current()
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	c := s.cardFor(p.ID)
	if c.result.IsChecked {
		return entity.CheckOutcome{}, fmt.Errorf("phrase %d: %w", p.ID, entity.ErrCardChecked)
	}
	req, err := s.CheckRequest(p.ID)
	if err != nil {
		return entity.CheckOutcome{}, err
	}
	remote, err := checker.CheckAnswer(ctx, req)
	if err != nil {
		return entity.CheckOutcome{}, fmt.Errorf("%w: %w", entity.ErrRemoteUnavailable, err)
	}

	local := s.evaluate(p, c)
	s.apply(c, local)
	if remote != local {
		return local, fmt.Errorf("phrase %d: %w: remote=%+v local=%+v", p.ID, entity.ErrRemoteMismatch, remote, local)
	}
	return local, nil
}
