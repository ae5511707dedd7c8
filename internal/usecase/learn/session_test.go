package learn

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/eslsoft/phrasedrill/internal/entity"
)

func samplePhrases() []entity.Phrase {
	return []entity.Phrase{
		{ID: 1, SourceText: "accident", TargetText: "wypadek"},
		{ID: 2, SourceText: "yes", TargetText: "tak"},
		{ID: 3, SourceText: "I don't know", TargetText: "nie wiem"},
		{ID: 4, SourceText: "good morning", TargetText: "dzień dobry"},
		{ID: 5, SourceText: "thank you", TargetText: "dziękuję"},
	}
}

func newTestSession(t *testing.T, settings Settings, phrases []entity.Phrase) *Session {
	t.Helper()
	s := NewSession(settings, WithRand(rand.New(rand.NewSource(7))))
	if err := s.Start(phrases); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	return s
}

func answerCurrent(t *testing.T, s *Session, value string) entity.CheckOutcome {
	t.Helper()
	p, err := s.Current()
	if err != nil {
		t.Fatalf("Current returned error: %v", err)
	}
	if err := s.SetAnswer(p.ID, value); err != nil {
		t.Fatalf("SetAnswer(%d) returned error: %v", p.ID, err)
	}
	outcome, err := s.Check()
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	return outcome
}

func TestStartWithoutPhrasesStaysIdle(t *testing.T) {
	s := NewSession(Settings{})
	if err := s.Start(nil); !errors.Is(err, entity.ErrNoPhrases) {
		t.Fatalf("expected ErrNoPhrases, got %v", err)
	}
	if s.Phase() != entity.PhaseIdle {
		t.Fatalf("expected idle phase, got %s", s.Phase())
	}
}

func TestStartTwiceRejected(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.Start(samplePhrases()); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestShuffleKeepsEveryPhraseOnce(t *testing.T) {
	s := newTestSession(t, Settings{Shuffle: true}, samplePhrases())
	seen := make(map[int64]int)
	for _, p := range s.Round() {
		seen[p.ID]++
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct phrases, got %v", seen)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("phrase %d appears %d times", id, n)
		}
	}
}

func TestRoundWithThreeOfFiveCorrect(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	answers := []string{"Wypadek!", "nie", "nie wiem", "zły", "dziękuję."}
	for i, a := range answers {
		answerCurrent(t, s, a)
		correct, incorrect := s.Counts()
		if correct+incorrect != i+1 {
			t.Fatalf("after card %d expected %d counted, got %d+%d", i, i+1, correct, incorrect)
		}
		if err := s.Next(); err != nil {
			t.Fatalf("Next returned error: %v", err)
		}
	}

	if s.Phase() != entity.PhaseRoundSummary {
		t.Fatalf("expected round summary, got %s", s.Phase())
	}
	summary := s.Summary()
	if summary.CorrectCount != 3 || summary.IncorrectCount != 2 || summary.SkippedCount != 0 || summary.Total != 5 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	missed := s.IncorrectPhrases()
	if len(missed) != 2 || missed[0].ID != 2 || missed[1].ID != 4 {
		t.Fatalf("unexpected incorrect phrases: %+v", missed)
	}

	if err := s.ContinueWithIncorrect(); err != nil {
		t.Fatalf("ContinueWithIncorrect returned error: %v", err)
	}
	if s.RoundNumber() != 2 || len(s.Round()) != 2 {
		t.Fatalf("expected round 2 with 2 cards, got round %d with %d", s.RoundNumber(), len(s.Round()))
	}
	if correct, incorrect := s.Counts(); correct != 0 || incorrect != 0 {
		t.Fatalf("expected counters reset, got %d/%d", correct, incorrect)
	}
	if len(s.Answers()) != 0 || len(s.IncorrectPhrases()) != 0 {
		t.Fatal("expected answers and misses reset for the new round")
	}
}

func TestContinueWithoutMissesRejected(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases()[:1])
	answerCurrent(t, s, "wypadek")
	if err := s.Next(); err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if err := s.ContinueWithIncorrect(); !errors.Is(err, entity.ErrNoIncorrectPhrases) {
		t.Fatalf("expected ErrNoIncorrectPhrases, got %v", err)
	}
	if s.Phase() != entity.PhaseRoundSummary {
		t.Fatalf("phase changed to %s", s.Phase())
	}
}

func TestNextRequiresCheckedCard(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.Next(); !errors.Is(err, entity.ErrCardNotChecked) {
		t.Fatalf("expected ErrCardNotChecked, got %v", err)
	}
	if s.CurrentIndex() != 0 {
		t.Fatalf("index moved to %d", s.CurrentIndex())
	}
}

func TestSkipCountsAsSkipped(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases()[:2])
	if err := s.Skip(); err != nil {
		t.Fatalf("Skip returned error: %v", err)
	}
	answerCurrent(t, s, "tak")
	if err := s.Skip(); !errors.Is(err, entity.ErrCardChecked) {
		t.Fatalf("expected ErrCardChecked when skipping a checked card, got %v", err)
	}
	if err := s.Next(); err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	summary := s.Summary()
	if summary.CorrectCount != 1 || summary.IncorrectCount != 0 || summary.SkippedCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(s.IncorrectPhrases()) != 0 {
		t.Fatal("skipped card must not be repeated")
	}
}

func TestSecondCheckIsNoOpWithoutAmend(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	answerCurrent(t, s, "zły")
	if _, err := s.Check(); !errors.Is(err, entity.ErrCardChecked) {
		t.Fatalf("expected ErrCardChecked, got %v", err)
	}
	if err := s.SetAnswer(1, "wypadek"); !errors.Is(err, entity.ErrCardChecked) {
		t.Fatalf("expected frozen answer, got %v", err)
	}
	if err := s.Reopen(1); !errors.Is(err, entity.ErrAmendDisabled) {
		t.Fatalf("expected ErrAmendDisabled, got %v", err)
	}
	if correct, incorrect := s.Counts(); correct != 0 || incorrect != 1 {
		t.Fatalf("expected 0/1, got %d/%d", correct, incorrect)
	}
}

func TestAmendFlipsCounters(t *testing.T) {
	s := newTestSession(t, Settings{AllowAmend: true}, samplePhrases())
	answerCurrent(t, s, "zły")
	if err := s.Reopen(1); err != nil {
		t.Fatalf("Reopen returned error: %v", err)
	}
	outcome := answerCurrent(t, s, "wypadek")
	if !outcome.IsCorrect {
		t.Fatalf("expected amended answer to be correct: %+v", outcome)
	}
	if correct, incorrect := s.Counts(); correct != 1 || incorrect != 0 {
		t.Fatalf("expected 1/0 after flip, got %d/%d", correct, incorrect)
	}
	if len(s.IncorrectPhrases()) != 0 {
		t.Fatal("amended card still listed as incorrect")
	}

	if err := s.Reopen(1); err != nil {
		t.Fatalf("Reopen returned error: %v", err)
	}
	answerCurrent(t, s, "wypadek")
	if correct, incorrect := s.Counts(); correct != 1 || incorrect != 0 {
		t.Fatalf("same outcome must not double count, got %d/%d", correct, incorrect)
	}
}

func TestConfirmChecksThenAdvances(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.SetAnswer(1, "wypadek"); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	res, err := s.Confirm()
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if res.Outcome == nil || !res.Outcome.IsCorrect || res.Advanced {
		t.Fatalf("first confirm should check: %+v", res)
	}
	res, err = s.Confirm()
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if !res.Advanced || s.CurrentIndex() != 1 {
		t.Fatalf("second confirm should advance: %+v index=%d", res, s.CurrentIndex())
	}
}

func TestContainsModeAcceptsSharedWord(t *testing.T) {
	s := newTestSession(t, Settings{UseContainsMode: true}, samplePhrases()[2:3])
	if got := s.ModeFor(s.Round()[0]); got != entity.AnswerContains {
		t.Fatalf("expected contains mode, got %s", got)
	}
	if outcome := answerCurrent(t, s, "wiem"); !outcome.IsCorrect {
		t.Fatalf("expected contains match: %+v", outcome)
	}
}

func TestTargetToSourceDirection(t *testing.T) {
	s := newTestSession(t, Settings{Direction: entity.TargetToSource}, samplePhrases()[:1])
	if outcome := answerCurrent(t, s, "Accident."); !outcome.IsCorrect {
		t.Fatalf("expected source text to be the answer: %+v", outcome)
	}
}

func TestHybridInputPerCard(t *testing.T) {
	phrases := []entity.Phrase{
		{ID: 1, SourceText: "yes", TargetText: "tak"},
		{ID: 2, SourceText: "I am going home", TargetText: "idę teraz do domu"},
	}
	s := newTestSession(t, Settings{Input: entity.InputHybrid}, phrases)
	if got := s.InputFor(phrases[0]); got != entity.InputText {
		t.Fatalf("short answer should be typed, got %s", got)
	}
	if got := s.InputFor(phrases[1]); got != entity.InputWordBank {
		t.Fatalf("long answer should use word bank, got %s", got)
	}
	if got := s.ModeFor(phrases[1]); got != entity.AnswerWordBank {
		t.Fatalf("expected word bank mode, got %s", got)
	}
	if err := s.SetAnswer(2, "idę"); !errors.Is(err, entity.ErrWordBankCard) {
		t.Fatalf("expected ErrWordBankCard, got %v", err)
	}
	if _, err := s.WordPool(1); !errors.Is(err, entity.ErrNotWordBank) {
		t.Fatalf("expected ErrNotWordBank, got %v", err)
	}
}

func TestWordBankAutoChecksWithRepeatedTokens(t *testing.T) {
	phrases := []entity.Phrase{
		{ID: 1, SourceText: "kot zjadł rybę", TargetText: "the cat ate the fish"},
		{ID: 2, SourceText: "pies", TargetText: "a dog barked loudly"},
	}
	s := newTestSession(t, Settings{Input: entity.InputWordBank}, phrases)

	tiles, err := s.WordPool(1)
	if err != nil {
		t.Fatalf("WordPool returned error: %v", err)
	}
	count := 0
	for _, tile := range tiles {
		if tile.Text == "the" {
			count++
		}
	}
	if count != 2 {
		t.Fatalf("expected two copies of \"the\" in pool, got %d: %+v", count, tiles)
	}

	for i, tok := range []string{"the", "cat", "ate", "the"} {
		outcome, err := s.SelectToken(1, tok)
		if err != nil {
			t.Fatalf("SelectToken(%q) #%d returned error: %v", tok, i, err)
		}
		if outcome != nil {
			t.Fatalf("card checked early after %d tokens", i+1)
		}
	}
	if _, err := s.SelectToken(1, "the"); !errors.Is(err, entity.ErrTokenUnavailable) {
		t.Fatalf("expected third \"the\" to be unavailable, got %v", err)
	}

	outcome, err := s.SelectToken(1, "fish")
	if err != nil {
		t.Fatalf("SelectToken(fish) returned error: %v", err)
	}
	if outcome == nil || !outcome.IsCorrect {
		t.Fatalf("expected auto-check to pass: %+v", outcome)
	}
	res, ok := s.Result(1)
	if !ok || !res.IsChecked || res.UserAnswer != "the cat ate the fish" {
		t.Fatalf("unexpected card result: %+v", res)
	}
	if _, err := s.SelectToken(1, "a"); !errors.Is(err, entity.ErrCardChecked) {
		t.Fatalf("expected ErrCardChecked, got %v", err)
	}
}

func TestWordBankRemoveToken(t *testing.T) {
	phrases := []entity.Phrase{{ID: 1, SourceText: "kot", TargetText: "the black cat"}}
	s := newTestSession(t, Settings{Input: entity.InputWordBank}, phrases)
	if _, err := s.SelectToken(1, "black"); err != nil {
		t.Fatalf("SelectToken returned error: %v", err)
	}
	if err := s.RemoveToken(1, 0); err != nil {
		t.Fatalf("RemoveToken returned error: %v", err)
	}
	if err := s.RemoveToken(1, 0); !errors.Is(err, entity.ErrTokenUnavailable) {
		t.Fatalf("expected ErrTokenUnavailable, got %v", err)
	}
	res, _ := s.Result(1)
	if len(res.SelectedTokens) != 0 || res.UserAnswer != "" {
		t.Fatalf("expected empty selection, got %+v", res)
	}
	if _, err := s.SelectToken(2, "the"); !errors.Is(err, entity.ErrPhraseNotInRound) {
		t.Fatalf("expected ErrPhraseNotInRound, got %v", err)
	}
}

func TestFeedbackDiffsCheckedCard(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases()[2:3])
	if _, err := s.Feedback(3); !errors.Is(err, entity.ErrCardNotChecked) {
		t.Fatalf("expected ErrCardNotChecked, got %v", err)
	}
	answerCurrent(t, s, "nie *wiem*")
	diff, err := s.Feedback(3)
	if err != nil {
		t.Fatalf("Feedback returned error: %v", err)
	}
	if len(diff.User) != 1 || diff.User[0].Text != "nie wiem" {
		t.Fatalf("expected single equal segment without emphasis, got %+v", diff.User)
	}
}

func TestCheckRemoteFailureLeavesCardUnchecked(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.SetAnswer(1, "wypadek"); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	failing := RemoteCheckerFunc(func(context.Context, entity.CheckRequest) (entity.CheckOutcome, error) {
		return entity.CheckOutcome{}, errors.New("connection refused")
	})
	if _, err := s.CheckRemote(context.Background(), failing); !errors.Is(err, entity.ErrRemoteUnavailable) {
		t.Fatalf("expected ErrRemoteUnavailable, got %v", err)
	}
	if res, _ := s.Result(1); res.IsChecked {
		t.Fatal("remote failure must not check the card")
	}
	if correct, incorrect := s.Counts(); correct != 0 || incorrect != 0 {
		t.Fatalf("counters changed: %d/%d", correct, incorrect)
	}
	if _, err := s.Check(); err != nil {
		t.Fatalf("local check after remote failure returned error: %v", err)
	}
}

func TestCheckRemoteKeepsTransportError(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.SetAnswer(1, "wypadek"); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	slow := RemoteCheckerFunc(func(context.Context, entity.CheckRequest) (entity.CheckOutcome, error) {
		return entity.CheckOutcome{}, context.DeadlineExceeded
	})
	_, err := s.CheckRemote(context.Background(), slow)
	if !errors.Is(err, entity.ErrRemoteUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrRemoteUnavailable wrapping DeadlineExceeded, got %v", err)
	}
}

func TestCheckRemoteAgreesWithLocal(t *testing.T) {
	phrases := samplePhrases()
	s := newTestSession(t, Settings{}, phrases)
	checker := LocalChecker{Lookup: func(_ context.Context, id int64) (entity.Phrase, error) {
		for _, p := range phrases {
			if p.ID == id {
				return p, nil
			}
		}
		return entity.Phrase{}, entity.ErrPhraseNotFound
	}}
	if err := s.SetAnswer(1, " Wypadek! "); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	outcome, err := s.CheckRemote(context.Background(), checker)
	if err != nil {
		t.Fatalf("CheckRemote returned error: %v", err)
	}
	if !outcome.IsCorrect || outcome.NormalizedUser != "wypadek" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestCheckRemoteMismatchKeepsLocalOutcome(t *testing.T) {
	s := newTestSession(t, Settings{}, samplePhrases())
	if err := s.SetAnswer(1, "wypadek"); err != nil {
		t.Fatalf("SetAnswer returned error: %v", err)
	}
	disagree := RemoteCheckerFunc(func(context.Context, entity.CheckRequest) (entity.CheckOutcome, error) {
		return entity.CheckOutcome{IsCorrect: false, NormalizedUser: "wypadek", NormalizedCorrect: "wypadek"}, nil
	})
	outcome, err := s.CheckRemote(context.Background(), disagree)
	if !errors.Is(err, entity.ErrRemoteMismatch) {
		t.Fatalf("expected ErrRemoteMismatch, got %v", err)
	}
	if !outcome.IsCorrect {
		t.Fatalf("expected local outcome to win: %+v", outcome)
	}
	if correct, _ := s.Counts(); correct != 1 {
		t.Fatalf("expected card counted correct, got %d", correct)
	}
}

func TestFinishReturnsToIdle(t *testing.T) {
	s := newTestSession(t, Settings{Shuffle: true}, samplePhrases())
	answerCurrent(t, s, "zły")
	s.Finish()
	if s.Phase() != entity.PhaseIdle || len(s.Round()) != 0 {
		t.Fatalf("expected clean idle session, got phase %s round %d", s.Phase(), len(s.Round()))
	}
	if !s.Settings().Shuffle {
		t.Fatal("settings lost on finish")
	}
	if err := s.Start(samplePhrases()); err != nil {
		t.Fatalf("Start after Finish returned error: %v", err)
	}
}

func TestCorroboratorReportsOnlyLatest(t *testing.T) {
	checker := RemoteCheckerFunc(func(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
		if req.PhraseID == 1 {
			<-ctx.Done()
			return entity.CheckOutcome{}, ctx.Err()
		}
		return Evaluate(req.UserAnswer, "tak", false), nil
	})
	c := NewCorroborator(checker, time.Second)

	c.Submit(context.Background(), entity.CheckRequest{PhraseID: 1, UserAnswer: "x"}, entity.CheckOutcome{})
	local := Evaluate("tak", "tak", false)
	c.Submit(context.Background(), entity.CheckRequest{PhraseID: 2, UserAnswer: "tak"}, local)

	select {
	case res := <-c.Results():
		if res.Request.PhraseID != 2 {
			t.Fatalf("expected latest submission, got phrase %d", res.Request.PhraseID)
		}
		if !res.Agrees() {
			t.Fatalf("expected remote to agree: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for corroboration")
	}

	c.Close()
	for res := range c.Results() {
		t.Fatalf("unexpected result after close: %+v", res)
	}
}

func TestCorroboratorCancelDropsCallInFlight(t *testing.T) {
	canceled := make(chan error, 1)
	checker := RemoteCheckerFunc(func(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
		if req.PhraseID == 1 {
			<-ctx.Done()
			canceled <- ctx.Err()
			return entity.CheckOutcome{}, ctx.Err()
		}
		return Evaluate(req.UserAnswer, "tak", false), nil
	})
	c := NewCorroborator(checker, 0)
	defer c.Close()

	c.Submit(context.Background(), entity.CheckRequest{PhraseID: 1, UserAnswer: "x"}, entity.CheckOutcome{})
	c.Cancel()
	select {
	case err := <-canceled:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("call in flight was not canceled")
	}
	select {
	case res := <-c.Results():
		t.Fatalf("canceled call was reported: %+v", res)
	case <-time.After(50 * time.Millisecond):
	}

	c.Submit(context.Background(), entity.CheckRequest{PhraseID: 2, UserAnswer: "tak"}, Evaluate("tak", "tak", false))
	select {
	case res := <-c.Results():
		if res.Request.PhraseID != 2 || !res.Agrees() {
			t.Fatalf("unexpected corroboration: %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for corroboration")
	}
}

// assertRoundInvariants checks the counters and the missed set against the
// recorded answers of the current round.
func assertRoundInvariants(t *testing.T, s *Session, step int) {
	t.Helper()
	if s.Phase() == entity.PhaseIdle {
		return
	}
	correct, incorrect := s.Counts()
	round := s.Round()
	if correct+incorrect > s.CurrentIndex()+1 || s.CurrentIndex()+1 > len(round) {
		t.Fatalf("step %d: counters %d+%d, index %d, round %d", step, correct, incorrect, s.CurrentIndex(), len(round))
	}

	answers := s.Answers()
	var wantCorrect, wantIncorrect int
	var wantMissed []int64
	for _, p := range round {
		r, ok := answers[p.ID]
		if !ok || r.IsCorrect == nil {
			continue
		}
		if *r.IsCorrect {
			wantCorrect++
		} else {
			wantIncorrect++
			if r.IsChecked {
				wantMissed = append(wantMissed, p.ID)
			}
		}
	}
	if correct != wantCorrect || incorrect != wantIncorrect {
		t.Fatalf("step %d: counters %d/%d, answers say %d/%d", step, correct, incorrect, wantCorrect, wantIncorrect)
	}
	missed := s.IncorrectPhrases()
	if len(missed) != len(wantMissed) {
		t.Fatalf("step %d: incorrect phrases %v, want ids %v", step, missed, wantMissed)
	}
	for i, p := range missed {
		if p.ID != wantMissed[i] {
			t.Fatalf("step %d: incorrect phrases %v, want ids %v", step, missed, wantMissed)
		}
	}
}

func TestRandomWalkKeepsRoundInvariants(t *testing.T) {
	phrases := append(samplePhrases(), entity.Phrase{ID: 6, SourceText: "the cat sat", TargetText: "kot tam siedział"})

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		s := NewSession(Settings{Input: entity.InputHybrid, Shuffle: true, AllowAmend: true},
			WithRand(rand.New(rand.NewSource(seed))))
		if err := s.Start(phrases); err != nil {
			t.Fatalf("Start returned error: %v", err)
		}

		for step := 0; step < 500; step++ {
			if s.Phase() == entity.PhaseRoundSummary {
				if err := s.ContinueWithIncorrect(); err != nil {
					s.Finish()
					if err := s.Start(phrases); err != nil {
						t.Fatalf("Start returned error: %v", err)
					}
				}
				assertRoundInvariants(t, s, step)
				continue
			}

			p, err := s.Current()
			if err != nil {
				t.Fatalf("seed %d step %d: Current returned error: %v", seed, step, err)
			}
			switch rng.Intn(8) {
			case 0:
				answer := "zły"
				if rng.Intn(2) == 0 {
					answer = s.ExpectedAnswer(p)
				}
				_ = s.SetAnswer(p.ID, answer)
			case 1:
				_, _ = s.Check()
			case 2:
				_ = s.Skip()
			case 3:
				_ = s.Next()
			case 4:
				_ = s.Reopen(p.ID)
			case 5:
				tiles, err := s.WordPool(p.ID)
				if err != nil || len(tiles) == 0 {
					break
				}
				_, _ = s.SelectToken(p.ID, tiles[rng.Intn(len(tiles))].Text)
			case 6:
				_ = s.RemoveToken(p.ID, 0)
			case 7:
				_, _ = s.Confirm()
			}
			assertRoundInvariants(t, s, step)
		}
	}
}
