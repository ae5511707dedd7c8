package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
)

func testPhrases() []entity.Phrase {
	return []entity.Phrase{
		{ID: 1, SourceText: "yes", TargetText: "tak"},
		{ID: 2, SourceText: "no", TargetText: "nie"},
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestDrill(settings learn.Settings, input string) (*drill, *bytes.Buffer) {
	var out bytes.Buffer
	session := learn.NewSession(settings, learn.WithRand(rand.New(rand.NewSource(1))))
	return newDrill(session, strings.NewReader(input), &out, quietLogger()), &out
}

func TestDrill_RepeatsIncorrectPhrases(t *testing.T) {
	d, out := newTestDrill(learn.Settings{}, "Tak!\n\nnope\n\ny\nnie\n\n")
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"[1/2] yes",
		"incorrect, expected: nie",
		"[nope]",
		"Round 1: 1 correct, 1 incorrect, 0 skipped of 2",
		"[1/1] no",
		"Round 2: 1 correct, 0 incorrect, 0 skipped of 1",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if d.session.Phase() != entity.PhaseIdle {
		t.Fatalf("session phase = %s, want idle", d.session.Phase())
	}
}

func TestDrill_SkipAndQuit(t *testing.T) {
	d, out := newTestDrill(learn.Settings{}, ":s\n:q\n")
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "[2/2] no") || !strings.Contains(out.String(), "bye") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}

func TestDrill_AmendFlipsResult(t *testing.T) {
	d, out := newTestDrill(learn.Settings{AllowAmend: true}, "tek\n:a\ntak\n\n:q\n")
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	got := out.String()
	if strings.Count(got, "[1/2] yes") != 2 {
		t.Fatalf("expected the card to be shown again after amend:\n%s", got)
	}
	if !strings.Contains(got, "correct\n") {
		t.Fatalf("expected corrected answer to pass:\n%s", got)
	}
}

func TestDrill_SkipAfterAmendReprompts(t *testing.T) {
	d, out := newTestDrill(learn.Settings{AllowAmend: true}, "tek\n:a\n:s\ntak\n\n:q\n")
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	got := out.String()
	for _, want := range []string{"already answered, answer it again", "correct\n", "[2/2] no", "bye"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestDrill_WordBankSkipAfterAmendReprompts(t *testing.T) {
	phrases := []entity.Phrase{
		{ID: 7, SourceText: "good morning to you", TargetText: "dzień dobry wam"},
		{ID: 8, SourceText: "no", TargetText: "nie"},
	}
	d, _ := newTestDrill(learn.Settings{Input: entity.InputWordBank, AllowAmend: true}, "")
	if err := d.session.Start(phrases); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	tiles, err := d.session.WordPool(7)
	if err != nil {
		t.Fatalf("WordPool returned error: %v", err)
	}
	picks := make([]string, 0, 3)
	for _, want := range []string{"wam", "dobry", "dzień"} {
		for i, tile := range tiles {
			if tile.Text == want {
				picks = append(picks, strconv.Itoa(i+1))
				break
			}
		}
	}

	var out bytes.Buffer
	d.in = newTestDrillScanner(strings.Join(picks, " ") + "\n:a\n:s\n:q\n")
	d.out = &out
	for {
		err := d.card(context.Background())
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			t.Fatalf("card returned error: %v\n%s", err, out.String())
		}
	}
	if !strings.Contains(out.String(), "already answered, answer it again") {
		t.Fatalf("expected skip to be refused:\n%s", out.String())
	}
	if d.session.CurrentIndex() != 0 {
		t.Fatalf("index = %d, want the amended card to stay current", d.session.CurrentIndex())
	}
}

func TestCheckRemoteSource(t *testing.T) {
	if err := checkRemoteSource("http://localhost:8080", true, "phrases.json"); err == nil {
		t.Fatal("expected strict remote checks of file phrases to be rejected")
	}
	for _, tc := range []struct {
		url, file string
		strict    bool
	}{
		{"http://localhost:8080", "phrases.json", false},
		{"http://localhost:8080", "", true},
		{"", "phrases.json", true},
	} {
		if err := checkRemoteSource(tc.url, tc.strict, tc.file); err != nil {
			t.Fatalf("checkRemoteSource(%q, %v, %q) returned error: %v", tc.url, tc.strict, tc.file, err)
		}
	}
}

func TestDrill_AmendDisabled(t *testing.T) {
	d, out := newTestDrill(learn.Settings{}, "tek\n:a\n:q\n")
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), entity.ErrAmendDisabled.Error()) {
		t.Fatalf("expected amend to be refused:\n%s", out.String())
	}
}

func TestDrill_WordBank(t *testing.T) {
	phrases := []entity.Phrase{{ID: 7, SourceText: "good morning", TargetText: "dzień dobry"}}
	d, _ := newTestDrill(learn.Settings{Input: entity.InputWordBank}, "")

	if err := d.session.Start(phrases); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	tiles, err := d.session.WordPool(7)
	if err != nil {
		t.Fatalf("WordPool returned error: %v", err)
	}
	picks := make([]string, 0, 2)
	for _, want := range []string{"dzień", "dobry"} {
		for i, tile := range tiles {
			if tile.Text == want {
				picks = append(picks, strconv.Itoa(i+1))
				break
			}
		}
	}
	if len(picks) != 2 {
		t.Fatalf("correct tiles missing from pool: %+v", tiles)
	}

	var out bytes.Buffer
	d.in = newTestDrillScanner(strings.Join(picks, " ") + "\n\n")
	d.out = &out
	for d.session.Phase() == entity.PhaseInProgress {
		if err := d.card(context.Background()); err != nil {
			t.Fatalf("card returned error: %v", err)
		}
	}
	if s := d.session.Summary(); s.CorrectCount != 1 {
		t.Fatalf("summary = %+v, output:\n%s", s, out.String())
	}
}

func TestDrill_StrictRemoteRetriesAfterFailure(t *testing.T) {
	var calls atomic.Int32
	d, out := newTestDrill(learn.Settings{}, "tak\ntak\n\n:q\n")
	d.remote = learn.RemoteCheckerFunc(func(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
		if calls.Add(1) == 1 {
			return entity.CheckOutcome{}, errors.New("connection refused")
		}
		return learn.Evaluate(req.UserAnswer, "tak", req.UseContainsMode), nil
	})

	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "remote check failed") || !strings.Contains(got, "correct\n") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("remote calls = %d, want 2", calls.Load())
	}
}

func TestDrill_StrictRemoteMismatchWarns(t *testing.T) {
	d, out := newTestDrill(learn.Settings{}, "tak\n:q\n")
	d.remote = learn.RemoteCheckerFunc(func(ctx context.Context, req entity.CheckRequest) (entity.CheckOutcome, error) {
		return entity.CheckOutcome{IsCorrect: false, NormalizedUser: "tak", NormalizedCorrect: "nie"}, nil
	})
	if err := d.run(context.Background(), testPhrases()); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "judged this answer differently") {
		t.Fatalf("expected mismatch warning:\n%s", out.String())
	}
}

func TestWithLocalIDs(t *testing.T) {
	got := withLocalIDs([]entity.Phrase{
		{ID: 5, SourceText: "a", TargetText: "b"},
		{SourceText: "c", TargetText: "d"},
		{SourceText: " ", TargetText: "x"},
		{SourceText: "e", TargetText: "f"},
	})
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != 5 || got[1].ID != 6 || got[2].ID != 7 {
		t.Fatalf("ids = %d %d %d", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRenderTiles(t *testing.T) {
	got := renderTiles([]learn.Tile{{Text: "the"}, {Text: "cat", Used: true}})
	if got != "1) the  2)~cat~" {
		t.Fatalf("renderTiles = %q", got)
	}
}

func newTestDrillScanner(input string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(input))
}
