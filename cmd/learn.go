/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/phrasedrill/internal/adapter/connectrpc"
	"github.com/eslsoft/phrasedrill/internal/app"
	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/config"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/database"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/server"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase/learn"
	"github.com/eslsoft/phrasedrill/pkg/textmatch"
)

const (
	learnFileKey     = "learn.file"
	learnNotebookKey = "learn.notebook"
	learnFilterKey   = "learn.filter"
	learnOrderKey    = "learn.order_by"
	learnStrictKey   = "remote.strict"
)

var errQuit = errors.New("quit")

var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Run an interactive learn session in the terminal",
	Long: `Run a learn session over stored phrases or a phrase file.

Type the answer and press enter to check it. After a check, enter moves on,
":a" reopens the answer when amending is enabled and ":q" quits. ":s" skips
an unanswered card. Word bank cards take tile numbers; ":u" removes the last
picked tile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}
		settings, err := learnSettings(cfg)
		if err != nil {
			return err
		}

		if err := checkRemoteSource(cfg.Remote.URL, viper.GetBool(learnStrictKey), viper.GetString(learnFileKey)); err != nil {
			return err
		}

		phrases, err := loadLearnPhrases(cmd)
		if err != nil {
			return err
		}

		d := newDrill(learn.NewSession(settings, learn.WithRand(rand.New(rand.NewSource(time.Now().UnixNano())))),
			cmd.InOrStdin(), cmd.OutOrStdout(), logger)
		if cfg.Remote.URL != "" {
			client := connectrpc.NewAnswerClient(http.DefaultClient, cfg.Remote.URL)
			if viper.GetBool(learnStrictKey) {
				d.remote = client
				d.timeout = cfg.Remote.Timeout
			} else {
				d.corroborator = learn.NewCorroborator(client, cfg.Remote.Timeout)
				defer d.corroborator.Close()
			}
		}
		return d.run(ctx, phrases)
	},
}

func learnSettings(cfg *config.Config) (learn.Settings, error) {
	direction, err := entity.ParseDirection(cfg.Learn.Direction)
	if err != nil {
		return learn.Settings{}, err
	}
	input, err := entity.ParseInputMode(cfg.Learn.Input)
	if err != nil {
		return learn.Settings{}, err
	}
	return learn.Settings{
		Direction:       direction,
		Input:           input,
		UseContainsMode: cfg.Learn.Contains,
		Shuffle:         cfg.Learn.Shuffle,
		AllowAmend:      cfg.Learn.AllowAmend,
	}, nil
}

// checkRemoteSource rejects strict remote checking of file phrases: their
// ids are local and the server cannot resolve them.
func checkRemoteSource(remoteURL string, strict bool, file string) error {
	if remoteURL != "" && strict && file != "" {
		return errors.New("--strict needs phrases from the database, not --file")
	}
	return nil
}

func loadLearnPhrases(cmd *cobra.Command) ([]entity.Phrase, error) {
	if path := viper.GetString(learnFileKey); path != "" {
		return loadPhraseFile(cmd, path)
	}

	container, cleanup, err := app.Initialize()
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()
	if err := database.Migrate(cmd.Context(), container.Driver); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return container.Phrases.SelectForSession(cmd.Context(), &repository.ListPhraseQuery{
		FilterOrder: repository.FilterOrder{
			Filter:  viper.GetString(learnFilterKey),
			OrderBy: viper.GetString(learnOrderKey),
		},
		Notebook: viper.GetString(learnNotebookKey),
	})
}

func loadPhraseFile(cmd *cobra.Command, path string) (phrases []entity.Phrase, err error) {
	format, err := formatFromPath(path, "")
	if err != nil {
		return nil, err
	}
	reader, closeInput, err := openInput(cmd, path, isGzipPath(path))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := closeInput(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	phrases, err = decodePhrases(reader, format)
	if err != nil {
		return nil, err
	}
	return withLocalIDs(phrases), nil
}

// withLocalIDs numbers file phrases that carry no id and drops blank ones
// and repeated ids.
func withLocalIDs(phrases []entity.Phrase) []entity.Phrase {
	out := lo.Filter(phrases, func(p entity.Phrase, _ int) bool {
		return strings.TrimSpace(p.SourceText) != "" && strings.TrimSpace(p.TargetText) != ""
	})
	next := lo.Max(lo.Map(out, func(p entity.Phrase, _ int) int64 { return p.ID }))
	for i := range out {
		if out[i].ID <= 0 {
			next++
			out[i].ID = next
		}
	}
	return lo.UniqBy(out, func(p entity.Phrase) int64 { return p.ID })
}

// drill drives a session from a line-oriented terminal.
type drill struct {
	session      *learn.Session
	in           *bufio.Scanner
	out          io.Writer
	logger       *logrus.Logger
	remote       learn.RemoteChecker
	timeout      time.Duration
	corroborator *learn.Corroborator
}

func newDrill(session *learn.Session, in io.Reader, out io.Writer, logger *logrus.Logger) *drill {
	return &drill{session: session, in: bufio.NewScanner(in), out: out, logger: logger}
}

func (d *drill) run(ctx context.Context, phrases []entity.Phrase) error {
	if err := d.session.Start(phrases); err != nil {
		return err
	}
	defer d.session.Finish()

	for {
		var err error
		switch d.session.Phase() {
		case entity.PhaseInProgress:
			err = d.card(ctx)
		case entity.PhaseRoundSummary:
			var again bool
			again, err = d.summary()
			if err == nil && !again {
				return nil
			}
		default:
			return nil
		}
		if errors.Is(err, errQuit) {
			fmt.Fprintln(d.out, "bye")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (d *drill) card(ctx context.Context) error {
	d.drainCorroborations()

	p, err := d.session.Current()
	if err != nil {
		return err
	}
	fmt.Fprintf(d.out, "\n[%d/%d] %s\n", d.session.CurrentIndex()+1, len(d.session.Round()),
		textmatch.StripEmphasis(p.Prompt(d.session.Settings().Direction)))

	if d.session.InputFor(p) == entity.InputWordBank {
		return d.wordBankCard(ctx, p)
	}
	return d.textCard(ctx, p)
}

func (d *drill) textCard(ctx context.Context, p entity.Phrase) error {
	var line string
	for {
		var err error
		if line, err = d.readLine("> "); err != nil {
			return err
		}
		cmd := strings.TrimSpace(line)
		if cmd == ":q" {
			return errQuit
		}
		if cmd != ":s" {
			break
		}
		if skipped, err := d.skip(); skipped || err != nil {
			return err
		}
	}
	if err := d.session.SetAnswer(p.ID, line); err != nil {
		return err
	}

	if d.remote != nil {
		outcome, checked, err := d.checkRemote(ctx)
		if err != nil || !checked {
			return err
		}
		return d.afterCheck(p, outcome)
	}

	outcome, err := d.session.Check()
	if err != nil {
		return err
	}
	d.corroborate(ctx, p, outcome)
	return d.afterCheck(p, outcome)
}

// checkRemote reports checked=false when the server could not be reached;
// the card stays open so the learner can retry.
func (d *drill) checkRemote(ctx context.Context) (entity.CheckOutcome, bool, error) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	outcome, err := d.session.CheckRemote(ctx, d.remote)
	switch {
	case errors.Is(err, entity.ErrRemoteUnavailable):
		fmt.Fprintf(d.out, "remote check failed, try again: %v\n", err)
		return outcome, false, nil
	case errors.Is(err, entity.ErrRemoteMismatch):
		d.logger.WithError(err).Warn("remote answer check disagrees")
		fmt.Fprintln(d.out, "warning: the server judged this answer differently")
		return outcome, true, nil
	case err != nil:
		return outcome, false, err
	}
	return outcome, true, nil
}

func (d *drill) wordBankCard(ctx context.Context, p entity.Phrase) error {
	for {
		tiles, err := d.session.WordPool(p.ID)
		if err != nil {
			return err
		}
		result, _ := d.session.Result(p.ID)
		fmt.Fprintln(d.out, renderTiles(tiles))
		fmt.Fprintf(d.out, "answer: %s\n", strings.Join(result.SelectedTokens, " "))

		line, err := d.readLine("pick> ")
		if err != nil {
			return err
		}
		switch cmd := strings.TrimSpace(line); cmd {
		case ":q":
			return errQuit
		case ":s":
			if skipped, err := d.skip(); skipped || err != nil {
				return err
			}
			continue
		case ":u":
			if n := len(result.SelectedTokens); n > 0 {
				if err := d.session.RemoveToken(p.ID, n-1); err != nil {
					return err
				}
			}
			continue
		}

		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil || n < 1 || n > len(tiles) {
				fmt.Fprintf(d.out, "no tile %q\n", field)
				break
			}
			outcome, err := d.session.SelectToken(p.ID, tiles[n-1].Text)
			if errors.Is(err, entity.ErrTokenUnavailable) {
				fmt.Fprintf(d.out, "tile %d is already used\n", n)
				break
			}
			if err != nil {
				return err
			}
			if outcome != nil {
				d.corroborate(ctx, p, *outcome)
				return d.afterCheck(p, *outcome)
			}
		}
	}
}

// skip reports false when the card was answered before; an amended card
// has to be answered again.
func (d *drill) skip() (bool, error) {
	err := d.session.Skip()
	if errors.Is(err, entity.ErrCardChecked) {
		fmt.Fprintln(d.out, "this card was already answered, answer it again")
		return false, nil
	}
	return err == nil, err
}

func (d *drill) corroborate(ctx context.Context, p entity.Phrase, local entity.CheckOutcome) {
	if d.corroborator == nil {
		return
	}
	req, err := d.session.CheckRequest(p.ID)
	if err != nil {
		return
	}
	d.corroborator.Submit(ctx, req, local)
}

func (d *drill) drainCorroborations() {
	if d.corroborator == nil {
		return
	}
	for {
		select {
		case c, ok := <-d.corroborator.Results():
			if !ok {
				return
			}
			switch {
			case c.Err != nil:
				d.logger.WithError(c.Err).WithField("phrase_id", c.Request.PhraseID).Warn("remote corroboration failed")
			case !c.Agrees():
				d.logger.WithField("phrase_id", c.Request.PhraseID).Warn("remote answer check disagrees")
				fmt.Fprintf(d.out, "warning: the server judged phrase %d differently\n", c.Request.PhraseID)
			}
		default:
			return
		}
	}
}

func (d *drill) afterCheck(p entity.Phrase, outcome entity.CheckOutcome) error {
	if outcome.IsCorrect {
		fmt.Fprintln(d.out, "correct")
	} else {
		fmt.Fprintf(d.out, "incorrect, expected: %s\n", textmatch.StripEmphasis(d.session.ExpectedAnswer(p)))
	}
	if diff, err := d.session.Feedback(p.ID); err == nil && !outcome.IsCorrect {
		fmt.Fprintf(d.out, "  you:      %s\n  expected: %s\n", renderSegments(diff.User), renderSegments(diff.Correct))
	}

	prompt := "(enter: next, :q quit) "
	if d.session.Settings().AllowAmend {
		prompt = "(enter: next, :a amend, :q quit) "
	}
	for {
		line, err := d.readLine(prompt)
		if err != nil {
			return err
		}
		switch strings.TrimSpace(line) {
		case "":
			return d.session.Next()
		case ":q":
			return errQuit
		case ":a":
			if err := d.session.Reopen(p.ID); err != nil {
				fmt.Fprintln(d.out, err)
				continue
			}
			return nil
		default:
			fmt.Fprintln(d.out, "unknown command")
		}
	}
}

func (d *drill) summary() (bool, error) {
	d.drainCorroborations()
	s := d.session.Summary()
	fmt.Fprintf(d.out, "\nRound %d: %d correct, %d incorrect, %d skipped of %d\n",
		s.RoundNumber, s.CorrectCount, s.IncorrectCount, s.SkippedCount, s.Total)
	if len(d.session.IncorrectPhrases()) == 0 {
		return false, nil
	}
	line, err := d.readLine("repeat incorrect phrases? [y/N] ")
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(strings.TrimSpace(line), "y") {
		return false, nil
	}
	return true, d.session.ContinueWithIncorrect()
}

// readLine returns errQuit at end of input.
func (d *drill) readLine(prompt string) (string, error) {
	fmt.Fprint(d.out, prompt)
	if !d.in.Scan() {
		if err := d.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimRight(d.in.Text(), "\r"), nil
}

func renderTiles(tiles []learn.Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		if t.Used {
			parts[i] = fmt.Sprintf("%d)~%s~", i+1, t.Text)
			continue
		}
		parts[i] = fmt.Sprintf("%d) %s", i+1, t.Text)
	}
	return strings.Join(parts, "  ")
}

// renderSegments brackets the words that differ.
func renderSegments(segments []textmatch.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Type == textmatch.SegmentDifferent {
			b.WriteString("[" + seg.Text + "]")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(learnCmd)

	learnCmd.Flags().StringP("file", "f", "", "learn from a phrase file instead of the database")
	learnCmd.Flags().String("notebook", "", "only phrases from this notebook")
	learnCmd.Flags().String("filter", "", "CEL filter over phrases, e.g. difficulty == \"easy\"")
	learnCmd.Flags().String("order-by", "", "order, e.g. \"created_at desc\"")
	learnCmd.Flags().String("direction", "", "source_to_target (s2t) or target_to_source (t2s)")
	learnCmd.Flags().String("input", "", "text, word_bank or hybrid")
	learnCmd.Flags().Bool("contains", false, "accept answers containing the expected phrase")
	learnCmd.Flags().Bool("shuffle", false, "shuffle the first round")
	learnCmd.Flags().Bool("amend", false, "allow reopening checked answers")
	learnCmd.Flags().String("remote", "", "server URL used to double-check answers")
	learnCmd.Flags().Duration("remote-timeout", 0, "timeout of each remote check")
	learnCmd.Flags().Bool("strict", false, "check through the server instead of corroborating in the background")

	bindFlagToViper(learnFileKey, learnCmd.Flags().Lookup("file"))
	bindFlagToViper(learnNotebookKey, learnCmd.Flags().Lookup("notebook"))
	bindFlagToViper(learnFilterKey, learnCmd.Flags().Lookup("filter"))
	bindFlagToViper(learnOrderKey, learnCmd.Flags().Lookup("order-by"))
	bindFlagToViper("learn.direction", learnCmd.Flags().Lookup("direction"))
	bindFlagToViper("learn.input", learnCmd.Flags().Lookup("input"))
	bindFlagToViper("learn.contains", learnCmd.Flags().Lookup("contains"))
	bindFlagToViper("learn.shuffle", learnCmd.Flags().Lookup("shuffle"))
	bindFlagToViper("learn.allow_amend", learnCmd.Flags().Lookup("amend"))
	bindFlagToViper("remote.url", learnCmd.Flags().Lookup("remote"))
	bindFlagToViper("remote.timeout", learnCmd.Flags().Lookup("remote-timeout"))
	bindFlagToViper(learnStrictKey, learnCmd.Flags().Lookup("strict"))
}
