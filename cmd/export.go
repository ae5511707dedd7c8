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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/phrasedrill/internal/app"
	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/repository"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

const (
	exportOutputKey    = "phrases.export.output"
	exportGzipKey      = "phrases.export.gzip"
	exportNotebooksKey = "phrases.export.notebooks"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export phrases as JSON that import accepts",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		outputPath := viper.GetString(exportOutputKey)
		if outputPath == "" {
			outputPath = "-"
		}

		container, cleanup, err := app.Initialize()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		phrases, err := collectPhrases(ctx, container.Phrases, normalizeNames(viper.GetStringSlice(exportNotebooksKey)))
		if err != nil {
			return err
		}

		writer, closeOutput, err := openOutput(cmd, outputPath, viper.GetBool(exportGzipKey) || isGzipPath(outputPath))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeOutput(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		enc := json.NewEncoder(writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(phraseFile{Phrases: phrases}); err != nil {
			return fmt.Errorf("encode phrases: %w", err)
		}
		if outputPath != "-" {
			cmd.PrintErrf("exported %d phrases to %s\n", len(phrases), outputPath)
		}
		return nil
	},
}

func collectPhrases(ctx context.Context, uc usecase.PhraseUsecase, notebooks []string) ([]entity.Phrase, error) {
	query := &repository.ListPhraseQuery{FilterOrder: repository.FilterOrder{OrderBy: "id"}}
	if len(notebooks) > 0 {
		quoted := lo.Map(notebooks, func(n string, _ int) string { return fmt.Sprintf("%q", n) })
		query.Filter = fmt.Sprintf("notebook in [%s]", strings.Join(quoted, ", "))
	}
	phrases, err := uc.SelectForSession(ctx, query)
	if errors.Is(err, entity.ErrNoPhrases) {
		return []entity.Phrase{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list phrases: %w", err)
	}
	return phrases, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "output path, - for stdout (default)")
	exportCmd.Flags().Bool("gzip", false, "gzip the output")
	exportCmd.Flags().StringSlice("notebooks", nil, "only export these notebooks")

	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportGzipKey, exportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(exportNotebooksKey, exportCmd.Flags().Lookup("notebooks"))
}
