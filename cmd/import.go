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
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/phrasedrill/internal/app"
	"github.com/eslsoft/phrasedrill/internal/entity"
	"github.com/eslsoft/phrasedrill/internal/infrastructure/database"
	"github.com/eslsoft/phrasedrill/internal/usecase"
)

const (
	importInputKey    = "phrases.import.input"
	importGzipKey     = "phrases.import.gzip"
	importFormatKey   = "phrases.import.format"
	importNotebookKey = "phrases.import.notebook"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import phrases from a JSON, YAML or TOML file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		inputPath := viper.GetString(importInputKey)
		if inputPath == "" {
			return fmt.Errorf("specify a phrase file with --input, or - for stdin")
		}
		format, err := formatFromPath(inputPath, viper.GetString(importFormatKey))
		if err != nil {
			return err
		}

		reader, closeInput, err := openInput(cmd, inputPath, viper.GetBool(importGzipKey) || isGzipPath(inputPath))
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeInput(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		phrases, err := decodePhrases(reader, format)
		if err != nil {
			return err
		}
		applyNotebook(phrases, viper.GetString(importNotebookKey))

		container, cleanup, err := app.Initialize()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()
		if err := database.Migrate(ctx, container.Driver); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		res, err := container.Phrases.Import(ctx, phrases)
		if err != nil {
			return fmt.Errorf("import phrases: %w", err)
		}
		printImportResult(cmd.OutOrStdout(), res)
		return nil
	},
}

func applyNotebook(phrases []entity.Phrase, notebook string) {
	notebook = strings.TrimSpace(notebook)
	if notebook == "" {
		return
	}
	for i := range phrases {
		if phrases[i].Notebook == "" {
			phrases[i].Notebook = notebook
		}
	}
}

func printImportResult(w io.Writer, res usecase.ImportResult) {
	fmt.Fprintf(w, "imported %d, skipped %d duplicates, rejected %d\n", res.Created, res.Skipped, len(res.Rejected))
	for _, r := range res.Rejected {
		fmt.Fprintf(w, "  #%d: %v\n", r.Index, r.Err)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("input", "i", "", "phrase file path, - for stdin")
	importCmd.Flags().Bool("gzip", false, "input is gzip compressed")
	importCmd.Flags().String("format", "", "json, yaml or toml (default: from extension)")
	importCmd.Flags().String("notebook", "", "notebook for phrases that name none")

	bindFlagToViper(importInputKey, importCmd.Flags().Lookup("input"))
	bindFlagToViper(importGzipKey, importCmd.Flags().Lookup("gzip"))
	bindFlagToViper(importFormatKey, importCmd.Flags().Lookup("format"))
	bindFlagToViper(importNotebookKey, importCmd.Flags().Lookup("notebook"))
}
