package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/phrasedrill/internal/entity"
)

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func normalizeNames(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	result := make([]string, 0, len(values))
	for _, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		result = append(result, name)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// phraseFile is the on-disk layout shared by import and export.
type phraseFile struct {
	Phrases []entity.Phrase `json:"phrases"`
}

// formatFromPath derives the file format from its extension, ignoring a
// trailing .gz. Standard streams default to JSON.
func formatFromPath(path, explicit string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(explicit))
	if format == "" {
		ext := strings.TrimPrefix(filepath.Ext(strings.TrimSuffix(strings.ToLower(path), ".gz")), ".")
		format = ext
	}
	switch format {
	case "", "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "toml":
		return "toml", nil
	default:
		return "", fmt.Errorf("unsupported phrase file format %q", format)
	}
}

func decodePhrases(r io.Reader, format string) ([]entity.Phrase, error) {
	v := viper.New()
	v.SetConfigType(format)
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("read %s phrases: %w", format, err)
	}
	var file phraseFile
	err := v.Unmarshal(&file, viper.DecoderConfigOption(func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}))
	if err != nil {
		return nil, fmt.Errorf("decode %s phrases: %w", format, err)
	}
	return file.Phrases, nil
}

func openInput(cmd *cobra.Command, path string, gzipped bool) (io.Reader, func() error, error) {
	var (
		reader  = cmd.InOrStdin()
		closers []func() error
	)
	if path != "-" {
		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		reader = file
		closers = append(closers, file.Close)
	}
	if gzipped {
		gzr, err := gzip.NewReader(reader)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("create gzip reader: %w", err)
		}
		reader = gzr
		closers = append([]func() error{gzr.Close}, closers...)
	}
	return reader, func() error { return closeAll(closers) }, nil
}

func openOutput(cmd *cobra.Command, path string, gzipped bool) (io.Writer, func() error, error) {
	var (
		writer  = cmd.OutOrStdout()
		closers []func() error
	)
	if path != "-" {
		file, err := os.Create(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", path, err)
		}
		writer = file
		closers = append(closers, file.Close)
	}
	if gzipped {
		gzw := gzip.NewWriter(writer)
		writer = gzw
		closers = append([]func() error{gzw.Close}, closers...)
	}
	return writer, func() error { return closeAll(closers) }, nil
}

func closeAll(closers []func() error) error {
	var first error
	for _, closer := range closers {
		if err := closer(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func isGzipPath(path string) bool {
	return path != "-" && strings.HasSuffix(strings.ToLower(path), ".gz")
}
