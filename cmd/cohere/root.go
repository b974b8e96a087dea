package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knoguchi/cohere/internal/cohere"
	"github.com/knoguchi/cohere/internal/config"
)

// app carries what every subcommand needs once the root command has run.
type app struct {
	in     io.Reader
	out    io.Writer
	cfg    *config.Config
	logger *slog.Logger
	client *cohere.Client

	logLevel  string
	logFormat string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: in, out: out}

	root := &cobra.Command{
		Use:           "cohere",
		Short:         "Command line client for the Cohere API",
		Long:          "Calls the Cohere API using the key in CO_API_KEY (or a .env file).",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Set logging level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format (json, text)")

	root.AddCommand(
		newCheckAPIKeyCmd(a),
		newChatCmd(a),
		newGenerateCmd(a),
		newEmbedCmd(a),
		newClassifyCmd(a),
		newRerankCmd(a),
		newTokenizeCmd(a),
		newDetokenizeCmd(a),
		newDetectLanguageCmd(a),
		newSummarizeCmd(a),
	)

	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}

	a.cfg = cfg
	a.logger = newLogger(cfg, os.Stderr)
	slog.SetDefault(a.logger)
	a.client = cohere.NewFromConfig(cfg, cohere.WithLogger(a.logger))

	a.logger.Debug("configured API client", "base_url", cfg.BaseURL, "timeout", cfg.Timeout)
	return nil
}

// newLogger builds the structured logger; logs go to w so stdout only
// carries command output.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
