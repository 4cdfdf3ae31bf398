// Package cmd contains the askdoc CLI commands.
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/askdoc/askdoc/internal/config"
	"github.com/askdoc/askdoc/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "askdoc",
	Short: "askdoc - retrieval-augmented document chat server",
	Long: `askdoc answers questions about your documents.

It indexes PDF, text and Markdown files into PostgreSQL with pgvector,
retrieves the most relevant chunks for each question, and generates
answers with the configured AI provider while keeping per-session
conversation history.

Run 'askdoc serve' to start the HTTP API, or 'askdoc reindex' to
rebuild the document index from the corpus directory.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads and validates the configuration, then installs the
// configured logger as the process default.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := log.New(log.Config{
		Level: parseLogLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
	})
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
