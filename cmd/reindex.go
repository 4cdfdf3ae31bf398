package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/askdoc/askdoc/internal/app"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex [dir]",
	Short: "Rebuild the document index from the corpus directory",
	Long: `Reindex wipes the stored chunks and re-embeds every supported
document (.pdf, .txt, .md) found in the corpus directory. The directory
defaults to corpus_dir from the configuration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return runReindex(dir)
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(dir string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if dir == "" {
		dir = cfg.CorpusDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	result, err := a.Indexer.Reindex(ctx, dir)
	if err != nil {
		return fmt.Errorf("reindexing %s: %w", dir, err)
	}

	fmt.Printf("Indexed %d chunks from %d files in %s\n",
		result.ChunksIndexed, result.FilesIndexed, result.Duration.Round(10*time.Millisecond))
	if result.FilesFailed > 0 {
		fmt.Printf("%d files failed:\n", result.FilesFailed)
		for _, f := range result.Failures {
			fmt.Printf("  %s: %v\n", f.Path, f.Err)
		}
	}

	return nil
}
