package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/readwell-labs/bookscout/internal/config"
	"github.com/readwell-labs/bookscout/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bookscout",
	Short: "Analyze and chat about Project Gutenberg books",
	Long:  "Scrapes a Project Gutenberg book's metadata and text, summarizes and classifies it with Gemini, and answers free-text questions about the content.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// initHistory opens the analysis history store, or returns nil when history
// is disabled by an empty path.
func initHistory(cmd *cobra.Command) (*store.History, error) {
	if cfg.Store.Path == "" {
		return nil, nil
	}
	h, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := h.Migrate(cmd.Context()); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
