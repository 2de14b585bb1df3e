package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout/internal/review"
	"github.com/jobscout/jobscout/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review stored matches in an interactive TUI",
	Long:  "Browse your scored matches and accept, dismiss, or restore them.",
	RunE:  runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	return review.Run(context.Background(), st, cfg.User.ID)
}
