package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout/internal/scan"
)

var scanDryRun bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan now",
	Long:  "Fetch postings from every enabled source, score them against your profile, and persist the matches.",
	RunE:  runScanCmd,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "score and print matches without persisting anything")
	rootCmd.AddCommand(scanCmd)
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, scanDryRun)
	if err != nil {
		logger.Error("failed to build pipelines", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if _, err := a.ensureUserSettings(ctx); err != nil {
		logger.Error("failed to seed user settings", "error", err)
		os.Exit(1)
	}

	result, err := a.runScan(ctx, cfg.User.ID)
	if err != nil {
		logger.Error("scan failed", "error", err)
		fmt.Fprintln(os.Stderr, scan.UserMessage(err))
		os.Exit(1)
	}

	fmt.Printf("Scan complete: %d fetched, %d persisted, top score %.0f\n",
		result.Fetched, result.Persisted, result.TopScore)

	if scanDryRun {
		matches, err := a.store.MatchesByUser(ctx, cfg.User.ID)
		if err != nil {
			return err
		}
		for _, m := range matches {
			fmt.Printf("  %3.0f  %s — %s (%s)\n", m.Score, m.Title, m.Company, m.Source)
		}
	}
	return nil
}
