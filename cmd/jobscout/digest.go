package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout/internal/digest"
)

var (
	digestEmail     string
	digestThreshold float64
	digestTest      bool
	digestCheck     bool
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Send (or preview) your digest now",
	Long:  "Select the digest-eligible matches and email them. Use --test to preview without consuming the daily window, --check to inspect the selection without sending.",
	RunE:  runDigest,
}

func init() {
	digestCmd.Flags().StringVar(&digestEmail, "email", "", "override the recipient address")
	digestCmd.Flags().Float64Var(&digestThreshold, "threshold", 0, "override the match threshold")
	digestCmd.Flags().BoolVar(&digestTest, "test", false, "preview mode: bypass the time window, allow sample data")
	digestCmd.Flags().BoolVar(&digestCheck, "check", false, "report what would be sent without sending")
	rootCmd.AddCommand(digestCmd)
}

func runDigest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger, false)
	if err != nil {
		logger.Error("failed to build pipelines", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	settings, err := a.ensureUserSettings(ctx)
	if err != nil {
		logger.Error("failed to seed user settings", "error", err)
		os.Exit(1)
	}

	opts := digest.SendOptions{
		Overrides: digest.Overrides{
			Email: digestEmail,
			Test:  digestTest,
		},
		Check: digestCheck,
	}
	if cmd.Flags().Changed("threshold") {
		opts.Threshold = &digestThreshold
	}

	report, err := a.sender.Send(ctx, settings, opts)
	if err != nil {
		logger.Error("digest failed", "error", err)
		os.Exit(1)
	}

	switch {
	case report.NoOp:
		fmt.Println("No matches cleared the threshold; nothing sent.")
	case digestCheck:
		fmt.Printf("Would send %d match(es) to %s (threshold %.0f, highest %.0f)\n",
			report.MatchCount, report.SentTo, report.Threshold, report.HighestScore)
	default:
		mock := ""
		if report.UsedMockData {
			mock = " [sample data]"
		}
		fmt.Printf("Sent %d match(es) to %s (email id %s)%s\n",
			report.MatchCount, report.SentTo, report.EmailID, mock)
	}
	return nil
}
