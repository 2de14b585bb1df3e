package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout/internal/adapter"
	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/aggregate"
	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/digest"
	"github.com/jobscout/jobscout/internal/mailer"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/profile"
	"github.com/jobscout/jobscout/internal/ratelimit"
	"github.com/jobscout/jobscout/internal/retry"
	"github.com/jobscout/jobscout/internal/scan"
	"github.com/jobscout/jobscout/internal/store"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobscout",
	Short: "Personal job-search assistant",
	Long:  "JobScout fetches postings from job boards, scores them against your career profile, and emails you a daily digest of the best matches.",
	// Default to `serve` so that `jobscout` with no args runs the daemon.
	RunE: runServe,
}

func init() {
	// A local .env is optional; config values reference env vars via ${VAR}.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBSCOUT_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBSCOUT_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBSCOUT_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupMailer(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Mailer {
	switch cfg.Mailer.Type {
	case "resend":
		logger.Info("using resend mailer", "from", cfg.Mailer.From)
		return mailer.NewResendMailer(cfg.Mailer.APIKey, httpClient, logger)
	default:
		return mailer.NewLogMailer(logger)
	}
}

func buildAdapters(cfg *config.Config, provider ai.LLMProvider, caller *retry.Caller, httpClient *http.Client, logger *slog.Logger) []model.SourceAdapter {
	var adapters []model.SourceAdapter
	if cfg.Sources.USAJobs.Enabled {
		adapters = append(adapters, adapter.NewUSAJobsAdapter(cfg.Sources.USAJobs.APIKey, cfg.Sources.USAJobs.UserAgent, httpClient))
		logger.Info("registered source", "name", "usajobs")
	}
	if cfg.Sources.Jooble.Enabled {
		adapters = append(adapters, adapter.NewJoobleAdapter(cfg.Sources.Jooble.APIKey, resty.NewWithClient(httpClient)))
		logger.Info("registered source", "name", "jooble")
	}
	if cfg.Sources.AISearch.Enabled {
		adapters = append(adapters, adapter.NewLLMSearchAdapter(provider, caller, logger))
		logger.Info("registered source", "name", adapter.LLMSearchTag)
	}
	return adapters
}

// appStore is the combined persistence contract the commands wire against.
type appStore interface {
	model.MatchStore
	model.SettingsStore
	Close() error
}

// app bundles the wired pipelines shared by the commands.
type app struct {
	cfg         *config.Config
	store       appStore
	synthesizer *ai.Synthesizer
	scanner     *scan.Orchestrator
	sender      *digest.Sender
	broadcaster *digest.Broadcaster
	logger      *slog.Logger
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}

// buildApp wires every pipeline from config. Credentials are resolved once
// here; nothing downstream reads the environment. dryRun swaps the SQLite
// store for an in-memory one so nothing touches the database file.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, dryRun bool) (*app, error) {
	var st appStore
	if dryRun {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		st = store.NewMemoryStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		st = sqlStore
	}

	provider, err := ai.NewGeminiProvider(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		st.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	caller := retry.NewCaller(retry.DefaultMaxAttempts, retry.DefaultBaseDelay, logger)

	adapters := buildAdapters(cfg, provider, caller, httpClient, logger)
	scorer := ai.NewMatchScorer(provider, caller, logger)
	orchestrator := scan.NewOrchestrator(
		aggregate.New(logger),
		adapters,
		scorer,
		st,
		ratelimit.NewPacer(scan.InterScoreDelay),
		logger,
	)

	m := setupMailer(cfg, httpClient, logger)
	selector := digest.NewSelector(st, logger)
	sender := digest.NewSender(selector, st, m, cfg.Mailer.From, cfg.Digest.AlwaysSend, logger)
	broadcaster := digest.NewBroadcaster(st, sender, logger)

	return &app{
		cfg:         cfg,
		store:       st,
		synthesizer: ai.NewSynthesizer(provider, caller, logger),
		scanner:     orchestrator,
		sender:      sender,
		broadcaster: broadcaster,
		logger:      logger,
	}, nil
}

// ensureUserSettings seeds the configured user's settings row on first run.
// The digest high-water mark is preserved across restarts.
func (a *app) ensureUserSettings(ctx context.Context) (model.UserSettings, error) {
	existing, err := a.store.Settings(ctx, a.cfg.User.ID)
	if err != nil {
		return model.UserSettings{}, err
	}

	settings := model.UserSettings{
		UserID:            a.cfg.User.ID,
		DisplayName:       a.cfg.User.DisplayName,
		AccountEmail:      a.cfg.User.AccountEmail,
		DigestEmail:       a.cfg.User.DigestEmail,
		AutomationEnabled: a.cfg.User.AutomationEnabled,
		MatchThreshold:    a.cfg.User.MatchThreshold,
		Timezone:          a.cfg.User.Timezone,
		LastDigestSentAt:  existing.LastDigestSentAt,
	}
	if err := a.store.SaveSettings(ctx, settings); err != nil {
		return model.UserSettings{}, err
	}
	return settings, nil
}

// runScan resolves the profile (synthesizing on first use) and runs one full
// scan for the given user.
func (a *app) runScan(ctx context.Context, userID string) (scan.Result, error) {
	stored, err := profile.Resolve(ctx, a.cfg.Profile, a.synthesizer, a.logger)
	if err != nil {
		return scan.Result{}, err
	}
	return a.scanner.Scan(ctx, userID, stored.Profile, stored.Strategy)
}
