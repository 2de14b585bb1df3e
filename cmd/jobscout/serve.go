package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jobscout/jobscout/internal/scheduler"
	"github.com/jobscout/jobscout/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the hourly digest scheduler",
	Long:  "Serve the /send-digest and /scan endpoints and broadcast digests hourly; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
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

	if _, err := a.ensureUserSettings(ctx); err != nil {
		logger.Error("failed to seed user settings", "error", err)
		os.Exit(1)
	}

	srv := server.New(
		server.NewAuthenticator(cfg.Server.JWTSecret, cfg.Server.ServiceToken),
		a.store,
		a.sender,
		a.broadcaster,
		a.runScan,
		logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sched := scheduler.New(func(ctx context.Context) error {
		_, err := a.broadcaster.BroadcastAll(ctx)
		return err
	}, logger)
	if err := sched.Start(ctx); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		os.Exit(1)
	}
	defer sched.Stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("goodbye")
	return nil
}
