// Package scheduler runs the hourly digest broadcast. The broadcaster itself
// decides per user whether their local send hour has arrived.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// BroadcastFunc runs one broadcast pass over all automation-enabled users.
type BroadcastFunc func(ctx context.Context) error

// Scheduler ticks the broadcast once per hour, on the hour.
type Scheduler struct {
	cron      *cron.Cron
	broadcast BroadcastFunc
	spec      string
	logger    *slog.Logger
}

// New creates an hourly scheduler driving the given broadcast.
func New(broadcast BroadcastFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		broadcast: broadcast,
		spec:      "0 * * * *",
		logger:    logger,
	}
}

// Start registers the broadcast job and starts the cron loop. It returns
// immediately; jobs run on cron's own goroutine until Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.broadcast(ctx); err != nil {
			s.logger.Error("scheduled broadcast failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
