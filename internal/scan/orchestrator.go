// Package scan drives one full scan: aggregate candidates from every source,
// score them sequentially, and persist the sorted batch.
package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jobscout/jobscout/internal/aggregate"
	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/ratelimit"
)

// InterScoreDelay is the fixed gap between consecutive scoring calls.
const InterScoreDelay = 800 * time.Millisecond

// Messages surfaced to the user on scan failure.
const (
	MsgScanRateLimited = "The scoring service is rate limited right now. Please try again in a few minutes."
	MsgScanFailed      = "The scan failed partway through. No matches were saved; please try again."
)

// Result summarizes one completed scan.
type Result struct {
	Fetched   int
	Persisted int
	TopScore  float64
}

// Orchestrator owns the scan pipeline for one invocation:
// aggregate → score (strictly sequential) → sort → persist.
type Orchestrator struct {
	aggregator *aggregate.Aggregator
	adapters   []model.SourceAdapter
	scorer     model.Scorer
	store      model.MatchStore
	pacer      *ratelimit.Pacer
	now        func() time.Time
	logger     *slog.Logger
}

// NewOrchestrator wires the scan pipeline. pacer spaces the scoring calls;
// pass one built with InterScoreDelay in production.
func NewOrchestrator(
	aggregator *aggregate.Aggregator,
	adapters []model.SourceAdapter,
	scorer model.Scorer,
	store model.MatchStore,
	pacer *ratelimit.Pacer,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		aggregator: aggregator,
		adapters:   adapters,
		scorer:     scorer,
		store:      store,
		pacer:      pacer,
		now:        time.Now,
		logger:     logger,
	}
}

// SetNow replaces the clock. Intended for tests.
func (o *Orchestrator) SetNow(fn func() time.Time) { o.now = fn }

// Scan runs the full pipeline for one user. Scoring is strictly sequential in
// merged-candidate order, one request in flight at a time. If any score call
// fails after retries the whole scan fails and nothing is persisted.
func (o *Orchestrator) Scan(ctx context.Context, userID string, profile model.MasterProfile, strategy model.SearchStrategy) (Result, error) {
	candidates := o.aggregator.Aggregate(ctx, strategy.Keywords, strategy.Location, o.adapters)
	if len(candidates) == 0 {
		o.logger.Info("scan found no candidates", "user", userID)
		return Result{}, nil
	}

	createdAt := o.now()
	matches := make([]model.ScoredMatch, 0, len(candidates))
	for _, job := range candidates {
		// The pacer spaces call starts: consecutive scores begin at least
		// InterScoreDelay apart, with no wait before the first. A slow score
		// already provides its own spacing, so no extra pause follows it.
		if err := o.pacer.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("scan for %s: %w", userID, err)
		}

		match, err := o.scorer.Score(ctx, profile, strategy, job)
		if err != nil {
			return Result{}, fmt.Errorf("scan for %s: %w", userID, err)
		}

		match.UserID = userID
		match.Source = job.Source
		match.CreatedAt = createdAt
		matches = append(matches, match)
	}

	// Stable sort keeps the merged order for equal scores.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	// Malformed-data guard: a row with neither title nor company is noise.
	kept := matches[:0]
	for _, m := range matches {
		if m.Title == "" && m.Company == "" {
			o.logger.Warn("dropping malformed match", "id", m.ID)
			continue
		}
		kept = append(kept, m)
	}
	matches = kept

	if err := o.store.UpsertMatches(ctx, matches); err != nil {
		return Result{}, fmt.Errorf("scan for %s: persisting matches: %w", userID, err)
	}

	result := Result{Fetched: len(candidates), Persisted: len(matches)}
	if len(matches) > 0 {
		result.TopScore = matches[0].Score
	}

	o.logger.Info("scan complete",
		"user", userID,
		"fetched", result.Fetched,
		"persisted", result.Persisted,
		"top_score", result.TopScore,
	)

	return result, nil
}

// UserMessage maps a scan failure to the message shown to the user.
func UserMessage(err error) string {
	if model.IsRateLimited(err) {
		return MsgScanRateLimited
	}
	return MsgScanFailed
}
