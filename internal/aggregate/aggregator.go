// Package aggregate fans a job search out across all source adapters and
// merges their results into one candidate sequence.
package aggregate

import (
	"context"
	"log/slog"

	"github.com/jobscout/jobscout/internal/model"
)

// Aggregator runs all adapters concurrently and concatenates their results.
// One dead source never blocks the others: adapter failures resolve to an
// empty contribution, logged. Cross-source duplicates are not deduplicated.
type Aggregator struct {
	logger *slog.Logger
}

// New creates an Aggregator.
func New(logger *slog.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

type adapterResult struct {
	source string
	jobs   []model.CandidateJob
	err    error
}

// Aggregate invokes every adapter concurrently and merges the results in
// adapter-completion order, keeping each adapter's own ordering within its
// batch. An empty merged result is a zero-result scan, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, keywords, location string, adapters []model.SourceAdapter) []model.CandidateJob {
	results := make(chan adapterResult, len(adapters))

	for _, ad := range adapters {
		go func(ad model.SourceAdapter) {
			jobs, err := ad.Fetch(ctx, keywords, location)
			results <- adapterResult{source: ad.Name(), jobs: jobs, err: err}
		}(ad)
	}

	var merged []model.CandidateJob
	for range adapters {
		res := <-results
		if res.err != nil {
			a.logger.Warn("source failed, continuing without it",
				"source", res.source,
				"error", res.err,
			)
			continue
		}
		a.logger.Info("source fetched",
			"source", res.source,
			"count", len(res.jobs),
		)
		merged = append(merged, res.jobs...)
	}

	return merged
}
