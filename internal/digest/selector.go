// Package digest computes which stored matches are due for a user's digest
// email and fans the scheduled send out across all automation-enabled users.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

const (
	// DefaultThreshold applies when the user never configured one.
	DefaultThreshold = 80
	// MaxBatch caps how many stored matches one selection considers.
	MaxBatch = 50
	// fallbackWindow bounds the first digest for a user who has never been
	// sent one, so their inbox is not flooded with the whole history.
	fallbackWindow = 24 * time.Hour
)

// Overrides carries per-invocation knobs from the caller.
type Overrides struct {
	Email     string   // recipient override, wins over stored settings
	Threshold *float64 // threshold override, wins over stored settings
	Test      bool     // preview mode: bypass the time window, allow mock data
}

// Selector computes the digest-eligible subset of a user's stored matches.
type Selector struct {
	matches model.MatchStore
	now     func() time.Time
	logger  *slog.Logger
}

// NewSelector creates a Selector reading from the given match store.
func NewSelector(matches model.MatchStore, logger *slog.Logger) *Selector {
	return &Selector{
		matches: matches,
		now:     time.Now,
		logger:  logger,
	}
}

// SetNow replaces the clock. Intended for tests.
func (s *Selector) SetNow(fn func() time.Time) { s.now = fn }

// Select resolves recipient, threshold, and time window, then filters the
// user's stored matches down to the digest-eligible set. In test mode the
// time window is skipped entirely, and an empty result is substituted with
// illustrative mock matches so a preview email is never empty.
func (s *Selector) Select(ctx context.Context, settings model.UserSettings, ov Overrides) (model.DigestSnapshot, error) {
	recipient := ov.Email
	if recipient == "" {
		recipient = settings.RecipientEmail()
	}
	if recipient == "" {
		return model.DigestSnapshot{}, model.ErrNoRecipient
	}

	threshold := float64(DefaultThreshold)
	if settings.MatchThreshold > 0 {
		threshold = settings.MatchThreshold
	}
	if ov.Threshold != nil {
		threshold = *ov.Threshold
	}

	var since *time.Time
	if !ov.Test {
		if settings.LastDigestSentAt != nil {
			since = settings.LastDigestSentAt
		} else {
			t := s.now().Add(-fallbackWindow)
			since = &t
		}
	}

	fetched, err := s.matches.MatchesForDigest(ctx, settings.UserID, since, MaxBatch)
	if err != nil {
		return model.DigestSnapshot{}, fmt.Errorf("digest select for %s: %w", settings.UserID, err)
	}

	// Scores from older producers may still be on the 0–1 scale; normalize
	// before any comparison, then restore the descending order.
	normalized := make([]model.ScoredMatch, len(fetched))
	copy(normalized, fetched)
	for i := range normalized {
		normalized[i].Score = model.NormalizeScore(normalized[i].Score)
	}
	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].Score > normalized[j].Score
	})

	snapshot := model.DigestSnapshot{
		RecipientEmail:     recipient,
		EffectiveThreshold: threshold,
		Since:              since,
		TotalFetched:       len(normalized),
	}
	if len(normalized) > 0 {
		snapshot.HighestScore = normalized[0].Score
	}

	eligible := make([]model.ScoredMatch, 0, len(normalized))
	for _, m := range normalized {
		if m.Score >= threshold {
			eligible = append(eligible, m)
		}
	}
	snapshot.Matches = eligible

	if ov.Test && len(snapshot.Matches) == 0 {
		snapshot.Matches = MockMatches(settings.UserID)
		snapshot.UsedMockData = true
	}

	s.logger.Info("digest selected",
		"user", settings.UserID,
		"fetched", snapshot.TotalFetched,
		"eligible", len(snapshot.Matches),
		"threshold", threshold,
		"test", ov.Test,
		"mock", snapshot.UsedMockData,
	)

	return snapshot, nil
}
