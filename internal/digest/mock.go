package digest

import (
	"time"

	"github.com/jobscout/jobscout/internal/model"
)

// MockMatches returns a small fixed set of illustrative matches used when a
// test/preview digest would otherwise be empty. Callers must surface the
// substitution so the preview is visibly marked as sample data.
func MockMatches(userID string) []model.ScoredMatch {
	now := time.Now()
	return []model.ScoredMatch{
		{
			ID:       "mock:1",
			UserID:   userID,
			Title:    "Senior Backend Engineer",
			Company:  "Sample Co",
			Location: "Remote",
			Link:     "https://example.com/jobs/1",
			Score:    92,
			Reasoning: model.MatchReasoning{
				Pros:        []string{"Strong skills overlap", "Remote friendly"},
				Cons:        []string{"Slightly senior band"},
				RiskFactors: []string{},
			},
			Source:    "sample",
			Status:    model.StatusPending,
			CreatedAt: now,
		},
		{
			ID:       "mock:2",
			UserID:   userID,
			Title:    "Platform Engineer",
			Company:  "Example Labs",
			Location: "Berlin",
			Link:     "https://example.com/jobs/2",
			Score:    85,
			Reasoning: model.MatchReasoning{
				Pros:        []string{"Matches target role"},
				Cons:        []string{},
				RiskFactors: []string{"Early-stage company"},
			},
			Source:    "sample",
			Status:    model.StatusPending,
			CreatedAt: now,
		},
	}
}
