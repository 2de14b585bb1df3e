package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/retry"
)

// MatchScorer implements model.Scorer with a single retry-wrapped LLM call per
// candidate job.
type MatchScorer struct {
	provider LLMProvider
	caller   *retry.Caller
	logger   *slog.Logger
}

// NewMatchScorer creates a scorer routing every call through caller.
func NewMatchScorer(provider LLMProvider, caller *retry.Caller, logger *slog.Logger) *MatchScorer {
	return &MatchScorer{
		provider: provider,
		caller:   caller,
		logger:   logger,
	}
}

// Score evaluates job against profile and strategy. The returned match has a
// normalized 0–100 score, reasoning lists defaulted to empty, pending status,
// and a stable id derived from the job's namespaced external id.
func (s *MatchScorer) Score(ctx context.Context, profile model.MasterProfile, strategy model.SearchStrategy, job model.CandidateJob) (model.ScoredMatch, error) {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return model.ScoredMatch{}, fmt.Errorf("marshal profile: %w", err)
	}
	strategyJSON, err := json.Marshal(strategy)
	if err != nil {
		return model.ScoredMatch{}, fmt.Errorf("marshal strategy: %w", err)
	}

	var promptBuf bytes.Buffer
	err = ScoreMatchTemplate.Execute(&promptBuf, struct {
		ProfileJSON  string
		StrategyJSON string
		Job          model.CandidateJob
	}{
		ProfileJSON:  string(profileJSON),
		StrategyJSON: string(strategyJSON),
		Job:          job,
	})
	if err != nil {
		return model.ScoredMatch{}, fmt.Errorf("render score prompt: %w", err)
	}

	raw, err := retry.Do(ctx, s.caller, "score_match", func(ctx context.Context) (string, error) {
		return s.provider.Complete(ctx, promptBuf.String())
	})
	if err != nil {
		return model.ScoredMatch{}, fmt.Errorf("score %s: %w", job.ExternalID, err)
	}

	score, reasoning := s.parseAssessment(raw, job)

	id := job.ExternalID
	if id == "" {
		id = uuid.NewString()
	}

	return model.ScoredMatch{
		ID:          id,
		Title:       job.Title,
		Company:     job.Company,
		Location:    job.Location,
		Description: job.Description,
		Link:        job.Link,
		Score:       score,
		Reasoning:   reasoning,
		Source:      job.Source,
		Status:      model.StatusPending,
	}, nil
}

// parseAssessment pulls score and reasoning out of the raw LLM response.
// Missing or non-numeric scores default to 0; missing lists default to empty.
// A completely unparseable response degrades to all defaults rather than
// failing the scan.
func (s *MatchScorer) parseAssessment(raw string, job model.CandidateJob) (float64, model.MatchReasoning) {
	cleaned := extractJSON(raw)

	reasoning := model.MatchReasoning{
		Pros:        []string{},
		Cons:        []string{},
		RiskFactors: []string{},
	}

	if !gjson.Valid(cleaned) {
		s.logger.Warn("unparseable score response, defaulting",
			"job", job.ExternalID,
			"response_length", len(raw),
		)
		return 0, reasoning
	}

	score := model.NormalizeScore(gjson.Get(cleaned, "score").Float())
	reasoning.Pros = stringList(gjson.Get(cleaned, "reasoning.pros"))
	reasoning.Cons = stringList(gjson.Get(cleaned, "reasoning.cons"))
	reasoning.RiskFactors = stringList(gjson.Get(cleaned, "reasoning.risk_factors"))

	return score, reasoning
}
