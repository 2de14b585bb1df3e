package ai

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/jobscout/jobscout/internal/model"
	"github.com/jobscout/jobscout/internal/retry"
)

// CareerInput is the raw material for profile/strategy synthesis.
type CareerInput struct {
	CVText      string
	LinkedInURL string
	Preferences string
}

// Synthesizer turns raw career data into a MasterProfile and SearchStrategy
// with one retry-wrapped LLM call.
type Synthesizer struct {
	provider LLMProvider
	caller   *retry.Caller
	logger   *slog.Logger
}

// NewSynthesizer creates a Synthesizer routing every call through caller.
func NewSynthesizer(provider LLMProvider, caller *retry.Caller, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		caller:   caller,
		logger:   logger,
	}
}

// Synthesize builds the profile and strategy. Optional fields default to
// empty values; a malformed top-level response is rejected with an error
// rather than passed through.
func (s *Synthesizer) Synthesize(ctx context.Context, input CareerInput) (model.MasterProfile, model.SearchStrategy, error) {
	var promptBuf bytes.Buffer
	if err := ProfileSynthesisTemplate.Execute(&promptBuf, input); err != nil {
		return model.MasterProfile{}, model.SearchStrategy{}, fmt.Errorf("render synthesis prompt: %w", err)
	}

	raw, err := retry.Do(ctx, s.caller, "synthesize_profile", func(ctx context.Context) (string, error) {
		return s.provider.Complete(ctx, promptBuf.String())
	})
	if err != nil {
		return model.MasterProfile{}, model.SearchStrategy{}, fmt.Errorf("synthesize profile: %w", err)
	}

	cleaned := extractJSON(raw)
	if !gjson.Valid(cleaned) || !gjson.Get(cleaned, "profile").Exists() {
		return model.MasterProfile{}, model.SearchStrategy{}, fmt.Errorf("synthesis response is not valid profile JSON")
	}

	profile := model.MasterProfile{
		Name:            gjson.Get(cleaned, "profile.name").String(),
		Headline:        gjson.Get(cleaned, "profile.headline").String(),
		Summary:         gjson.Get(cleaned, "profile.summary").String(),
		Skills:          stringList(gjson.Get(cleaned, "profile.skills")),
		YearsExperience: gjson.Get(cleaned, "profile.years_experience").String(),
		Locations:       stringList(gjson.Get(cleaned, "profile.locations")),
		LinkedInURL:     gjson.Get(cleaned, "profile.linkedin_url").String(),
	}
	if profile.LinkedInURL == "" {
		profile.LinkedInURL = input.LinkedInURL
	}

	strategy := model.SearchStrategy{
		Keywords:    gjson.Get(cleaned, "strategy.keywords").String(),
		Location:    gjson.Get(cleaned, "strategy.location").String(),
		TargetRoles: stringList(gjson.Get(cleaned, "strategy.target_roles")),
		Notes:       gjson.Get(cleaned, "strategy.notes").String(),
	}

	s.logger.Info("profile synthesized",
		"skills", len(profile.Skills),
		"target_roles", len(strategy.TargetRoles),
	)

	return profile, strategy, nil
}
