package ai

import (
	"context"
	"testing"

	"github.com/jobscout/jobscout/internal/model"
)

func TestSynthesize_ParsesProfileAndStrategy(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`{
		"profile": {
			"name": "Jordan Doe",
			"headline": "Senior Backend Engineer",
			"summary": "8 years building APIs.",
			"skills": ["Go", "Postgres"],
			"years_experience": "8",
			"locations": ["Berlin"],
			"linkedin_url": ""
		},
		"strategy": {
			"keywords": "golang backend",
			"location": "Berlin",
			"target_roles": ["Backend Engineer"],
			"notes": "prefer remote-friendly"
		}
	}`}}
	s := NewSynthesizer(provider, fastCaller(), discardLogger())

	profile, strategy, err := s.Synthesize(context.Background(), CareerInput{
		CVText:      "cv",
		LinkedInURL: "https://linkedin.com/in/jordan",
		Preferences: "remote",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if profile.Name != "Jordan Doe" {
		t.Errorf("Name = %q", profile.Name)
	}
	if len(profile.Skills) != 2 {
		t.Errorf("Skills = %v", profile.Skills)
	}
	// LLM left it empty, so the input URL backfills it.
	if profile.LinkedInURL != "https://linkedin.com/in/jordan" {
		t.Errorf("LinkedInURL = %q", profile.LinkedInURL)
	}
	if strategy.Keywords != "golang backend" || strategy.Location != "Berlin" {
		t.Errorf("strategy = %+v", strategy)
	}
}

func TestSynthesize_RejectsMalformedTopLevel(t *testing.T) {
	provider := &scriptedProvider{responses: []string{`"just a string"`}}
	s := NewSynthesizer(provider, fastCaller(), discardLogger())

	_, _, err := s.Synthesize(context.Background(), CareerInput{CVText: "cv"})
	if err == nil {
		t.Fatal("expected error for malformed top-level shape")
	}
}

func TestSynthesize_RateLimitExhaustionPropagates(t *testing.T) {
	provider := &scriptedProvider{errs: []error{
		model.ErrRateLimited, model.ErrRateLimited, model.ErrRateLimited,
	}}
	s := NewSynthesizer(provider, fastCaller(), discardLogger())

	_, _, err := s.Synthesize(context.Background(), CareerInput{CVText: "cv"})
	if !model.IsRateLimited(err) {
		t.Fatalf("expected rate-limit error, got %v", err)
	}
	if provider.calls != 3 {
		t.Errorf("calls = %d, want 3", provider.calls)
	}
}
