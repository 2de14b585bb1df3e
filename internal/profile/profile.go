// Package profile loads the synthesized career profile from disk, falling
// back to LLM synthesis from the raw career inputs on first use.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/jobscout/jobscout/internal/ai"
	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/model"
)

// Stored is the on-disk shape of a synthesized profile.
type Stored struct {
	Profile  model.MasterProfile  `json:"profile"`
	Strategy model.SearchStrategy `json:"search_strategy"`
}

// Load reads a previously synthesized profile file.
func Load(path string) (Stored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stored{}, fmt.Errorf("read profile: %w", err)
	}
	var s Stored
	if err := json.Unmarshal(data, &s); err != nil {
		return Stored{}, fmt.Errorf("parse profile: %w", err)
	}
	return s, nil
}

// Save writes the profile file next to the config.
func Save(path string, s Stored) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

// Resolve returns the stored profile, synthesizing and saving one from the
// configured career inputs when the file does not exist yet.
func Resolve(ctx context.Context, cfg config.ProfileConfig, synth *ai.Synthesizer, logger *slog.Logger) (Stored, error) {
	if cfg.Path == "" {
		return Stored{}, errors.New("profile.path is not configured")
	}

	stored, err := Load(cfg.Path)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return Stored{}, err
	}

	if cfg.CVPath == "" {
		return Stored{}, fmt.Errorf("no profile at %s and profile.cv_path is not configured", cfg.Path)
	}
	cvText, err := os.ReadFile(cfg.CVPath)
	if err != nil {
		return Stored{}, fmt.Errorf("read cv: %w", err)
	}

	logger.Info("no stored profile, synthesizing", "cv", cfg.CVPath)
	p, strategy, err := synth.Synthesize(ctx, ai.CareerInput{
		CVText:      string(cvText),
		LinkedInURL: cfg.LinkedInURL,
		Preferences: cfg.Preferences,
	})
	if err != nil {
		return Stored{}, fmt.Errorf("synthesize profile: %w", err)
	}

	stored = Stored{Profile: p, Strategy: strategy}
	if err := Save(cfg.Path, stored); err != nil {
		return Stored{}, err
	}
	logger.Info("profile synthesized and saved", "path", cfg.Path)
	return stored, nil
}
