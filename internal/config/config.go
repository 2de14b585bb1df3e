// Package config loads the YAML configuration file, expanding ${VAR}
// references from the environment before parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobscout.
type Config struct {
	User    UserConfig
	Profile ProfileConfig
	Sources SourcesConfig
	Gemini  GeminiConfig
	Mailer  MailerConfig
	Digest  DigestConfig
	Server  ServerConfig
	Store   StoreConfig
}

// UserConfig seeds the settings row for the single local user.
type UserConfig struct {
	ID                string `yaml:"id"`
	DisplayName       string `yaml:"display_name"`
	AccountEmail      string `yaml:"account_email"`
	DigestEmail       string `yaml:"digest_email"`
	AutomationEnabled bool   `yaml:"automation_enabled"`
	MatchThreshold    float64 `yaml:"match_threshold"`
	Timezone          string `yaml:"timezone"`
}

// ProfileConfig points at the synthesized profile file and the raw career
// inputs used to synthesize it when the file does not exist yet.
type ProfileConfig struct {
	Path        string `yaml:"path"`     // JSON file holding profile + strategy
	CVPath      string `yaml:"cv_path"`  // plain-text CV used for synthesis
	LinkedInURL string `yaml:"linkedin_url"`
	Preferences string `yaml:"preferences"` // free-text search preferences
}

// SourcesConfig enables and configures the job board adapters.
type SourcesConfig struct {
	USAJobs  USAJobsConfig  `yaml:"usajobs"`
	Jooble   JoobleConfig   `yaml:"jooble"`
	AISearch AISearchConfig `yaml:"ai_search"`
}

type USAJobsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKey    string `yaml:"api_key"`
	UserAgent string `yaml:"user_agent"` // registered email, required by the API
}

type JoobleConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"api_key"`
}

type AISearchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// GeminiConfig configures the LLM provider used for scoring, synthesis, and
// the AI search adapter.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"` // empty uses the package default
}

// MailerConfig selects the outbound email path.
type MailerConfig struct {
	Type   string `yaml:"type"`    // "resend" or "log"
	APIKey string `yaml:"api_key"` // required when type is "resend"
	From   string `yaml:"from"`    // sender address on every digest
}

// DigestConfig tunes digest delivery.
type DigestConfig struct {
	// AlwaysSend delivers an explanatory email even when no matches cleared
	// the threshold, instead of silently skipping the day.
	AlwaysSend bool `yaml:"always_send"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	JWTSecret    string        `yaml:"jwt_secret"`    // HS256 secret for end-user tokens
	ServiceToken string        `yaml:"service_token"` // static bearer token for the scheduler/service caller
	ReadTimeout  time.Duration // parsed from read_timeout
	WriteTimeout time.Duration // parsed from write_timeout
}

// StoreConfig locates the SQLite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

const (
	defaultAddr         = ":8080"
	defaultStorePath    = "jobscout.db"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 120 * time.Second
	defaultFrom         = "JobScout <digest@localhost>"
)

// rawConfig mirrors the YAML layout; durations arrive as strings.
type rawConfig struct {
	User    UserConfig      `yaml:"user"`
	Profile ProfileConfig   `yaml:"profile"`
	Sources SourcesConfig   `yaml:"sources"`
	Gemini  GeminiConfig    `yaml:"gemini"`
	Mailer  MailerConfig    `yaml:"mailer"`
	Digest  DigestConfig    `yaml:"digest"`
	Server  rawServerConfig `yaml:"server"`
	Store   StoreConfig     `yaml:"store"`
}

type rawServerConfig struct {
	Addr         string `yaml:"addr"`
	JWTSecret    string `yaml:"jwt_secret"`
	ServiceToken string `yaml:"service_token"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	readTimeout := defaultReadTimeout
	if raw.Server.ReadTimeout != "" {
		readTimeout, err = time.ParseDuration(raw.Server.ReadTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse server.read_timeout %q: %w", raw.Server.ReadTimeout, err)
		}
	}
	// Scoring is strictly sequential with an inter-call delay, so a scan
	// triggered over HTTP can legitimately take minutes.
	writeTimeout := defaultWriteTimeout
	if raw.Server.WriteTimeout != "" {
		writeTimeout, err = time.ParseDuration(raw.Server.WriteTimeout)
		if err != nil {
			return nil, fmt.Errorf("parse server.write_timeout %q: %w", raw.Server.WriteTimeout, err)
		}
	}

	cfg := &Config{
		User:    raw.User,
		Profile: raw.Profile,
		Sources: raw.Sources,
		Gemini:  raw.Gemini,
		Mailer:  raw.Mailer,
		Digest:  raw.Digest,
		Server: ServerConfig{
			Addr:         raw.Server.Addr,
			JWTSecret:    raw.Server.JWTSecret,
			ServiceToken: raw.Server.ServiceToken,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Store: raw.Store,
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = defaultStorePath
	}
	if cfg.User.ID == "" {
		cfg.User.ID = "local"
	}
	if cfg.Mailer.Type == "" {
		cfg.Mailer.Type = "log"
	}
	if cfg.Mailer.From == "" {
		cfg.Mailer.From = defaultFrom
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Gemini.APIKey == "" {
		return fmt.Errorf("gemini.api_key is required")
	}

	enabled := 0
	if cfg.Sources.USAJobs.Enabled {
		enabled++
		if cfg.Sources.USAJobs.APIKey == "" {
			return fmt.Errorf("sources.usajobs.api_key is required when usajobs is enabled")
		}
		if cfg.Sources.USAJobs.UserAgent == "" {
			return fmt.Errorf("sources.usajobs.user_agent is required when usajobs is enabled")
		}
	}
	if cfg.Sources.Jooble.Enabled {
		enabled++
		if cfg.Sources.Jooble.APIKey == "" {
			return fmt.Errorf("sources.jooble.api_key is required when jooble is enabled")
		}
	}
	if cfg.Sources.AISearch.Enabled {
		enabled++
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.Mailer.Type {
	case "log":
	case "resend":
		if cfg.Mailer.APIKey == "" {
			return fmt.Errorf("mailer.api_key is required when type is \"resend\"")
		}
	default:
		return fmt.Errorf("mailer.type must be \"resend\" or \"log\", got %q", cfg.Mailer.Type)
	}

	if cfg.User.MatchThreshold < 0 || cfg.User.MatchThreshold > 100 {
		return fmt.Errorf("user.match_threshold must be within [0, 100], got %v", cfg.User.MatchThreshold)
	}

	return nil
}
