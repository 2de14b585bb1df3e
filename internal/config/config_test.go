package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
user:
  id: sam
  display_name: Sam
  account_email: sam@example.com
  automation_enabled: true
  match_threshold: 75
  timezone: Europe/Berlin
gemini:
  api_key: test-gemini-key
sources:
  usajobs:
    enabled: true
    api_key: usa-key
    user_agent: sam@example.com
  jooble:
    enabled: true
    api_key: jooble-key
mailer:
  type: resend
  api_key: resend-key
  from: "JobScout <digest@example.com>"
digest:
  always_send: true
server:
  addr: ":9090"
  read_timeout: 5s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User.ID != "sam" || cfg.User.MatchThreshold != 75 {
		t.Errorf("User = %+v", cfg.User)
	}
	if !cfg.Sources.USAJobs.Enabled || cfg.Sources.USAJobs.APIKey != "usa-key" {
		t.Errorf("USAJobs = %+v", cfg.Sources.USAJobs)
	}
	if cfg.Mailer.Type != "resend" || cfg.Mailer.From != "JobScout <digest@example.com>" {
		t.Errorf("Mailer = %+v", cfg.Mailer)
	}
	if !cfg.Digest.AlwaysSend {
		t.Error("Digest.AlwaysSend = false, want true")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: test-gemini-key
sources:
  ai_search:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.User.ID != "local" {
		t.Errorf("User.ID = %q, want local default", cfg.User.ID)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080 default", cfg.Server.Addr)
	}
	if cfg.Store.Path != "jobscout.db" {
		t.Errorf("Store.Path = %q, want default", cfg.Store.Path)
	}
	if cfg.Mailer.Type != "log" {
		t.Errorf("Mailer.Type = %q, want log default", cfg.Mailer.Type)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "from-env")
	path := writeConfig(t, `
gemini:
  api_key: ${TEST_GEMINI_KEY}
sources:
  ai_search:
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Errorf("Gemini.APIKey = %q, want expanded env value", cfg.Gemini.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "gemini: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_MissingGeminiKey(t *testing.T) {
	path := writeConfig(t, `
sources:
  ai_search:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for missing gemini key")
	}
}

func TestLoad_NoEnabledSources(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: key
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error when no source is enabled")
	}
}

func TestLoad_USAJobsMissingUserAgent(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: key
sources:
  usajobs:
    enabled: true
    api_key: usa-key
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for missing user_agent")
	}
}

func TestLoad_ResendWithoutKey(t *testing.T) {
	path := writeConfig(t, `
gemini:
  api_key: key
sources:
  ai_search:
    enabled: true
mailer:
  type: resend
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for resend without api key")
	}
}

func TestLoad_ThresholdOutOfRange(t *testing.T) {
	path := writeConfig(t, `
user:
  match_threshold: 150
gemini:
  api_key: key
sources:
  ai_search:
    enabled: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected validation error for threshold above 100")
	}
}
