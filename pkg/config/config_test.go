package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/SyedFrazAli/linkedin-automation-engine/pkg/errors"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Engine.ConfidenceThreshold != 0.6 {
		t.Errorf("default threshold = %g, want 0.6", cfg.Engine.ConfidenceThreshold)
	}
	if cfg.Generation.MaxChars != 3000 {
		t.Errorf("default max_chars = %d, want 3000", cfg.Generation.MaxChars)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file should fall back to defaults: %v", err)
	}
	if cfg.Engine.PollInterval != DefaultPollInterval {
		t.Errorf("poll interval = %s, want default", cfg.Engine.PollInterval)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	yaml := `
engine:
  poll_interval: 5m
  confidence_threshold: 0.75
github:
  owner: octocat
  repo: hello-world
linkedin:
  auto_publish: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.PollInterval != 5*time.Minute {
		t.Errorf("poll interval = %s, want 5m", cfg.Engine.PollInterval)
	}
	if cfg.Engine.ConfidenceThreshold != 0.75 {
		t.Errorf("threshold = %g, want 0.75", cfg.Engine.ConfidenceThreshold)
	}
	if cfg.GitHub.Owner != "octocat" || cfg.GitHub.Repo != "hello-world" {
		t.Errorf("github repo not loaded: %+v", cfg.GitHub)
	}
	if !cfg.LinkedIn.AutoPublish {
		t.Error("auto_publish should be true")
	}
	// Untouched sections keep defaults
	if cfg.GitHub.BaseURL != "https://api.github.com" {
		t.Errorf("base url default lost: %s", cfg.GitHub.BaseURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("LINKEDIN_AUTO_PUBLISH", "true")
	t.Setenv("ENGINE_CONFIDENCE_THRESHOLD", "0.8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("token override missing: %q", cfg.GitHub.Token)
	}
	if !cfg.LinkedIn.AutoPublish {
		t.Error("auto publish env override missing")
	}
	if cfg.Engine.ConfidenceThreshold != 0.8 {
		t.Errorf("threshold override = %g, want 0.8", cfg.Engine.ConfidenceThreshold)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine.ConfidenceThreshold = 1.5
	if err := cfg.Validate(); !apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid) {
		t.Errorf("threshold above 1 should fail with CONFIG_INVALID, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Engine.PollInterval = 0
	if err := cfg.Validate(); !apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid) {
		t.Errorf("zero poll interval should fail with CONFIG_INVALID, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Generation.MinWords = 200
	if err := cfg.Validate(); !apperrors.IsCode(err, apperrors.ErrCodeConfigInvalid) {
		t.Errorf("min_words above max_words should fail with CONFIG_INVALID, got %v", err)
	}
}

func TestLoadMalformedYAMLIsCoded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !apperrors.IsCode(err, apperrors.ErrCodeConfigParse) {
		t.Errorf("malformed YAML should fail with CONFIG_PARSE, got %v", err)
	}
}

func TestLoadUnreadableFileIsCoded(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "actually-a-dir")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	// Reading a directory as a file fails with a non-ENOENT error
	_, err := Load(dir)
	if !apperrors.IsCode(err, apperrors.ErrCodeConfigLoad) {
		t.Errorf("unreadable config should fail with CONFIG_LOAD, got %v", err)
	}
}
