package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wayfinder/internal/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config to report exists=false")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Ollama.BaseURL != "http://localhost:11434" {
		t.Fatalf("unexpected ollama base URL: %q", cfg.Ollama.BaseURL)
	}
	if cfg.Extraction.MaxSegments != 120 || cfg.Extraction.MaxCandidates != 15 {
		t.Fatalf("unexpected extraction defaults: %+v", cfg.Extraction)
	}
	if cfg.Places.ResolveConcurrency != 4 {
		t.Fatalf("unexpected resolve concurrency: %d", cfg.Places.ResolveConcurrency)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
staging_dir = "` + filepath.Join(dir, "staging") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[ollama]
enabled = false
model = "mistral"

[extraction]
max_segments = 40
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if cfg.Ollama.Enabled {
		t.Fatal("expected ollama disabled")
	}
	if cfg.Ollama.Model != "mistral" {
		t.Fatalf("unexpected model: %q", cfg.Ollama.Model)
	}
	if cfg.Extraction.MaxSegments != 40 {
		t.Fatalf("unexpected max segments: %d", cfg.Extraction.MaxSegments)
	}
	// Untouched sections keep defaults.
	if cfg.Places.BiasRadiusMeters != 50000 {
		t.Fatalf("unexpected bias radius: %d", cfg.Places.BiasRadiusMeters)
	}
}

func TestLoadNormalizesTrailingSlash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[ollama]
base_url = "http://ollama.local:11434/"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Ollama.BaseURL != "http://ollama.local:11434" {
		t.Fatalf("expected trailing slash stripped, got %q", cfg.Ollama.BaseURL)
	}
}

func TestValidateRejectsPromptBudgetInversion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[ollama]
max_input_chars = 50000
max_prompt_chars = 1000
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for inverted prompt budgets")
	} else if !strings.Contains(err.Error(), "max_prompt_chars") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsBadHeartbeat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[workflow]
heartbeat_interval = 30
heartbeat_timeout = 30
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected validation error for heartbeat timeout <= interval")
	}
}

func TestPlacesKeyEnvFallback(t *testing.T) {
	t.Setenv("GOOGLE_PLACES_API_KEY", "env-key")
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Places.APIKey != "env-key" {
		t.Fatalf("expected env fallback key, got %q", cfg.Places.APIKey)
	}
	if !cfg.PlacesEnabled() {
		t.Fatal("expected PlacesEnabled with env key")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging format: %q", cfg.Logging.Format)
	}
}
