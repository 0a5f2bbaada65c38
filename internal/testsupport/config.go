package testsupport

import (
	"path/filepath"
	"testing"

	"wayfinder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ollama.Enabled = false
	cfg.Workflow.QueuePollInterval = 1
	cfg.Workflow.ErrorRetryInterval = 1

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithOllama enables the model path against the given endpoint.
func WithOllama(baseURL, model string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Ollama.Enabled = true
		cfg.Ollama.BaseURL = baseURL
		cfg.Ollama.Model = model
	}
}

// WithPlacesKey sets the Places API key on the test config.
func WithPlacesKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Places.APIKey = key
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StagingDir)
}
