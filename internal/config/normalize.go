package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOllama()
	c.normalizePlaces()
	c.normalizeExtraction()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOllama() {
	c.Ollama.BaseURL = strings.TrimRight(strings.TrimSpace(c.Ollama.BaseURL), "/")
	if c.Ollama.BaseURL == "" {
		if value, ok := os.LookupEnv("OLLAMA_BASE_URL"); ok && strings.TrimSpace(value) != "" {
			c.Ollama.BaseURL = strings.TrimRight(strings.TrimSpace(value), "/")
		} else {
			c.Ollama.BaseURL = defaultOllamaBaseURL
		}
	}
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaultOllamaModel
	}
	if c.Ollama.ConnectTimeout <= 0 {
		c.Ollama.ConnectTimeout = defaultOllamaConnect
	}
	if c.Ollama.ReadTimeout <= 0 {
		c.Ollama.ReadTimeout = defaultOllamaRead
	}
	if c.Ollama.MaxRetries < 0 {
		c.Ollama.MaxRetries = 0
	}
	if c.Ollama.BackoffSeconds <= 0 {
		c.Ollama.BackoffSeconds = defaultOllamaBackoff
	}
	if c.Ollama.MaxInputChars <= 0 {
		c.Ollama.MaxInputChars = defaultOllamaMaxInput
	}
	if c.Ollama.MaxPromptChars <= 0 {
		c.Ollama.MaxPromptChars = defaultOllamaMaxPrompt
	}
}

func (c *Config) normalizePlaces() {
	c.Places.APIKey = strings.TrimSpace(c.Places.APIKey)
	if c.Places.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_PLACES_API_KEY"); ok {
			c.Places.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("GOOGLE_MAPS_API_KEY"); ok {
			c.Places.APIKey = strings.TrimSpace(value)
		}
	}
	c.Places.GeocodeURL = strings.TrimSpace(c.Places.GeocodeURL)
	if c.Places.GeocodeURL == "" {
		c.Places.GeocodeURL = defaultGeocodeURL
	}
	c.Places.SearchURL = strings.TrimSpace(c.Places.SearchURL)
	if c.Places.SearchURL == "" {
		c.Places.SearchURL = defaultTextSearchURL
	}
	if c.Places.BiasRadiusMeters <= 0 {
		c.Places.BiasRadiusMeters = defaultBiasRadiusMeters
	}
	if c.Places.ResolveConcurrency <= 0 {
		c.Places.ResolveConcurrency = defaultResolveConcurrency
	}
	if c.Places.RequestTimeout <= 0 {
		c.Places.RequestTimeout = defaultPlacesTimeout
	}
}

func (c *Config) normalizeExtraction() {
	if c.Extraction.MaxSegments <= 0 {
		c.Extraction.MaxSegments = defaultMaxSegments
	}
	if c.Extraction.MaxCandidates <= 0 {
		c.Extraction.MaxCandidates = defaultMaxCandidates
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
