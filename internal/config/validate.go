package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOllama(); err != nil {
		return err
	}
	if err := c.validatePlaces(); err != nil {
		return err
	}
	if err := c.validateExtraction(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOllama() error {
	if !c.Ollama.Enabled {
		return nil
	}
	if _, err := url.ParseRequestURI(c.Ollama.BaseURL); err != nil {
		return fmt.Errorf("ollama.base_url is not a valid URL: %w", err)
	}
	if c.Ollama.Model == "" {
		return errors.New("ollama.model must be set when ollama.enabled is true")
	}
	if c.Ollama.MaxPromptChars < c.Ollama.MaxInputChars {
		return errors.New("ollama.max_prompt_chars must be >= ollama.max_input_chars")
	}
	return nil
}

func (c *Config) validatePlaces() error {
	if strings.TrimSpace(c.Places.GeocodeURL) == "" {
		return errors.New("places.geocode_url must be set")
	}
	if strings.TrimSpace(c.Places.SearchURL) == "" {
		return errors.New("places.search_url must be set")
	}
	if _, err := url.ParseRequestURI(c.Places.GeocodeURL); err != nil {
		return fmt.Errorf("places.geocode_url is not a valid URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.Places.SearchURL); err != nil {
		return fmt.Errorf("places.search_url is not a valid URL: %w", err)
	}
	return nil
}

func (c *Config) validateExtraction() error {
	return ensurePositiveMap(map[string]int{
		"extraction.max_segments":    c.Extraction.MaxSegments,
		"extraction.max_candidates":  c.Extraction.MaxCandidates,
		"places.bias_radius_meters":  c.Places.BiasRadiusMeters,
		"places.resolve_concurrency": c.Places.ResolveConcurrency,
		"places.request_timeout":     c.Places.RequestTimeout,
	})
}

func (c *Config) validateWorkflow() error {
	if err := ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	}); err != nil {
		return err
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		return errors.New("workflow.heartbeat_interval must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		return errors.New("workflow.heartbeat_timeout must be positive")
	}
	if c.Workflow.HeartbeatTimeout <= c.Workflow.HeartbeatInterval {
		return errors.New("workflow.heartbeat_timeout must be greater than workflow.heartbeat_interval")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
