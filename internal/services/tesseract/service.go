// Package tesseract shells out to the Tesseract OCR engine to read
// on-screen text from sampled video frames.
package tesseract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Command names and defaults for the OCR engine.
const (
	TesseractCommand = "tesseract"
	DefaultLanguage  = "eng"

	// pageSegMode 6 assumes a single uniform block of text, which suits
	// overlay captions and signage better than full page analysis.
	pageSegMode = "6"
)

// Config captures runtime settings for Tesseract OCR.
type Config struct {
	// Binary overrides the tesseract executable name.
	Binary string
	// Language selects the trained language data (e.g., "eng", "jpn").
	Language string
}

// Service reads text lines from individual frame images.
type Service struct {
	cfg          Config
	outputRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewService creates a Tesseract service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithOutputRunner sets a custom command runner that captures stdout
// (for testing).
func (s *Service) WithOutputRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	s.outputRunner = runner
}

func (s *Service) binary() string {
	if s.cfg.Binary != "" {
		return s.cfg.Binary
	}
	return TesseractCommand
}

func (s *Service) language() string {
	if s.cfg.Language != "" {
		return s.cfg.Language
	}
	return DefaultLanguage
}

// ReadText runs OCR over one frame image and returns the non-blank
// text lines in page order.
func (s *Service) ReadText(ctx context.Context, framePath string) ([]string, error) {
	if framePath == "" {
		return nil, fmt.Errorf("ocr: frame path required")
	}

	args := []string{framePath, "stdout", "-l", s.language(), "--psm", pageSegMode}
	output, err := s.run(ctx, s.binary(), args...)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}

	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *Service) run(ctx context.Context, name string, args ...string) (string, error) {
	if s.outputRunner != nil {
		return s.outputRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return string(output), nil
}
