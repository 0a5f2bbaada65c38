package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"wayfinder/internal/services"
)

func TestConsoleHandlerLiftsComponent(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	NewComponentLogger(logger, "extractor").Info("candidates ready", Int("count", 3))

	line := buf.String()
	if !strings.Contains(line, "INFO extractor: candidates ready") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "count=3") {
		t.Fatalf("missing attr: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("resolved", String("name", "Daisy's Cafe"))

	if !strings.Contains(buf.String(), `name="Daisy's Cafe"`) {
		t.Fatalf("unexpected line: %q", buf.String())
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWithContextAddsJobFields(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	ctx := services.WithJobID(context.Background(), 42)
	ctx = services.WithStage(ctx, "extract")
	WithContext(ctx, logger).Info("stage started")

	line := buf.String()
	if !strings.Contains(line, "job_id=42") || !strings.Contains(line, "stage=extract") {
		t.Fatalf("missing context fields: %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	logger.Error("should not panic", Error(nil))
}
