package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"wayfinder/internal/config"
	"wayfinder/internal/extraction"
	"wayfinder/internal/logging"
	"wayfinder/internal/media"
	"wayfinder/internal/queue"
	"wayfinder/internal/services"
	"wayfinder/internal/services/ollama"
	"wayfinder/internal/stage"
)

// Extractor turns a job's transcript and OCR evidence into place candidates.
type Extractor struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	engine *extraction.Extractor
	model  string
}

// extractionMeta is the audit record persisted alongside the candidates.
type extractionMeta struct {
	Method         media.ExtractionMethod `json:"method"`
	ModelUsed      bool                   `json:"model_used"`
	Model          string                 `json:"model,omitempty"`
	FallbackReason string                 `json:"fallback_reason,omitempty"`
	SegmentCount   int                    `json:"segment_count"`
	CandidateCount int                    `json:"candidate_count"`
}

// NewExtractor constructs the extraction stage handler using default dependencies.
func NewExtractor(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Extractor {
	var client extraction.ModelClient
	model := ""
	if cfg.Ollama.Enabled {
		model = cfg.Ollama.Model
		client = ollama.NewClient(
			cfg.Ollama.BaseURL,
			cfg.Ollama.Model,
			ollama.WithHTTPClient(ollama.NewHTTPClient(
				time.Duration(cfg.Ollama.ConnectTimeout)*time.Second,
				time.Duration(cfg.Ollama.ReadTimeout)*time.Second,
			)),
			ollama.WithRetries(cfg.Ollama.MaxRetries, time.Duration(cfg.Ollama.BackoffSeconds*float64(time.Second))),
			ollama.WithLogger(logger),
		)
	}
	settings := extraction.Settings{
		ModelEnabled:       cfg.Ollama.Enabled,
		KeepPartialResults: cfg.Ollama.KeepPartialResults,
		MaxSegments:        cfg.Extraction.MaxSegments,
		MaxCandidates:      cfg.Extraction.MaxCandidates,
		MaxInputChars:      cfg.Ollama.MaxInputChars,
		MaxPromptChars:     cfg.Ollama.MaxPromptChars,
	}
	engine := extraction.New(settings, client, logger)
	return NewExtractorWithDependencies(cfg, store, logger, engine, model)
}

// NewExtractorWithDependencies allows injecting the extraction engine (used in tests).
func NewExtractorWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, engine *extraction.Extractor, model string) *Extractor {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "extractor"))
	}
	return &Extractor{cfg: cfg, store: store, logger: stageLogger, engine: engine, model: model}
}

func (e *Extractor) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)
	job.InitProgress("Extracting", "Preparing candidate extraction")
	logger.Info("starting extraction preparation",
		logging.Bool("model_enabled", e.cfg.Ollama.Enabled),
	)
	return nil
}

func (e *Extractor) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, e.logger)

	segments, err := decodeSegments(job.TranscriptJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extract", "decode transcript", "", err)
	}
	ocrLines, err := decodeOCRLines(job.OCRJSON)
	if err != nil {
		return services.Wrap(services.ErrValidation, "extract", "decode ocr lines", "", err)
	}

	result, err := e.engine.Extract(ctx, extraction.Request{
		Segments:     segments,
		OCRLines:     ocrLines,
		LocationHint: job.LocationHint,
	})
	if err != nil {
		return err
	}

	candidates := result.Candidates
	if candidates == nil {
		candidates = []media.Candidate{}
	}
	job.CandidatesJSON = string(media.SafeMarshal(candidates))
	job.ExtractionMetaJSON = string(media.SafeMarshal(extractionMeta{
		Method:         result.Method,
		ModelUsed:      result.ModelUsed,
		Model:          e.model,
		FallbackReason: result.FallbackReason,
		SegmentCount:   result.SegmentCount,
		CandidateCount: len(candidates),
	}))
	job.SetProgress("Extracting", fmt.Sprintf("Extracted %d candidates", len(candidates)), 100)

	logger.Info("extraction complete",
		logging.String("method", string(result.Method)),
		logging.Bool("model_used", result.ModelUsed),
		logging.String("fallback_reason", result.FallbackReason),
		logging.Int("candidates", len(candidates)),
	)
	return nil
}

func (e *Extractor) HealthCheck(ctx context.Context) stage.Health {
	if !e.cfg.Ollama.Enabled {
		return stage.Health{Name: "extractor", Ready: true, Detail: "model path disabled; heuristic extraction only"}
	}
	return stage.Healthy("extractor")
}

func decodeSegments(raw string) ([]media.Segment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var segments []media.Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

func decodeOCRLines(raw string) ([]media.OCRLine, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var lines []media.OCRLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, err
	}
	return lines, nil
}
