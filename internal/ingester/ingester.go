package ingester

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"log/slog"

	"wayfinder/internal/config"
	"wayfinder/internal/ingest"
	"wayfinder/internal/logging"
	"wayfinder/internal/media"
	"wayfinder/internal/queue"
	"wayfinder/internal/services/tesseract"
	"wayfinder/internal/services/whisperx"
	"wayfinder/internal/stage"
	"wayfinder/internal/staging"
)

// Ingester extracts the transcript and on-screen text from a source video.
type Ingester struct {
	cfg     *config.Config
	store   *queue.Store
	logger  *slog.Logger
	service *ingest.Service
}

// NewIngester constructs the ingestion stage handler using default dependencies.
func NewIngester(cfg *config.Config, store *queue.Store, logger *slog.Logger) *Ingester {
	transcriber := whisperx.NewService(whisperx.Config{})
	frameReader := tesseract.NewService(tesseract.Config{})
	service := ingest.NewService(cfg.FFmpegBinary(), transcriber, frameReader, logger)
	return NewIngesterWithDependencies(cfg, store, logger, service)
}

// NewIngesterWithDependencies allows injecting the ingest service (used in tests).
func NewIngesterWithDependencies(cfg *config.Config, store *queue.Store, logger *slog.Logger, service *ingest.Service) *Ingester {
	stageLogger := logger
	if stageLogger != nil {
		stageLogger = stageLogger.With(logging.String(logging.FieldComponent, "ingester"))
	}
	return &Ingester{cfg: cfg, store: store, logger: stageLogger, service: service}
}

func (i *Ingester) Prepare(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, i.logger)
	job.InitProgress("Ingesting", "Preparing media ingestion")
	logger.Info("starting ingestion preparation",
		logging.String("video", strings.TrimSpace(job.VideoPath)),
	)
	return nil
}

func (i *Ingester) Execute(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, i.logger)
	logger.Info("starting ingestion", logging.String("video", strings.TrimSpace(job.VideoPath)))

	workDir := staging.Dir(i.cfg.Paths.StagingDir, job.ID)
	result, err := i.service.Ingest(ctx, job.VideoPath, workDir)
	if err != nil {
		return err
	}

	segments := result.Segments
	if segments == nil {
		segments = []media.Segment{}
	}
	ocrLines := result.OCRLines
	if ocrLines == nil {
		ocrLines = []media.OCRLine{}
	}
	job.TranscriptJSON = string(media.SafeMarshal(segments))
	job.OCRJSON = string(media.SafeMarshal(ocrLines))
	job.SetProgress("Ingesting", fmt.Sprintf("Ingested %d segments and %d OCR lines", len(segments), len(ocrLines)), 100)

	logger.Info("ingestion complete",
		logging.Int("segments", len(segments)),
		logging.Int("ocr_lines", len(ocrLines)),
	)
	return nil
}

func (i *Ingester) HealthCheck(ctx context.Context) stage.Health {
	for _, binary := range []string{i.cfg.FFmpegBinary(), i.cfg.FFprobeBinary()} {
		if _, err := exec.LookPath(binary); err != nil {
			return stage.Unhealthy("ingester", fmt.Sprintf("%s not found in PATH", binary))
		}
	}
	return stage.Healthy("ingester")
}
