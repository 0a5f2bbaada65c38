package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"wayfinder/internal/logging"
	"wayfinder/internal/media"
	"wayfinder/internal/services"
)

const (
	// FFmpegCommand is the default ffmpeg executable name.
	FFmpegCommand = "ffmpeg"

	audioFileName = "audio.wav"
	framesDirName = "frames"
	framePattern  = "frame_%05d.jpg"

	// frameIntervalMS matches the 1 fps sampling rate.
	frameIntervalMS = 1000
)

// Transcriber converts an audio file into timed transcript segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]media.Segment, error)
}

// FrameReader extracts visible text lines from a single video frame.
type FrameReader interface {
	ReadText(ctx context.Context, framePath string) ([]string, error)
}

// Result carries the signals extracted from one video.
type Result struct {
	Segments []media.Segment
	OCRLines []media.OCRLine
}

// Service orchestrates audio extraction, frame sampling, transcription,
// and OCR for a single video.
type Service struct {
	ffmpegBinary  string
	transcriber   Transcriber
	frameReader   FrameReader
	logger        *slog.Logger
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates an ingest service.
func NewService(ffmpegBinary string, transcriber Transcriber, frameReader FrameReader, logger *slog.Logger) *Service {
	if ffmpegBinary == "" {
		ffmpegBinary = FFmpegCommand
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		ffmpegBinary: ffmpegBinary,
		transcriber:  transcriber,
		frameReader:  frameReader,
		logger:       logger.With(logging.String(logging.FieldComponent, "ingest")),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Ingest extracts audio and frames into workDir and runs transcription and OCR.
func (s *Service) Ingest(ctx context.Context, videoPath, workDir string) (Result, error) {
	var result Result

	if _, err := os.Stat(videoPath); err != nil {
		return result, services.Wrap(services.ErrNotFound, "ingest", "stat video", videoPath, err)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "ingest", "create work dir", workDir, err)
	}

	audioPath := filepath.Join(workDir, audioFileName)
	if err := s.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return result, err
	}

	framesDir := filepath.Join(workDir, framesDirName)
	if err := s.SampleFrames(ctx, videoPath, framesDir); err != nil {
		return result, err
	}

	if s.transcriber != nil {
		segments, err := s.transcriber.Transcribe(ctx, audioPath)
		if err != nil {
			return result, services.Wrap(services.ErrExternalTool, "ingest", "transcribe", "", err)
		}
		result.Segments = segments
	}

	if s.frameReader != nil {
		lines, err := s.readFrames(ctx, framesDir)
		if err != nil {
			return result, err
		}
		result.OCRLines = lines
	}

	s.logger.Info("ingest complete",
		logging.Int("segments", len(result.Segments)),
		logging.Int("ocr_lines", len(result.OCRLines)))
	return result, nil
}

// ExtractAudio pulls the audio track as mono 16kHz WAV.
func (s *Service) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vn", "-ac", "1", "-ar", "16000",
		"-y", audioPath,
	}
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ingest", "extract audio", "", err)
	}
	return nil
}

// SampleFrames writes one frame per second of video into framesDir.
func (s *Service) SampleFrames(ctx context.Context, videoPath, framesDir string) error {
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "ingest", "create frames dir", framesDir, err)
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", "fps=1",
		"-y", filepath.Join(framesDir, framePattern),
	}
	if err := s.run(ctx, s.ffmpegBinary, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "ingest", "sample frames", "", err)
	}
	return nil
}

// readFrames OCRs every sampled frame in order. Lines from one frame are
// joined with " | " into a single OCR entry stamped at the frame's second.
func (s *Service) readFrames(ctx context.Context, framesDir string) ([]media.OCRLine, error) {
	entries, err := os.ReadDir(framesDir)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "ingest", "read frames dir", framesDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var lines []media.OCRLine
	for i, name := range names {
		if ctx.Err() != nil {
			return nil, services.Wrap(services.ErrTimeout, "ingest", "read frames", "", ctx.Err())
		}
		frameLines, err := s.frameReader.ReadText(ctx, filepath.Join(framesDir, name))
		if err != nil {
			// One unreadable frame should not sink the whole video.
			s.logger.Warn("frame OCR failed", logging.String("frame", name), logging.Error(err))
			continue
		}
		joined := joinFrameLines(frameLines)
		if joined == "" {
			continue
		}
		lines = append(lines, media.OCRLine{
			TimestampMS: int64(i) * frameIntervalMS,
			Text:        joined,
		})
	}
	return lines, nil
}

func joinFrameLines(frameLines []string) string {
	kept := make([]string, 0, len(frameLines))
	for _, line := range frameLines {
		line = strings.TrimSpace(line)
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " | ")
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
