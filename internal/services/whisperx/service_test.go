package whisperx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTranscribeParsesSegments(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := NewService(Config{Model: "small"})
	var gotArgs []string
	svc.WithCommandRunner(func(_ context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Fatalf("command = %s, want %s", name, UVXCommand)
		}
		gotArgs = args
		payload := `{"segments":[{"start":4.5,"end":6.0,"text":" Second "},{"start":1.25,"end":3.5,"text":"First"},{"start":7.0,"end":8.0,"text":"   "}]}`
		return os.WriteFile(filepath.Join(dir, "audio.json"), []byte(payload), 0o644)
	})

	segments, err := svc.Transcribe(context.Background(), audioPath)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("segments = %d, want 2 (blank dropped)", len(segments))
	}
	if segments[0].Text != "First" || segments[0].StartMS != 1250 || segments[0].EndMS != 3500 {
		t.Fatalf("first segment = %+v", segments[0])
	}
	if segments[1].Text != "Second" || segments[1].StartMS != 4500 {
		t.Fatalf("second segment = %+v", segments[1])
	}

	joined := strings.Join(gotArgs, " ")
	if !strings.Contains(joined, "--model small") {
		t.Fatalf("expected model flag in args: %s", joined)
	}
	if !strings.Contains(joined, "--output_format json") {
		t.Fatalf("expected json output format in args: %s", joined)
	}
	if !strings.Contains(joined, "--device cpu") {
		t.Fatalf("expected cpu device in args: %s", joined)
	}
}

func TestTranscribeFailsWithoutOutput(t *testing.T) {
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	svc := NewService(Config{})
	svc.WithCommandRunner(func(_ context.Context, _ string, _ ...string) error {
		return nil
	})

	if _, err := svc.Transcribe(context.Background(), audioPath); err == nil {
		t.Fatalf("expected error when transcript JSON is missing")
	}
}

func TestBuildArgsCUDA(t *testing.T) {
	svc := NewService(Config{CUDAEnabled: true, Language: "en"})
	joined := strings.Join(svc.buildArgs("in.wav", "out"), " ")
	if !strings.Contains(joined, "--device cuda") {
		t.Fatalf("expected cuda device: %s", joined)
	}
	if !strings.Contains(joined, "--language en") {
		t.Fatalf("expected language flag: %s", joined)
	}
	if strings.Contains(joined, "--compute_type") {
		t.Fatalf("compute type is a cpu-only flag: %s", joined)
	}
}
