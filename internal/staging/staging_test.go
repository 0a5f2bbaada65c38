package staging

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDirUsesJobPrefix(t *testing.T) {
	got := Dir("/tmp/stage", 42)
	want := filepath.Join("/tmp/stage", "job-42")
	if got != want {
		t.Fatalf("Dir = %q, want %q", got, want)
	}
}

func TestRemoveDeletesWorkDir(t *testing.T) {
	root := t.TempDir()
	workDir := Dir(root, 7)
	if err := os.MkdirAll(filepath.Join(workDir, "frames"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := Remove(root, 7); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Fatalf("work dir still present: %v", err)
	}
}

func TestCleanStaleRemovesOldJobDirs(t *testing.T) {
	root := t.TempDir()

	stale := filepath.Join(root, "job-1")
	fresh := filepath.Join(root, "job-2")
	other := filepath.Join(root, "downloads")
	for _, dir := range []string{stale, fresh, other} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(other, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	result := CleanStale(root, 24*time.Hour, nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}
	if len(result.Removed) != 1 || result.Removed[0] != stale {
		t.Fatalf("Removed = %v, want [%s]", result.Removed, stale)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh dir removed: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("non-job dir removed: %v", err)
	}
}

func TestCleanStaleMissingRoot(t *testing.T) {
	result := CleanStale(filepath.Join(t.TempDir(), "missing"), time.Hour, nil)
	if len(result.Removed) != 0 || len(result.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestUsageCountsJobDirs(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"job-1", "job-2", "scratch"} {
		if err := os.MkdirAll(filepath.Join(root, name), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "job-1", "audio.wav"), []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	dirs, bytes, err := Usage(root)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if dirs != 2 {
		t.Fatalf("dirs = %d, want 2", dirs)
	}
	if bytes != 10 {
		t.Fatalf("bytes = %d, want 10", bytes)
	}
}

func TestUsageMissingRoot(t *testing.T) {
	dirs, bytes, err := Usage(filepath.Join(t.TempDir(), "missing"))
	if err != nil || dirs != 0 || bytes != 0 {
		t.Fatalf("Usage = (%d, %d, %v), want zeros", dirs, bytes, err)
	}
}
