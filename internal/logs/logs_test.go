package logs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	for _, line := range lines {
		if _, err := file.WriteString(line + "\n"); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func TestTailReturnsLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLines(t, path, "one", "two", "three", "four")

	lines, offset, err := Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"three", "four"}) {
		t.Fatalf("lines = %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected non-zero offset")
	}
}

func TestTailShorterThanLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLines(t, path, "only")

	lines, _, err := Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(lines, []string{"only"}) {
		t.Fatalf("lines = %v", lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := Tail(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("Tail = (%v, %d, %v), want empty", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.log")
	writeLines(t, path, "existing")

	_, offset, err := Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, func(line string) { got <- line })
	}()

	writeLines(t, path, "appended")

	select {
	case line := <-got:
		if line != "appended" {
			t.Fatalf("line = %q", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for appended line")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Fatalf("Follow returned %v", err)
	}
}

func TestCleanOldPrunesExpiredLogs(t *testing.T) {
	dir := t.TempDir()
	oldLog := filepath.Join(dir, "wayfinderd-2026-06-01.log")
	freshLog := filepath.Join(dir, "wayfinderd.log")
	notes := filepath.Join(dir, "notes.txt")
	for _, path := range []string{oldLog, freshLog, notes} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	stale := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(oldLog, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(notes, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	CleanOld(dir, 7, nil)

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatalf("old log still present: %v", err)
	}
	if _, err := os.Stat(freshLog); err != nil {
		t.Fatalf("fresh log removed: %v", err)
	}
	if _, err := os.Stat(notes); err != nil {
		t.Fatalf("non-log file removed: %v", err)
	}
}

func TestCleanOldDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wayfinderd.log")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	stale := time.Now().AddDate(0, 0, -365)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	CleanOld(dir, 0, nil)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log removed with retention disabled: %v", err)
	}
}
