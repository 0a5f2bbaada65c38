// Package staging manages per-job work directories under the configured
// staging root. Each job gets a "job-<id>" directory holding the extracted
// audio track and sampled frames while the pipeline runs.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wayfinder/internal/logging"
)

// DirPrefix is the name prefix for per-job work directories.
const DirPrefix = "job-"

// Dir returns the work directory path for a job.
func Dir(root string, jobID int64) string {
	return filepath.Join(root, fmt.Sprintf("%s%d", DirPrefix, jobID))
}

// Remove deletes a job's work directory and everything in it.
func Remove(root string, jobID int64) error {
	return os.RemoveAll(Dir(root, jobID))
}

// SweepResult contains the outcome of a stale directory sweep.
type SweepResult struct {
	Removed []string
	Errors  []SweepError
}

// SweepError pairs a directory path with its removal error.
type SweepError struct {
	Path  string
	Error error
}

// CleanStale removes job work directories whose contents have not been
// touched for longer than maxAge. Entries that do not look like job
// directories are left alone.
func CleanStale(root string, maxAge time.Duration, logger *slog.Logger) SweepResult {
	var result SweepResult

	root = strings.TrimSpace(root)
	if root == "" {
		return result
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, SweepError{Path: root, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}

		dirPath := filepath.Join(root, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, SweepError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, SweepError{Path: dirPath, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale work directory",
					logging.String("path", dirPath),
					logging.Error(err))
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale work directory",
				logging.String("path", dirPath),
				logging.Duration("age", time.Since(info.ModTime())))
		}
	}

	return result
}

// Usage reports the number of job work directories under root and their
// combined size in bytes. Missing roots count as empty.
func Usage(root string) (dirs int, bytes int64, err error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return 0, 0, nil
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, nil
		}
		return 0, 0, err
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), DirPrefix) {
			continue
		}
		dirs++
		size, sizeErr := dirSize(filepath.Join(root, entry.Name()))
		if sizeErr != nil {
			continue
		}
		bytes += size
	}
	return dirs, bytes, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
