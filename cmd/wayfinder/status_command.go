package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"wayfinder/internal/config"
	"wayfinder/internal/daemon"
	"wayfinder/internal/queue"
	"wayfinder/internal/staging"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}
				lockPath := filepath.Join(cfg.Paths.LogDir, daemon.LockFileName)
				running, err := daemonRunning(lockPath)
				if err != nil {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, err.Error(), colorize))
				} else if running {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running", colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not running (start with `wayfinderd`)", colorize))
				}

				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				total := 0
				for _, status := range queue.AllStatuses() {
					count := stats[status]
					total += count
					if count == 0 {
						continue
					}
					kind := statusInfo
					switch status {
					case queue.StatusFailed:
						kind = statusError
					case queue.StatusReview:
						kind = statusWarn
					case queue.StatusCompleted:
						kind = statusOK
					}
					fmt.Fprintln(out, renderStatusLine(string(status), kind, fmt.Sprintf("%d", count), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("total", statusInfo, fmt.Sprintf("%d", total), colorize))

				for _, line := range renderSectionHeader("Staging", colorize) {
					fmt.Fprintln(out, line)
				}
				dirs, bytes, err := staging.Usage(cfg.Paths.StagingDir)
				if err != nil {
					fmt.Fprintln(out, renderStatusLine("Work dirs", statusWarn, err.Error(), colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine("Work dirs", statusInfo,
						fmt.Sprintf("%d (%s)", dirs, formatBytes(bytes)), colorize))
				}
				return nil
			})
		},
	}
}

// daemonRunning probes the daemon lock file. A held lock means a
// daemon owns the queue.
func daemonRunning(lockPath string) (bool, error) {
	if _, err := os.Stat(lockPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat lock file: %w", err)
	}
	probe := flock.New(lockPath)
	acquired, err := probe.TryLock()
	if err != nil {
		return false, fmt.Errorf("probe lock file: %w", err)
	}
	if acquired {
		_ = probe.Unlock()
		return false, nil
	}
	return true, nil
}

func formatBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
