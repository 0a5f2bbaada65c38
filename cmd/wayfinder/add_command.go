package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wayfinder/internal/config"
	"wayfinder/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var locationHint string

	cmd := &cobra.Command{
		Use:   "add <video-file>",
		Short: "Queue a travel video for place extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve video path: %w", err)
			}
			if _, err := os.Stat(videoPath); err != nil {
				return fmt.Errorf("video file %s: %w", videoPath, err)
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				if existing, err := store.FindByVideoPath(cmd.Context(), videoPath); err != nil {
					return err
				} else if existing != nil {
					return fmt.Errorf("video already queued as job %d (status %s)", existing.ID, existing.Status)
				}

				job, err := store.NewVideo(cmd.Context(), videoPath, title, locationHint)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued job %d: %s\n", job.ID, job.Title)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Display title (defaults to the file name)")
	cmd.Flags().StringVarP(&locationHint, "location", "l", "", "Free-text location hint used to bias place resolution")
	return cmd
}
