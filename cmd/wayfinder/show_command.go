package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"wayfinder/internal/config"
	"wayfinder/internal/media"
	"wayfinder/internal/queue"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonFlag bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one job and its extracted places",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid job id %q", args[0])
			}

			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				job, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if job == nil {
					return fmt.Errorf("job %d not found", id)
				}

				out := cmd.OutOrStdout()
				if jsonFlag {
					encoder := json.NewEncoder(out)
					encoder.SetIndent("", "  ")
					return encoder.Encode(job)
				}

				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader(fmt.Sprintf("Job %d", job.ID), colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Title", statusInfo, job.Title, colorize))
				fmt.Fprintln(out, renderStatusLine("Video", statusInfo, job.VideoPath, colorize))
				fmt.Fprintln(out, renderStatusLine("Status", statusInfo, string(job.Status), colorize))
				if job.LocationHint != "" {
					fmt.Fprintln(out, renderStatusLine("Location hint", statusInfo, job.LocationHint, colorize))
				}
				if job.ErrorMessage != "" {
					fmt.Fprintln(out, renderStatusLine("Error", statusError, job.ErrorMessage, colorize))
				}
				if job.NeedsReview {
					fmt.Fprintln(out, renderStatusLine("Needs review", statusWarn, job.ReviewReason, colorize))
				}

				candidates, err := decodeCandidates(job.CandidatesJSON)
				if err != nil {
					return fmt.Errorf("decode candidates for job %d: %w", job.ID, err)
				}
				if len(candidates) == 0 {
					fmt.Fprintln(out, "No place candidates yet")
					return nil
				}

				rows := make([][]string, 0, len(candidates))
				for _, candidate := range candidates {
					rows = append(rows, []string{
						candidate.Name,
						string(candidate.Category),
						fmt.Sprintf("%.2f", candidate.Confidence),
						resolvedSummary(candidate),
						formatCoordinates(candidate),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Name", "Category", "Confidence", "Resolved", "Coordinates"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonFlag, "json", false, "Emit the job as JSON")
	return cmd
}

func decodeCandidates(raw string) ([]media.Candidate, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var candidates []media.Candidate
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func resolvedSummary(candidate media.Candidate) string {
	if candidate.ResolutionFailed {
		return "unresolved"
	}
	parts := make([]string, 0, 2)
	if candidate.ResolvedName != "" {
		parts = append(parts, candidate.ResolvedName)
	}
	if candidate.FormattedAddress != "" {
		parts = append(parts, candidate.FormattedAddress)
	}
	if len(parts) == 0 {
		return "unresolved"
	}
	return strings.Join(parts, " | ")
}

func formatCoordinates(candidate media.Candidate) string {
	if !candidate.HasCoordinates() {
		return ""
	}
	return fmt.Sprintf("%.5f, %.5f", *candidate.Latitude, *candidate.Longitude)
}
