package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"ziptowebp/internal/history"
	"ziptowebp/internal/stage"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		failedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently converted archives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			jobs, err := store.RecentJobs(cmd.Context(), limit, failedOnly)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(jobs) == 0 {
				fmt.Fprintln(out, "No conversions recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(jobs, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of jobs to show")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed jobs")
	return cmd
}

func renderHistory(jobs []history.Job, colorize bool) string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		outcome, kind := "OK", statusOK
		stageLabel := ""
		if job.Failed() {
			outcome, kind = "FAILED", statusError
			if s, ok := stage.Parse(job.FailedStage); ok {
				stageLabel = s.Label()
			}
		}
		rows = append(rows, []string{
			job.StartedAt.Local().Format("2006-01-02 15:04:05"),
			job.ArchivePath,
			colorizeText(outcome, kind, colorize),
			stageLabel,
			strconv.Itoa(job.Converted),
			formatDuration(job.Duration),
			job.ErrorMessage,
		})
	}
	return renderTable(
		[]column{col("Started"), col("Archive"), col("Outcome"), col("Stage"), numCol("Images"), numCol("Duration"), detailCol("Error")},
		rows,
		nil,
	)
}
