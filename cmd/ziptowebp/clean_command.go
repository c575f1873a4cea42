package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ziptowebp/internal/logging"
	"ziptowebp/internal/preflight"
	"ziptowebp/internal/runlock"
	"ziptowebp/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var (
		olderThan time.Duration
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "clean <folder>",
		Short: "Remove conversion workspaces left behind by interrupted runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root, err := preflight.CheckRoot(args[0])
			if err != nil {
				return err
			}

			// An active convert run owns its workspaces.
			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			out := cmd.OutOrStdout()
			if dryRun {
				dirs, err := staging.ListWorkspaces(root, cfg.Conversion)
				if err != nil {
					return err
				}
				cutoff := time.Now().Add(-olderThan)
				stale := dirs[:0]
				for _, dir := range dirs {
					if dir.ModTime.Before(cutoff) {
						stale = append(stale, dir)
					}
				}
				if len(stale) == 0 {
					fmt.Fprintln(out, "No stale workspaces")
					return nil
				}
				fmt.Fprintln(out, renderWorkspaces(root, stale))
				return nil
			}

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			result := staging.CleanStale(cmd.Context(), root, cfg.Conversion, olderThan, logging.NewComponentLogger(logger, "staging"))
			fmt.Fprintf(out, "Removed %d workspace(s)\n", len(result.Removed))
			for _, failure := range result.Errors {
				fmt.Fprintf(out, "  %s: %v\n", failure.Path, failure.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d workspace(s) could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", time.Hour, "Only remove workspaces not modified for this long")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List stale workspaces without removing them")
	return cmd
}

func renderWorkspaces(root string, dirs []staging.DirInfo) string {
	rows := make([][]string, 0, len(dirs))
	for _, dir := range dirs {
		rel, err := filepath.Rel(root, dir.Path)
		if err != nil {
			rel = dir.Path
		}
		rows = append(rows, []string{
			rel,
			humanize.Time(dir.ModTime),
			humanize.Bytes(uint64(max(dir.Size, 0))),
		})
	}
	return renderTable([]column{col("Workspace"), col("Modified"), numCol("Size")}, rows, nil)
}
