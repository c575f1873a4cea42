package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ziptowebp/internal/conversion"
	"ziptowebp/internal/history"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/notifications"
	"ziptowebp/internal/runlock"
	"ziptowebp/internal/walker"
)

const rootPrompt = "Enter the folder path: "

// errJobsFailed is returned with --fail-on-error when at least one archive failed.
var errJobsFailed = errors.New("one or more archives failed to convert")

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		workers     int
		dryRun      bool
		failOnError bool
		noHistory   bool
	)

	cmd := &cobra.Command{
		Use:   "convert [folder]",
		Short: "Convert every zip archive under a folder",
		Long: `Walk the folder, convert the JPEG pages of each zip archive to WebP and
write WebP_<name>.zip under Output/. The original archive is moved to
Converted_Zip/ once its converted copy exists. When no folder is given it is
prompted for on a terminal, or read as one line from piped stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				if workers < 1 {
					return fmt.Errorf("--workers must be at least 1")
				}
				cfg.Conversion.Workers = workers
			}

			root, err := resolveRoot(cmd, args)
			if err != nil {
				return err
			}

			lock, err := runlock.Acquire(cfg.LockPath())
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			pipeline, err := conversion.NewDefault(cfg, logger)
			if err != nil {
				return err
			}

			var recorder walker.Recorder
			if cfg.History.Enabled && !noHistory && !dryRun {
				store, err := history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check paths.state_dir or disable [history]"),
						logging.String(logging.FieldImpact, "this run will not be recorded"),
					)
				} else {
					defer store.Close()
					recorder = store
				}
			}

			w := walker.New(cfg, pipeline, recorder, logger)
			summary, runErr := w.Run(cmd.Context(), root, walker.Options{DryRun: dryRun})
			if !dryRun {
				notifyRun(cmd.Context(), notifications.NewService(cfg), logger, root, summary, runErr)
			}

			out := cmd.OutOrStdout()
			if summary != nil {
				fmt.Fprintln(out, renderSummary(summary, shouldColorize(out)))
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintln(out, "Done.")

			if failOnError && summary.HasFailures() {
				return fmt.Errorf("%w: %d of %d", errJobsFailed, summary.Stats.Failed, summary.Stats.Total)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent image conversions per archive (default: conversion.workers or CPU count)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the archives that would be converted without changing anything")
	cmd.Flags().BoolVar(&failOnError, "fail-on-error", false, "Exit non-zero when any archive fails")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history ledger")
	return cmd
}

// notifyRun posts the run outcome. Delivery failures are logged and never
// change the command result.
func notifyRun(ctx context.Context, notifier notifications.Service, logger *slog.Logger, root string, summary *walker.Summary, runErr error) {
	ctx = context.WithoutCancel(ctx)
	var err error
	switch {
	case runErr != nil:
		err = notifier.NotifyError(ctx, runErr, root)
	case summary != nil:
		err = notifier.NotifyRunCompleted(ctx, root, summary.Stats.Succeeded, summary.Stats.Failed, summary.Stats.Images, summary.Duration)
	}
	if err != nil {
		logging.WarnWithContext(logger, "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
			logging.String(logging.FieldImpact, "run outcome was not delivered"),
		)
	}
}

// resolveRoot returns the folder argument. When it was omitted the folder is
// read from stdin: prompted for on a terminal, read as one line when piped.
func resolveRoot(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	in := cmd.InOrStdin()
	if !isInteractive(in) {
		return readRoot(in)
	}
	return promptRoot(in, cmd.OutOrStdout())
}

func promptRoot(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, rootPrompt)
	return readRoot(in)
}

func readRoot(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read folder path: %w", err)
	}
	root := strings.TrimSpace(line)
	if root == "" {
		return "", errors.New("folder path is required")
	}
	return root, nil
}

func isInteractive(in io.Reader) bool {
	file, ok := in.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
