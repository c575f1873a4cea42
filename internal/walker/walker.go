package walker

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"ziptowebp/internal/config"
	"ziptowebp/internal/conversion"
	"ziptowebp/internal/history"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/preflight"
	"ziptowebp/internal/services"
	"ziptowebp/internal/stage"
)

// Runner converts a single archive.
type Runner interface {
	Layout(job conversion.Job) conversion.Layout
	Run(ctx context.Context, job conversion.Job) conversion.Result
}

// Recorder persists run and job outcomes. A nil Recorder disables recording.
type Recorder interface {
	StartRun(ctx context.Context, run history.Run) error
	FinishRun(ctx context.Context, run history.Run) error
	RecordJob(ctx context.Context, job history.Job) error
}

// Options tunes a single walk.
type Options struct {
	// DryRun lists the jobs and their target paths without touching the filesystem.
	DryRun bool
}

// Walker drives the conversion pipeline over a directory tree.
type Walker struct {
	conv     config.Conversion
	runner   Runner
	recorder Recorder
	logger   *slog.Logger
	openFS   func(root string) fs.FS
}

// New constructs a walker. recorder may be nil.
func New(cfg *config.Config, runner Runner, recorder Recorder, logger *slog.Logger) *Walker {
	return &Walker{
		conv:     cfg.Conversion,
		runner:   runner,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "walker"),
		openFS:   os.DirFS,
	}
}

// Run validates root and converts every archive beneath it sequentially. An
// invalid root is returned as a *services.PathError before anything runs. Job
// failures are reported in the summary, not as an error. Cancellation stops
// the walk between jobs and returns the partial summary with ctx.Err().
func (w *Walker) Run(ctx context.Context, root string, opts Options) (*Summary, error) {
	abs, err := preflight.CheckRoot(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:   uuid.NewString(),
		Root:    abs,
		DryRun:  opts.DryRun,
		Started: time.Now(),
	}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, w.logger)

	archives, err := discoverFS(w.openFS(abs), abs, w.conv, logger)
	if err != nil {
		return nil, &services.PathError{Kind: services.ClassifyOS(err, services.KindOther), Path: abs, Err: err}
	}
	logger.Info("walk started",
		logging.String(logging.FieldEventType, "walk_start"),
		logging.String("root", abs),
		logging.Int("archives", len(archives)),
		logging.Bool("dry_run", opts.DryRun),
	)

	w.startRun(ctx, logger, summary)
	defer func() {
		summary.Duration = time.Since(summary.Started)
		w.finishRun(context.WithoutCancel(ctx), logger, summary)
	}()

	for idx, archivePath := range archives {
		if err := ctx.Err(); err != nil {
			logging.WarnWithContext(logger, "walk cancelled", "walk_cancelled",
				logging.Int("remaining", len(archives)-idx),
				logging.String(logging.FieldImpact, "remaining archives were not converted"),
				logging.String(logging.FieldErrorHint, "run the command again to continue"),
			)
			return summary, err
		}

		job := conversion.NewJob(archivePath)
		if opts.DryRun {
			layout := w.runner.Layout(job)
			summary.plan(conversion.Result{Job: job, Layout: layout, Stage: stage.Created})
			logger.Info("would convert archive",
				logging.String(logging.FieldEventType, "job_planned"),
				logging.String(logging.FieldArchive, archivePath),
				logging.String("output", layout.OutputPath),
				logging.String("processed", layout.ProcessedPath),
			)
			continue
		}

		logger.Info("processing archive",
			logging.String(logging.FieldEventType, "job_start"),
			logging.String(logging.FieldArchive, archivePath),
			logging.String(logging.FieldJobID, job.ID),
			logging.String("progress", fmt.Sprintf("%d/%d", idx+1, len(archives))),
		)
		result := w.runner.Run(ctx, job)
		summary.add(result)
		if !result.Succeeded() {
			logging.ErrorWithContext(logger, "job failed", "job_failed",
				logging.String(logging.FieldArchive, archivePath),
				logging.String(logging.FieldJobID, job.ID),
				logging.String(logging.FieldStage, string(result.FailedStage)),
				logging.String("error_kind", string(services.KindOf(result.Err))),
				logging.Error(result.Err),
				logging.String(logging.FieldImpact, "archive left in place; the walk continues"),
			)
		}
		w.recordJob(context.WithoutCancel(ctx), logger, summary.RunID, result)
	}

	logger.Info("walk finished",
		logging.String(logging.FieldEventType, "walk_complete"),
		logging.Int("archives", summary.Stats.Total),
		logging.Int("succeeded", summary.Stats.Succeeded),
		logging.Int("failed", summary.Stats.Failed),
		logging.Int("images", summary.Stats.Images),
	)
	return summary, nil
}

func (w *Walker) startRun(ctx context.Context, logger *slog.Logger, summary *Summary) {
	if w.recorder == nil {
		return
	}
	err := w.recorder.StartRun(ctx, history.Run{
		ID:        summary.RunID,
		Root:      summary.Root,
		DryRun:    summary.DryRun,
		StartedAt: summary.Started,
	})
	if err != nil {
		w.warnRecord(logger, "failed to record run start", err)
	}
}

func (w *Walker) finishRun(ctx context.Context, logger *slog.Logger, summary *Summary) {
	if w.recorder == nil {
		return
	}
	err := w.recorder.FinishRun(ctx, history.Run{
		ID:         summary.RunID,
		FinishedAt: summary.Started.Add(summary.Duration),
		Archives:   summary.Stats.Total,
		Succeeded:  summary.Stats.Succeeded,
		Failed:     summary.Stats.Failed,
	})
	if err != nil {
		w.warnRecord(logger, "failed to record run result", err)
	}
}

func (w *Walker) recordJob(ctx context.Context, logger *slog.Logger, runID string, result conversion.Result) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.RecordJob(ctx, jobRecord(runID, result)); err != nil {
		w.warnRecord(logger, "failed to record job", err)
	}
}

func (w *Walker) warnRecord(logger *slog.Logger, msg string, err error) {
	logging.WarnWithContext(logger, msg, "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check the state directory is writable"),
		logging.String(logging.FieldImpact, "history is incomplete; conversions are unaffected"),
	)
}

func jobRecord(runID string, result conversion.Result) history.Job {
	record := history.Job{
		ID:          result.Job.ID,
		RunID:       runID,
		ArchivePath: result.Job.ArchivePath,
		Outcome:     history.OutcomeDone,
		Images:      result.Images,
		Converted:   result.Converted,
		StartedAt:   result.Started,
		Duration:    result.Duration,
	}
	if result.Succeeded() {
		record.OutputPath = result.Layout.OutputPath
		record.ProcessedPath = result.Layout.ProcessedPath
		return record
	}
	record.Outcome = history.OutcomeFailed
	if result.FailedStage == stage.CleaningUp || result.FailedStage == stage.Relocating {
		record.OutputPath = result.Layout.OutputPath
	}
	record.FailedStage = string(result.FailedStage)
	record.ErrorKind = string(services.KindOf(result.Err))
	if result.Err != nil {
		record.ErrorMessage = result.Err.Error()
	}
	return record
}
