package conversion

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"ziptowebp/internal/config"
	"ziptowebp/internal/fileutil"
	"ziptowebp/internal/logging"
	"ziptowebp/internal/naming"
	"ziptowebp/internal/services"
	"ziptowebp/internal/services/archive"
	"ziptowebp/internal/services/webp"
	"ziptowebp/internal/stage"
)

// Extractor unpacks a source archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}

// Transcoder converts one image file. It is called concurrently with
// distinct output paths.
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string) error
}

// Builder writes an archive from entries in the given order.
type Builder interface {
	Build(ctx context.Context, entries []archive.Entry, outputPath string) error
}

// Pipeline converts archives one job at a time.
type Pipeline struct {
	conv       config.Conversion
	policy     naming.Policy
	workers    int
	extractor  Extractor
	transcoder Transcoder
	builder    Builder
	logger     *slog.Logger
}

// New assembles a pipeline from explicit collaborators.
func New(cfg *config.Config, extractor Extractor, transcoder Transcoder, builder Builder, logger *slog.Logger) *Pipeline {
	workers := cfg.Conversion.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pipeline{
		conv:       cfg.Conversion,
		policy:     naming.NewPolicy(cfg.Conversion),
		workers:    workers,
		extractor:  extractor,
		transcoder: transcoder,
		builder:    builder,
		logger:     logging.NewComponentLogger(logger, "conversion"),
	}
}

// NewDefault wires the zip codec and the WebP transcoder.
func NewDefault(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	transcoder, err := webp.New(cfg.WebP)
	if err != nil {
		return nil, fmt.Errorf("webp transcoder: %w", err)
	}
	codec := archive.New()
	return New(cfg, codec, transcoder, codec, logger), nil
}

// Workers returns the transcode pool size.
func (p *Pipeline) Workers() int {
	return p.workers
}

// Layout resolves where a job will put its workspace and outputs.
func (p *Pipeline) Layout(job Job) Layout {
	base := bookkeepingBase(p.conv, job.Dir)
	outputDir := filepath.Join(base, p.conv.OutputDir)
	processedDir := filepath.Join(base, p.conv.ProcessedDir)
	return Layout{
		Workspace:     filepath.Join(job.Dir, WorkspaceName(p.conv.WorkspacePrefix, job.ID)),
		OutputDir:     outputDir,
		OutputPath:    filepath.Join(outputDir, p.policy.OutputArchiveName(job.ArchivePath)),
		ProcessedDir:  processedDir,
		ProcessedPath: filepath.Join(processedDir, filepath.Base(job.ArchivePath)),
	}
}

// Run drives job to Done or Failed. Failures are reported on the result as a
// *stage.Failure and never abort the caller.
func (p *Pipeline) Run(ctx context.Context, job Job) Result {
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, p.logger).With(logging.String(logging.FieldArchive, job.ArchivePath))

	r := &jobRun{
		pipeline: p,
		logger:   logger,
		current:  stage.Created,
		result: Result{
			Job:     job,
			Layout:  p.Layout(job),
			Stage:   stage.Created,
			Started: time.Now(),
		},
	}
	r.execute(ctx)
	r.result.Duration = time.Since(r.result.Started)

	if r.result.Succeeded() {
		logger.Info("job completed",
			logging.String(logging.FieldEventType, "job_complete"),
			logging.String("output", r.result.Layout.OutputPath),
			logging.String("processed", r.result.Layout.ProcessedPath),
			logging.Int("images", r.result.Converted),
			logging.Duration("duration", r.result.Duration),
		)
	}
	return r.result
}

// jobRun carries the mutable state of one Run call.
type jobRun struct {
	pipeline *Pipeline
	logger   *slog.Logger
	current  stage.Stage
	result   Result
	outputs  []string
}

func (r *jobRun) execute(ctx context.Context) {
	layout := r.result.Layout

	if !r.step(ctx, stage.Extracting, r.extract) {
		r.discardWorkspace()
		return
	}
	if !r.step(ctx, stage.Converting, r.convert) {
		r.discardWorkspace()
		return
	}
	if !r.step(ctx, stage.Packing, r.pack) {
		r.discardWorkspace()
		return
	}
	if !r.step(ctx, stage.CleaningUp, func(context.Context) error {
		return removeWorkspace(layout.Workspace)
	}) {
		return
	}
	if !r.step(ctx, stage.Relocating, r.relocate) {
		return
	}
	r.transition(stage.Done)
	r.result.Stage = stage.Done
}

// step runs fn as stage s, logging its start and outcome. It returns false
// after recording a failure.
func (r *jobRun) step(ctx context.Context, s stage.Stage, fn func(context.Context) error) bool {
	r.transition(s)
	stageCtx := services.WithStage(ctx, string(s))
	logger := logging.WithContext(stageCtx, r.logger)
	logger.Debug("stage started", logging.String(logging.FieldEventType, "stage_start"))

	started := time.Now()
	err := fn(stageCtx)
	elapsed := time.Since(started)
	r.result.Timings = append(r.result.Timings, StageTiming{Stage: s, Duration: elapsed})

	if err != nil {
		failure := stage.Fail(s, err)
		r.transition(stage.Failed)
		r.result.Stage = stage.Failed
		r.result.FailedStage = s
		r.result.Err = failure
		logging.ErrorWithContext(logger, "stage failed", "stage_failure",
			logging.String("error_kind", string(services.KindOf(err))),
			logging.Error(err),
			logging.Duration("duration", elapsed),
		)
		return false
	}

	logger.Debug("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", elapsed),
	)
	return true
}

func (r *jobRun) transition(next stage.Stage) {
	if !stage.CanTransition(r.current, next) {
		panic(fmt.Sprintf("conversion: illegal stage transition %s -> %s", r.current, next))
	}
	r.current = next
}

func (r *jobRun) extract(ctx context.Context) error {
	layout := r.result.Layout
	if err := checkTargets(layout); err != nil {
		return err
	}
	if err := createWorkspace(layout.Workspace); err != nil {
		return err
	}
	return r.pipeline.extractor.Extract(ctx, r.result.Job.ArchivePath, layout.Workspace)
}

func (r *jobRun) convert(ctx context.Context) error {
	p := r.pipeline
	workspace := r.result.Layout.Workspace

	images, err := findImages(workspace, p.conv.SourceExt)
	if err != nil {
		return err
	}
	r.result.Images = len(images)

	plan, err := p.policy.Plan(images)
	if err != nil {
		return err
	}
	tasks := make([]imageTask, 0, len(images))
	for _, image := range images {
		tasks = append(tasks, imageTask{Source: image, Output: filepath.Join(workspace, plan[image])})
	}

	r.logger.Info("converting images",
		logging.String(logging.FieldEventType, "convert_start"),
		logging.Int("images", len(tasks)),
		logging.Int("workers", min(p.workers, max(len(tasks), 1))),
	)

	outputs, err := p.transcodeAll(ctx, r.logger, tasks)
	r.result.Converted = len(outputs)
	if err != nil {
		return err
	}
	r.outputs = outputs
	return nil
}

func (r *jobRun) pack(ctx context.Context) error {
	layout := r.result.Layout

	outputs := append([]string(nil), r.outputs...)
	sort.Strings(outputs)

	entries := make([]archive.Entry, 0, len(outputs))
	for _, path := range outputs {
		name, err := filepath.Rel(layout.Workspace, path)
		if err != nil {
			return fmt.Errorf("arcname for %s: %w", path, err)
		}
		entries = append(entries, archive.Entry{Path: path, Name: name})
	}
	return r.pipeline.builder.Build(ctx, entries, layout.OutputPath)
}

func (r *jobRun) relocate(context.Context) error {
	layout := r.result.Layout
	if err := os.MkdirAll(layout.ProcessedDir, 0o755); err != nil {
		return &services.FilesystemError{
			Kind: services.ClassifyOS(err, services.KindOther),
			Op:   "create processed dir",
			Path: layout.ProcessedDir,
			Err:  err,
		}
	}

	leftover, err := fileutil.MoveFile(r.result.Job.ArchivePath, layout.ProcessedPath)
	if err != nil {
		return &services.FilesystemError{
			Kind: services.ClassifyOS(err, services.KindOther),
			Op:   "move original",
			Path: r.result.Job.ArchivePath,
			Err:  err,
		}
	}
	if leftover {
		logging.WarnWithContext(r.logger, "original archive copied but not removed", "relocate_source_cleanup_failed",
			logging.String("processed", layout.ProcessedPath),
			logging.String(logging.FieldErrorHint, "delete the original archive manually"),
			logging.String(logging.FieldImpact, "the archive will be converted again on the next run"),
		)
	}
	return nil
}

// checkTargets refuses a job whose output archive or processed path is
// already taken, for example by a same-named archive in a sibling folder
// that shares the parent's Output and Converted_Zip. Nothing is written.
func checkTargets(layout Layout) error {
	for _, target := range []struct{ op, path string }{
		{"check output archive", layout.OutputPath},
		{"check processed path", layout.ProcessedPath},
	} {
		if _, err := os.Lstat(target.path); err == nil {
			return &services.FilesystemError{
				Kind: services.KindOther,
				Op:   target.op,
				Path: target.path,
				Err:  fileutil.ErrTargetExists,
			}
		}
	}
	return nil
}

// discardWorkspace removes the workspace after a failed stage. A removal
// error is logged; the original failure is what the job reports.
func (r *jobRun) discardWorkspace() {
	if err := removeWorkspace(r.result.Layout.Workspace); err != nil {
		logging.WarnWithContext(r.logger, "failed to remove workspace", "workspace_cleanup_failed",
			logging.String("workspace", r.result.Layout.Workspace),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "delete the workspace directory manually"),
			logging.String(logging.FieldImpact, "scratch files remain on disk"),
		)
	}
}
