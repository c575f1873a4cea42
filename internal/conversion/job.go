package conversion

import (
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ziptowebp/internal/config"
	"ziptowebp/internal/stage"
)

// Job is one source archive to convert.
type Job struct {
	ID          string
	ArchivePath string
	// Dir is the archive's containing directory; the workspace lives here and
	// bookkeeping folders are placed relative to it.
	Dir string
}

// NewJob creates a job with a fresh identifier for the archive at path.
func NewJob(archivePath string) Job {
	return Job{
		ID:          uuid.NewString(),
		ArchivePath: archivePath,
		Dir:         filepath.Dir(archivePath),
	}
}

// Layout is the set of filesystem locations a job reads and writes.
type Layout struct {
	Workspace     string
	OutputDir     string
	OutputPath    string
	ProcessedDir  string
	ProcessedPath string
}

// StageTiming records how long a job spent in one stage.
type StageTiming struct {
	Stage    stage.Stage
	Duration time.Duration
}

// Result is the outcome of running one job.
type Result struct {
	Job    Job
	Layout Layout
	// Stage is Done on success or Failed otherwise.
	Stage       stage.Stage
	FailedStage stage.Stage
	Images      int
	Converted   int
	Err         error
	Started     time.Time
	Duration    time.Duration
	Timings     []StageTiming
}

// Succeeded reports whether the job reached Done.
func (r Result) Succeeded() bool {
	return r.Stage == stage.Done
}

// bookkeepingBase returns the directory Output/ and Converted_Zip/ are created in.
func bookkeepingBase(conv config.Conversion, jobDir string) string {
	if conv.Placement == config.PlacementArchiveDir {
		return jobDir
	}
	return filepath.Dir(jobDir)
}
