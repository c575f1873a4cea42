package history

import "time"

// Outcome values stored for each job.
const (
	OutcomeDone   = "done"
	OutcomeFailed = "failed"
)

// Run is one invocation of the directory walker.
type Run struct {
	ID         string
	Root       string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Archives   int
	Succeeded  int
	Failed     int
}

// Job is the recorded outcome of one archive conversion.
type Job struct {
	ID            string
	RunID         string
	ArchivePath   string
	OutputPath    string
	ProcessedPath string
	Outcome       string
	FailedStage   string
	ErrorKind     string
	ErrorMessage  string
	Images        int
	Converted     int
	StartedAt     time.Time
	Duration      time.Duration
}

// Failed reports whether the job ended in failure.
func (j Job) Failed() bool {
	return j.Outcome == OutcomeFailed
}
