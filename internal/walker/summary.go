package walker

import (
	"time"

	"ziptowebp/internal/conversion"
)

// Stats tracks aggregate counters across a walk.
type Stats struct {
	Total     int
	Succeeded int
	Failed    int
	Images    int
}

// Summary is the outcome of one walk.
type Summary struct {
	RunID    string
	Root     string
	DryRun   bool
	Started  time.Time
	Duration time.Duration
	Stats    Stats
	// Results holds one entry per archive in processing order. In a dry run
	// only Job and Layout are populated.
	Results []conversion.Result
}

// HasFailures reports whether any job failed.
func (s *Summary) HasFailures() bool {
	return s != nil && s.Stats.Failed > 0
}

func (s *Summary) add(result conversion.Result) {
	s.Results = append(s.Results, result)
	s.Stats.Total++
	if result.Succeeded() {
		s.Stats.Succeeded++
		s.Stats.Images += result.Converted
		return
	}
	s.Stats.Failed++
}

func (s *Summary) plan(result conversion.Result) {
	s.Results = append(s.Results, result)
	s.Stats.Total++
}
