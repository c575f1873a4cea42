package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"ziptowebp/internal/logging"
	"ziptowebp/internal/walker"
)

type recordingNotifier struct {
	completed []int
	errs      []error
}

func (r *recordingNotifier) NotifyRunCompleted(_ context.Context, _ string, succeeded, failed, images int, _ time.Duration) error {
	r.completed = append(r.completed, succeeded, failed, images)
	return nil
}

func (r *recordingNotifier) NotifyError(_ context.Context, err error, _ string) error {
	r.errs = append(r.errs, err)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func TestNotifyRunReportsSummary(t *testing.T) {
	notifier := &recordingNotifier{}
	summary := &walker.Summary{Stats: walker.Stats{Total: 3, Succeeded: 2, Failed: 1, Images: 9}}

	notifyRun(context.Background(), notifier, logging.NewNop(), "/books", summary, nil)

	if len(notifier.errs) != 0 {
		t.Fatalf("unexpected error notifications: %v", notifier.errs)
	}
	want := []int{2, 1, 9}
	if len(notifier.completed) != 3 || notifier.completed[0] != want[0] || notifier.completed[1] != want[1] || notifier.completed[2] != want[2] {
		t.Fatalf("completed = %v, want %v", notifier.completed, want)
	}
}

func TestNotifyRunReportsFatalError(t *testing.T) {
	notifier := &recordingNotifier{}
	runErr := errors.New("root missing")

	notifyRun(context.Background(), notifier, logging.NewNop(), "/books", nil, runErr)

	if len(notifier.errs) != 1 || !errors.Is(notifier.errs[0], runErr) {
		t.Fatalf("errs = %v", notifier.errs)
	}
	if len(notifier.completed) != 0 {
		t.Fatalf("unexpected completion: %v", notifier.completed)
	}
}
