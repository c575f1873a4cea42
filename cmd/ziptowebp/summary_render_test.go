package main

import (
	"errors"
	"strings"
	"testing"
	"time"

	"ziptowebp/internal/conversion"
	"ziptowebp/internal/services"
	"ziptowebp/internal/stage"
	"ziptowebp/internal/walker"
)

func TestRenderSummaryShowsFailures(t *testing.T) {
	cause := &services.ImageError{Kind: services.KindUnsupportedOrCorrupt, Op: "decode", Path: "/w/002.jpeg", Err: errors.New("invalid JPEG format")}
	summary := &walker.Summary{
		Root:     "/books",
		Duration: 2 * time.Second,
		Stats:    walker.Stats{Total: 2, Succeeded: 1, Failed: 1, Images: 3},
		Results: []conversion.Result{
			{
				Job:       conversion.Job{ArchivePath: "/books/a/one.zip"},
				Stage:     stage.Done,
				Converted: 3,
				Duration:  time.Second,
			},
			{
				Job:         conversion.Job{ArchivePath: "/books/b/two.zip"},
				Stage:       stage.Failed,
				FailedStage: stage.CleaningUp,
				Err:         stage.Fail(stage.CleaningUp, cause),
			},
		},
	}

	out := renderSummary(summary, false)
	for _, want := range []string{
		"a/one.zip",
		"b/two.zip",
		"FAILED",
		"Cleaning Up",
		"unsupported or corrupt: invalid JPEG format",
		"1 converted, 1 failed, 2 total",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, ansiReset) {
		t.Fatal("uncolored summary contains ANSI codes")
	}
}

func TestRenderSummaryDryRun(t *testing.T) {
	summary := &walker.Summary{Root: "/books", DryRun: true}
	if got := renderSummary(summary, false); got != "No archives found under /books" {
		t.Fatalf("unexpected empty plan: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Fatalf("truncate long = %q", got)
	}
}
