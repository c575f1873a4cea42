package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"ziptowebp/internal/services"
	"ziptowebp/internal/walker"
)

const maxDetailWidth = 60

func renderSummary(summary *walker.Summary, colorize bool) string {
	if summary.DryRun {
		return renderPlan(summary)
	}

	var b strings.Builder
	if len(summary.Results) > 0 {
		rows := make([][]string, 0, len(summary.Results))
		for _, result := range summary.Results {
			outcome, stageLabel, detail := "OK", "", ""
			kind := statusOK
			if !result.Succeeded() {
				outcome = "FAILED"
				kind = statusError
				stageLabel = result.FailedStage.Label()
				detail = failureDetail(result.Err)
			}
			rows = append(rows, []string{
				relativeTo(summary.Root, result.Job.ArchivePath),
				colorizeText(outcome, kind, colorize),
				stageLabel,
				strconv.Itoa(result.Converted),
				formatDuration(result.Duration),
				detail,
			})
		}
		b.WriteString(renderTable(
			[]column{col("Archive"), col("Outcome"), col("Stage"), numCol("Images"), numCol("Duration"), detailCol("Detail")},
			rows,
			[]string{"Total", "", "", strconv.Itoa(summary.Stats.Images), formatDuration(summary.Duration), ""},
		))
		b.WriteByte('\n')
	}

	kind := statusOK
	if summary.HasFailures() {
		kind = statusError
	}
	b.WriteString(renderStatusLine("Archives", kind, fmt.Sprintf("%d converted, %d failed, %d total",
		summary.Stats.Succeeded, summary.Stats.Failed, summary.Stats.Total), colorize))
	b.WriteByte('\n')
	b.WriteString(renderStatusLine("Images", statusInfo, strconv.Itoa(summary.Stats.Images), colorize))
	b.WriteByte('\n')
	b.WriteString(renderStatusLine("Elapsed", statusInfo, formatDuration(summary.Duration), colorize))
	return b.String()
}

func renderPlan(summary *walker.Summary) string {
	if len(summary.Results) == 0 {
		return "No archives found under " + summary.Root
	}
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		rows = append(rows, []string{
			relativeTo(summary.Root, result.Job.ArchivePath),
			result.Layout.OutputPath,
			result.Layout.ProcessedPath,
		})
	}
	return renderTable([]column{col("Archive"), col("Output"), col("Original moves to")}, rows, nil)
}

// failureDetail prefers the error kind plus the innermost message.
func failureDetail(err error) string {
	if err == nil {
		return ""
	}
	kind := services.KindOf(err)
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx >= 0 && idx+2 < len(msg) {
		msg = msg[idx+2:]
	}
	return fmt.Sprintf("%s: %s", strings.ReplaceAll(string(kind), "_", " "), msg)
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func truncate(value string, width int) string {
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	return string(runes[:width-1]) + "…"
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
