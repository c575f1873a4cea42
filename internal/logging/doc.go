// Package logging assembles structured slog loggers used across ziptowebp.
//
// It owns the console and JSON handlers, maps configured levels and output
// paths onto them, and exposes context-aware helpers so pipeline code can
// tag every line with the run ID, job ID, and pipeline stage without threading
// attributes by hand. A no-op logger is available for tests and for wiring
// code that must not fail.
package logging
