// Package logging assembles structured slog loggers and formatting helpers used
// across muxsystem.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context helpers so pipeline code tags every line with
// the run identifier and episode. NewNop gives tests and optional wiring a
// logger that cannot fail.
package logging
