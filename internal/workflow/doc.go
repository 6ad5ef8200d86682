// Package workflow runs the per-episode mux pipeline.
//
// A Pipeline resolves the requested episodes, holds a lock in the work
// directory for the duration of a run, and for each episode locates the
// premux video, audio and subtitle inputs, merges typesetting, song and common
// scripts into the dialogue script, extracts chapters, resolves the fonts the
// script uses and hands the result to the muxer. Every outcome is recorded in
// the history store when one is configured.
//
// Dry runs stop before muxing: inputs are discovered and the merged script and
// chapters are still written to the work directory so they can be inspected.
package workflow
