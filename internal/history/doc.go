// Package history persists the outcome of every episode a mux run attempts.
//
// The store is a single SQLite database under the log directory opened in WAL
// mode. Writes retry briefly on SQLITE_BUSY so overlapping CLI invocations
// (for example `history` while a run is recording) do not fail.
package history
