// Package preflight checks that a mux run can succeed before it starts.
//
// The CLI `check` command prints every result; `mux` runs the same checks and
// aborts when a required one fails. Dry runs only need the subtitle inputs,
// so binary, output and free-space checks are skipped for them.
package preflight
