// Package main hosts the muxsystem CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration (after a .env file in the
// working directory has been applied to the environment), builds the logger
// and history store, and hands work to the internal packages: mux runs the
// episode pipeline, release manages the metadata template, torrent packages
// muxed files, and check reports preflight results.
//
// Exit codes follow the release scripts this tool replaces: 2 for a malformed
// episode selection, 1 when nothing was processed or a run could not start,
// and 0 when at least one episode was processed.
package main
