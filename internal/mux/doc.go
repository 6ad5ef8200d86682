// Package mux assembles release Matroska files with mkvmerge.
//
// A Job carries the premuxed video, audio tracks, the merged subtitle script,
// font attachments, chapters and an optional cover. Muxer writes to a hidden
// temp file in the output directory, hashes it, and renames it to the name
// produced by Naming once the CRC32 is known.
package mux
