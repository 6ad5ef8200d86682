// Package ffprobe runs ffprobe against muxed outputs and decodes its JSON.
//
// Stream helpers pick the tracks the release template describes: the primary
// video stream plus every audio and subtitle stream in file order.
package ffprobe
