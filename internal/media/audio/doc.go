// Package audio reads stream properties and tags from the audio files fed to
// mkvmerge.
//
// FLAC files are read through their STREAMINFO, Vorbis comment and picture
// metadata blocks. M4A files are probed through their MP4 box structure.
package audio
