// Package language normalizes track language codes.
//
// A small table covers the languages fansub releases actually ship (Japanese
// audio, Indonesian/English subtitles, and neighbours) with the ISO 639-2/B
// codes mkvmerge expects; everything else falls back to x/text CLDR data.
package language
