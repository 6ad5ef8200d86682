// Package ass reads, merges and writes Advanced SubStation Alpha scripts.
//
// The parser is lossless for sections it does not understand so a script can
// be merged with typesetting, opening and ending files and saved without
// dropping authoring metadata. Helpers extract chapter markers and the font
// faces the dialogue actually renders with.
package ass
