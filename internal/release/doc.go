// Package release models the markdown release template that accompanies
// each batch: anime information, staff and song staff credits, and the
// video, audio and subtitle track tables.
//
// Render writes the template as GFM tables, Parse reads a hand-edited copy
// back, and Validate reports well-formedness problems such as missing
// sections or track flags that are not Yes/No.
package release
