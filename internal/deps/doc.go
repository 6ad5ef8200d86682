// Package deps checks that external binaries such as mkvmerge are on PATH.
package deps
