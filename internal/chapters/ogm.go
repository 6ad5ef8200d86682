// Package chapters writes chapter files for mkvmerge.
package chapters

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"muxsystem/internal/ass"
	"muxsystem/internal/fileutil"
)

// WriteOGM writes chapters in the simple OGM format accepted by
// `mkvmerge --chapters`. Chapters without a name are labelled by position.
func WriteOGM(w io.Writer, chapters []ass.Chapter) error {
	bw := bufio.NewWriter(w)
	for i, ch := range chapters {
		n := i + 1
		name := strings.TrimSpace(strings.ReplaceAll(ch.Name, "\n", " "))
		if name == "" {
			name = fmt.Sprintf("Chapter %02d", n)
		}
		fmt.Fprintf(bw, "CHAPTER%02d=%s\n", n, formatTimestamp(ch.Start))
		fmt.Fprintf(bw, "CHAPTER%02dNAME=%s\n", n, name)
	}
	return bw.Flush()
}

// WriteFile writes chapters to path. Nothing is written for an empty list and
// the returned bool reports whether a file was created.
func WriteFile(path string, chapters []ass.Chapter) (bool, error) {
	if len(chapters) == 0 {
		return false, nil
	}
	err := fileutil.Write(path, 0o644, func(w io.Writer) error {
		return WriteOGM(w, chapters)
	})
	if err != nil {
		return false, fmt.Errorf("write chapters: %w", err)
	}
	return true, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
}
