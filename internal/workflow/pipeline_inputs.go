package workflow

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"muxsystem/internal/ass"
)

// globMeta escapes characters filepath.Match treats specially so show names
// like "[Group] Title" match literally.
var globMeta = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)

// findFiles returns the sorted matches of pattern under dir. dir is matched
// literally.
func findFiles(dir, pattern string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(globMeta.Replace(dir), pattern))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// episodePattern builds "*<ep>*<suffix>".
func episodePattern(ep, suffix string) string {
	return "*" + globMeta.Replace(ep) + "*" + suffix
}

// expandMergePattern fills $show$ and $ep$ in a configured merge pattern.
func expandMergePattern(pattern, show, ep string) string {
	return strings.NewReplacer("$show$", globMeta.Replace(show), "$ep$", globMeta.Replace(ep)).Replace(pattern)
}

// audioFiles collects every audio input for ep across the configured
// extensions, de-duplicated and sorted.
func audioFiles(dir, ep string, extensions []string) ([]string, error) {
	var files []string
	for _, ext := range extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		matches, err := findFiles(dir, episodePattern(ep, ext))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// loadScripts parses and merges the dialogue scripts for an episode. The
// first file is the base; later ones are appended without syncing.
func loadScripts(paths []string) (*ass.Document, error) {
	var doc *ass.Document
	for _, path := range paths {
		next, err := ass.Open(path)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			doc = next
			continue
		}
		doc.Merge(next, ass.MergeOptions{})
	}
	return doc, nil
}
