package ass

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// Chapter is a named position in the episode.
type Chapter struct {
	Start time.Duration
	Name  string
}

var chapterMarkers = []string{"chapter", "chptr", "chap"}

// Chapters collects comment lines marked as chapters. The marker is read from
// the actor field when useActor is set and from the effect field otherwise;
// the line text names the chapter.
func (d *Document) Chapters(useActor bool) []Chapter {
	var chapters []Chapter
	for _, e := range d.Events() {
		if !e.IsComment() {
			continue
		}
		field := e.Effect()
		if useActor {
			field = e.Name()
		}
		if !slices.Contains(chapterMarkers, strings.ToLower(field)) {
			continue
		}
		chapters = append(chapters, Chapter{Start: e.Start(), Name: StripTags(e.Text())})
	}
	slices.SortStableFunc(chapters, func(a, b Chapter) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return chapters
}

// StripTags removes override blocks and converts hard line breaks to spaces.
func StripTags(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '{':
			depth++
		case r == '}' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	out := strings.NewReplacer(`\N`, " ", `\n`, " ", `\h`, " ").Replace(b.String())
	return strings.Join(strings.Fields(out), " ")
}
