package ass

import (
	"slices"
	"strings"
	"time"
)

// MergeOptions controls how another script is folded into a document.
type MergeOptions struct {
	// SyncTarget names the marker event (matched against Effect or Name) in the
	// receiving document whose start time anchors the merged lines.
	SyncTarget string
	// SyncSource names the marker event in the merged script. When empty or
	// absent the earliest dialogue line is used.
	SyncSource string
}

// MergeResult reports what Merge did.
type MergeResult struct {
	Styles int
	Events int
	Synced bool
	Offset time.Duration
}

// Merge appends other's styles and events to d. Styles whose name already
// exists in d are kept from d. Marker events used for syncing are removed from
// both scripts.
func (d *Document) Merge(other *Document, opts MergeOptions) MergeResult {
	var result MergeResult
	if other == nil {
		return result
	}

	styles := d.ensureSection(sectionStyles, defaultStyleFormat)
	existing := make(map[string]struct{}, len(styles.styles))
	for _, s := range styles.styles {
		existing[s.Name()] = struct{}{}
	}
	for _, s := range other.Styles() {
		if _, ok := existing[s.Name()]; ok {
			continue
		}
		existing[s.Name()] = struct{}{}
		styles.styles = append(styles.styles, s.remap(styles.format))
		result.Styles++
	}

	events := d.ensureSection(sectionEvents, defaultEventFormat)
	incoming := other.Events()

	if target := strings.TrimSpace(opts.SyncTarget); target != "" {
		targetIdx := slices.IndexFunc(events.events, func(e *Event) bool { return e.marked(target) })
		if targetIdx >= 0 {
			anchor := events.events[targetIdx].Start()
			events.events = slices.Delete(events.events, targetIdx, targetIdx+1)

			sourceIdx := slices.IndexFunc(incoming, func(e *Event) bool { return e.marked(opts.SyncSource) })
			var base time.Duration
			if sourceIdx >= 0 {
				base = incoming[sourceIdx].Start()
				incoming = slices.Delete(slices.Clone(incoming), sourceIdx, sourceIdx+1)
			} else {
				base = earliestDialogue(incoming)
			}
			result.Synced = true
			result.Offset = anchor - base
		}
	}
	if !result.Synced && strings.TrimSpace(opts.SyncSource) != "" {
		// Unsynced merges still drop the source marker so it cannot anchor a later merge.
		if idx := slices.IndexFunc(incoming, func(e *Event) bool { return e.marked(opts.SyncSource) }); idx >= 0 {
			incoming = slices.Delete(slices.Clone(incoming), idx, idx+1)
		}
	}

	for _, e := range incoming {
		merged := e.remap(events.format)
		if result.Offset != 0 {
			merged.Shift(result.Offset)
		}
		events.events = append(events.events, merged)
		result.Events++
	}
	return result
}

func earliestDialogue(events []*Event) time.Duration {
	var (
		earliest time.Duration
		found    bool
	)
	for _, e := range events {
		if !e.IsDialogue() {
			continue
		}
		if start := e.Start(); !found || start < earliest {
			earliest = start
			found = true
		}
	}
	return earliest
}
