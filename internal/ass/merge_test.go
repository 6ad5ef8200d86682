package ass

import (
	"slices"
	"testing"
	"time"
)

const opScript = "[Script Info]\nTitle: OP\n\n" +
	"[V4+ Styles]\n" +
	"Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n" +
	"Style: Default,Arial,60,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,1,2,60,60,40,1\n" +
	"Style: OP Romaji,Kurenaido,50,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,1,8,60,60,40,1\n\n" +
	"[Events]\n" +
	"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n" +
	"Comment: 0,0:00:10.00,0:00:10.00,Default,,0,0,0,sync,\n" +
	"Dialogue: 0,0:00:11.00,0:00:14.00,OP Romaji,,0,0,0,,kimi no koe\n"

const episodeScript = "[Script Info]\nTitle: Episode\n\n" +
	"[Events]\n" +
	"Format: Layer, Start, End, Style, Actor, MarginL, MarginR, MarginV, Effect, Text\n" +
	"Comment: 0,0:02:00.00,0:02:00.00,Default,,0,0,0,opsync,\n" +
	"Dialogue: 0,0:00:05.00,0:00:06.00,Default,,0,0,0,,Line\n"

func TestMergeSyncsToMarker(t *testing.T) {
	doc := mustParse(t, episodeScript)
	op := mustParse(t, opScript)

	result := doc.Merge(op, MergeOptions{SyncTarget: "opsync", SyncSource: "sync"})
	if !result.Synced {
		t.Fatal("expected merge to sync")
	}
	if result.Offset != 110*time.Second {
		t.Fatalf("unexpected offset %v", result.Offset)
	}
	if result.Styles != 2 || result.Events != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}

	events := doc.Events()
	if len(events) != 2 {
		t.Fatalf("expected markers removed, got %d events", len(events))
	}
	merged := events[1]
	if merged.Start() != 121*time.Second || merged.End() != 124*time.Second {
		t.Fatalf("unexpected merged timing %v-%v", merged.Start(), merged.End())
	}
	if merged.Style() != "OP Romaji" || merged.Text() != "kimi no koe" {
		t.Fatalf("merged event fields not remapped: style=%q text=%q", merged.Style(), merged.Text())
	}
	// The source marker must not leak into the merged script.
	for _, e := range events {
		if e.marked("sync") || e.marked("opsync") {
			t.Fatalf("marker event survived merge: %+v", e)
		}
	}
}

func TestMergeAddsStylesBeforeEvents(t *testing.T) {
	doc := mustParse(t, episodeScript)
	doc.Merge(mustParse(t, opScript), MergeOptions{SyncTarget: "opsync", SyncSource: "sync"})

	want := []string{"Script Info", "V4+ Styles", "Events"}
	if got := doc.SectionNames(); !slices.Equal(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
}

func TestMergeWithoutTargetKeepsTiming(t *testing.T) {
	doc := mustParse(t, "[Events]\nFormat: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	op := mustParse(t, opScript)

	result := doc.Merge(op, MergeOptions{SyncTarget: "opsync", SyncSource: "sync"})
	if result.Synced {
		t.Fatal("expected unsynced merge without target marker")
	}
	events := doc.Events()
	if len(events) != 1 {
		t.Fatalf("expected only dialogue merged, got %d", len(events))
	}
	if events[0].Start() != 11*time.Second {
		t.Fatalf("timing changed without sync: %v", events[0].Start())
	}
}

func TestMergeKeepsExistingStyles(t *testing.T) {
	doc := mustParse(t, opScript)
	other := mustParse(t, opScript)

	result := doc.Merge(other, MergeOptions{})
	if result.Styles != 0 {
		t.Fatalf("duplicate styles should be skipped, added %d", result.Styles)
	}
	if len(doc.Styles()) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(doc.Styles()))
	}
}

func TestMergeFallsBackToEarliestDialogue(t *testing.T) {
	doc := mustParse(t, episodeScript)
	other := mustParse(t, "[Events]\n"+
		"Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n"+
		"Dialogue: 0,0:00:03.00,0:00:04.00,Default,,0,0,0,,Later\n"+
		"Dialogue: 0,0:00:01.00,0:00:02.00,Default,,0,0,0,,First\n")

	result := doc.Merge(other, MergeOptions{SyncTarget: "opsync", SyncSource: "sync"})
	if !result.Synced || result.Offset != 119*time.Second {
		t.Fatalf("unexpected result %+v", result)
	}
}
