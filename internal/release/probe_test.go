package release

import (
	"testing"

	"muxsystem/internal/config"
	"muxsystem/internal/media/audio"
	"muxsystem/internal/media/ffprobe"
)

const muxedProbe = `{
  "streams": [
    {"index": 0, "codec_name": "hevc", "codec_type": "video", "width": 1920, "height": 1080,
     "display_aspect_ratio": "16:9", "pix_fmt": "yuv420p10le"},
    {"index": 1, "codec_name": "flac", "codec_type": "audio", "channels": 2,
     "tags": {"language": "jpn", "BPS": "1200000"}, "disposition": {"default": 1, "forced": 0}},
    {"index": 2, "codec_name": "ass", "codec_type": "subtitle",
     "tags": {"language": "ind", "title": "[testing] Indonesian"}, "disposition": {"default": 1, "forced": 0}}
  ],
  "format": {"duration": "1420.5"}
}`

func TestFromProbe(t *testing.T) {
	probe, err := ffprobe.Decode([]byte(muxedProbe))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	cfg := config.Default()
	cfg.Show.Name = "Frieren"
	cfg.Show.TVDBID = 424536

	m := FromProbe(&cfg, probe, []audio.Info{{Codec: "FLAC", BitDepth: 24, SampleRate: 48000}})

	if m.Info.Title != "Frieren" || m.Info.TVDBID != "424536" || m.Info.AniDBID != "" || m.Info.Season != "1" {
		t.Fatalf("unexpected info: %+v", m.Info)
	}
	wantVideo := VideoSpec{Resolution: "1920x1080", Codec: "HEVC", AspectRatio: "16:9", Notes: "10-bit"}
	if m.Video != wantVideo {
		t.Fatalf("video = %+v, want %+v", m.Video, wantVideo)
	}
	if len(m.Audio) != 1 {
		t.Fatalf("expected one audio track, got %+v", m.Audio)
	}
	wantAudio := AudioTrack{
		Language: "Japanese", Codec: "FLAC", Channels: "2.0", Bitrate: "1200 kbps",
		Source: "FLAC 24-bit 48 kHz", Default: Yes, Forced: No,
	}
	if m.Audio[0] != wantAudio {
		t.Fatalf("audio = %+v, want %+v", m.Audio[0], wantAudio)
	}
	if len(m.Subtitles) != 1 {
		t.Fatalf("expected one subtitle track, got %+v", m.Subtitles)
	}
	sub := m.Subtitles[0]
	if sub.Language != "Indonesian" || sub.LanguageCode != "id" || sub.Format != "ASS" || sub.Label != "[testing] Indonesian" {
		t.Fatalf("unexpected subtitle: %+v", sub)
	}
	if len(m.Staff) != len(StaffRoles) {
		t.Fatalf("staff rows should be left blank for every role, got %d", len(m.Staff))
	}
	if issues := m.Validate(); HasErrors(issues) {
		t.Fatalf("pre-filled template should validate: %v", issues)
	}
}

func TestFromProbeWithoutStreams(t *testing.T) {
	m := FromProbe(nil, ffprobe.Result{}, nil)
	if len(m.Audio) != 1 || len(m.Subtitles) != 1 {
		t.Fatalf("expected blank rows to remain, got %+v / %+v", m.Audio, m.Subtitles)
	}
}
