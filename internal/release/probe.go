package release

import (
	"fmt"
	"strconv"
	"strings"

	"muxsystem/internal/config"
	"muxsystem/internal/language"
	"muxsystem/internal/media/audio"
	"muxsystem/internal/media/ffprobe"
)

var videoCodecNames = map[string]string{
	"hevc":  "HEVC",
	"h264":  "AVC",
	"av1":   "AV1",
	"vp9":   "VP9",
	"mpeg2": "MPEG-2",
}

var audioCodecNames = map[string]string{
	"flac":   "FLAC",
	"aac":    "AAC",
	"alac":   "ALAC",
	"opus":   "Opus",
	"ac3":    "AC-3",
	"eac3":   "E-AC-3",
	"dts":    "DTS",
	"truehd": "TrueHD",
}

var subtitleFormatNames = map[string]string{
	"ass":               "ASS",
	"ssa":               "SSA",
	"subrip":            "SRT",
	"hdmv_pgs_subtitle": "PGS",
}

// FromProbe pre-fills a template from a muxed output. Show details come from
// cfg, tracks from the ffprobe result. audioInfos, when given, supply the
// source description of each audio track in order.
func FromProbe(cfg *config.Config, probe ffprobe.Result, audioInfos []audio.Info) Metadata {
	m := Blank()
	if cfg != nil {
		m.Info = ReleaseInfo{Title: cfg.Show.Name}
		if cfg.Show.TVDBID > 0 {
			m.Info.TVDBID = strconv.Itoa(cfg.Show.TVDBID)
		}
		if cfg.Show.AniDBID > 0 {
			m.Info.AniDBID = strconv.Itoa(cfg.Show.AniDBID)
		}
		if cfg.Show.Season > 0 {
			m.Info.Season = strconv.Itoa(cfg.Show.Season)
		}
	}

	if video, ok := probe.PrimaryVideo(); ok {
		m.Video.Resolution = video.Resolution()
		m.Video.Codec = codecName(videoCodecNames, video.CodecName)
		m.Video.AspectRatio = video.AspectRatio()
		if strings.Contains(video.PixFmt, "10") {
			m.Video.Notes = "10-bit"
		}
	}

	if streams := probe.AudioStreams(); len(streams) > 0 {
		m.Audio = m.Audio[:0]
		for i, s := range streams {
			track := AudioTrack{
				Language: language.DisplayName(s.Language()),
				Codec:    codecName(audioCodecNames, s.CodecName),
				Channels: audio.ChannelLayout(s.Channels),
				Default:  FlagOf(s.IsDefault()),
				Forced:   FlagOf(s.IsForced()),
			}
			if kbps := s.BitRateKbps(); kbps > 0 {
				track.Bitrate = fmt.Sprintf("%d kbps", kbps)
			}
			if i < len(audioInfos) {
				track.Source = audioSource(audioInfos[i])
			}
			m.Audio = append(m.Audio, track)
		}
	}

	if streams := probe.SubtitleStreams(); len(streams) > 0 {
		m.Subtitles = m.Subtitles[:0]
		for _, s := range streams {
			code := s.Language()
			m.Subtitles = append(m.Subtitles, SubtitleTrack{
				Label:        s.Title(),
				Language:     language.DisplayName(code),
				LanguageCode: language.ToISO2(code),
				Format:       codecName(subtitleFormatNames, s.CodecName),
				Default:      FlagOf(s.IsDefault()),
				Forced:       FlagOf(s.IsForced()),
			})
		}
	}
	return m
}

func codecName(names map[string]string, codec string) string {
	codec = strings.ToLower(strings.TrimSpace(codec))
	if name, ok := names[codec]; ok {
		return name
	}
	return strings.ToUpper(codec)
}

// audioSource describes the source file, e.g. "FLAC 24-bit 48 kHz".
func audioSource(info audio.Info) string {
	parts := []string{info.Codec}
	if info.BitDepth > 0 {
		parts = append(parts, fmt.Sprintf("%d-bit", info.BitDepth))
	}
	if info.SampleRate > 0 {
		khz := strconv.FormatFloat(float64(info.SampleRate)/1000, 'f', -1, 64)
		parts = append(parts, khz+" kHz")
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
