package release

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Render writes metadata as the markdown template.
func Render(m Metadata) string {
	var b strings.Builder
	b.WriteString("# Release Information\n")

	section(&b, SectionInfo, table.Row{"Field", "Value"}, []table.Row{
		{"Title", m.Info.Title},
		{"TVDB ID", m.Info.TVDBID},
		{"AniDB ID", m.Info.AniDBID},
		{"Season", m.Info.Season},
	})

	staff := make([]table.Row, 0, len(m.Staff))
	for _, credit := range m.Staff {
		staff = append(staff, table.Row{string(credit.Role), credit.Name})
	}
	section(&b, SectionStaff, table.Row{"Role", "Name"}, staff)

	songStaff := make([]table.Row, 0, len(m.SongStaff))
	for _, credit := range m.SongStaff {
		songStaff = append(songStaff, table.Row{string(credit.Role), credit.Name})
	}
	section(&b, SectionSongStaff, table.Row{"Role", "Name"}, songStaff)

	section(&b, SectionVideo, table.Row{"Field", "Value"}, []table.Row{
		{"Source", m.Video.Source},
		{"Resolution", m.Video.Resolution},
		{"Codec", m.Video.Codec},
		{"Aspect Ratio", m.Video.AspectRatio},
		{"Notes", m.Video.Notes},
	})

	audio := make([]table.Row, 0, len(m.Audio))
	for _, track := range m.Audio {
		audio = append(audio, table.Row{track.Language, track.Codec, track.Channels, track.Bitrate, track.Source, string(track.Default), string(track.Forced)})
	}
	section(&b, SectionAudio, table.Row{"Language", "Codec", "Channels", "Bitrate", "Source", "Default", "Forced"}, audio)

	subs := make([]table.Row, 0, len(m.Subtitles))
	for _, track := range m.Subtitles {
		subs = append(subs, table.Row{track.Label, track.Language, track.LanguageCode, track.Format, string(track.Default), string(track.Forced)})
	}
	section(&b, SectionSubtitles, table.Row{"Track", "Language", "Code", "Format", "Default", "Forced"}, subs)

	return b.String()
}

// cellEscaper backslash-escapes inline markdown so cell text survives Parse.
// go-pretty escapes "|" itself.
var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"&", `\&`,
)

func section(b *strings.Builder, title string, header table.Row, rows []table.Row) {
	tw := table.NewWriter()
	tw.AppendHeader(header)
	for _, row := range rows {
		escaped := make(table.Row, len(row))
		for i, value := range row {
			if text, ok := value.(string); ok {
				value = cellEscaper.Replace(text)
			}
			escaped[i] = value
		}
		tw.AppendRow(escaped)
	}
	b.WriteString("\n## " + title + "\n\n")
	b.WriteString(tw.RenderMarkdown())
	b.WriteString("\n")
}

// Blank returns a template with every role listed and one audio and one
// subtitle row ready to fill in.
func Blank() Metadata {
	m := Metadata{
		Audio:     []AudioTrack{{Default: Yes, Forced: No}},
		Subtitles: []SubtitleTrack{{Default: Yes, Forced: No}},
	}
	for _, role := range StaffRoles {
		m.Staff = append(m.Staff, StaffCredit{Role: role})
	}
	for _, role := range SongStaffRoles {
		m.SongStaff = append(m.SongStaff, SongStaffCredit{Role: role})
	}
	return m
}
