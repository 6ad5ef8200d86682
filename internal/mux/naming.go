package mux

import (
	"strconv"
	"strings"

	"muxsystem/internal/textutil"
)

// Placeholders understood by Naming templates.
const (
	PlaceholderShow  = "$show$"
	PlaceholderEp    = "$ep$"
	PlaceholderVer   = "$ver$"
	PlaceholderFlag  = "$flag$"
	PlaceholderTitle = "$title$"
	PlaceholderCRC32 = "$crc32$"
)

// Naming renders output file names and container titles.
type Naming struct {
	OutName  string
	MKVTitle string
	Show     string
	Flag     string
	Version  int
}

// VersionString returns "" for the first release and "v<N>" for revisions.
func VersionString(version int) string {
	if version <= 1 {
		return ""
	}
	return "v" + strconv.Itoa(version)
}

// Title renders the container title for an episode.
func (n Naming) Title(ep, episodeTitle string) string {
	return strings.TrimSpace(n.expand(n.MKVTitle, ep, episodeTitle, ""))
}

// FileName renders the output file name, including the .mkv extension.
func (n Naming) FileName(ep, episodeTitle, crc string) string {
	name := textutil.SanitizeFileName(n.expand(n.OutName, ep, episodeTitle, crc))
	if !strings.HasSuffix(strings.ToLower(name), ".mkv") {
		name += ".mkv"
	}
	return name
}

func (n Naming) expand(template, ep, episodeTitle, crc string) string {
	replacer := strings.NewReplacer(
		PlaceholderShow, n.Show,
		PlaceholderEp, ep,
		PlaceholderVer, VersionString(n.Version),
		PlaceholderFlag, n.Flag,
		PlaceholderTitle, episodeTitle,
		PlaceholderCRC32, crc,
	)
	out := strings.Join(strings.Fields(replacer.Replace(template)), " ")
	// An empty trailing $title$ would otherwise leave a dangling separator.
	return strings.TrimSuffix(out, " -")
}
