package release

import (
	"strings"

	"golang.org/x/text/cases"
	xlanguage "golang.org/x/text/language"
)

// Section titles as they appear in the template.
const (
	SectionInfo      = "Anime Information"
	SectionStaff     = "Staff"
	SectionSongStaff = "Song Staff"
	SectionVideo     = "Video"
	SectionAudio     = "Audio"
	SectionSubtitles = "Subtitles"
)

// RequiredSections must be present in every template.
var RequiredSections = []string{SectionInfo, SectionStaff, SectionVideo, SectionAudio, SectionSubtitles}

// Metadata is a complete release template.
type Metadata struct {
	Info      ReleaseInfo       `json:"info"`
	Staff     []StaffCredit     `json:"staff"`
	SongStaff []SongStaffCredit `json:"song_staff,omitempty"`
	Video     VideoSpec         `json:"video"`
	Audio     []AudioTrack      `json:"audio"`
	Subtitles []SubtitleTrack   `json:"subtitles"`
}

// ReleaseInfo identifies the show. Every field is optional.
type ReleaseInfo struct {
	Title   string `json:"title,omitempty"`
	TVDBID  string `json:"tvdb_id,omitempty"`
	AniDBID string `json:"anidb_id,omitempty"`
	Season  string `json:"season,omitempty"`
}

// StaffRole is a credited release role.
type StaffRole string

const (
	RoleTranslation      StaffRole = "Translation"
	RoleTranslationCheck StaffRole = "Translation Check"
	RoleEditing          StaffRole = "Editing"
	RoleEncode           StaffRole = "Encode"
	RoleTiming           StaffRole = "Timing"
	RoleTypesetting      StaffRole = "Typesetting"
	RoleQualityControl   StaffRole = "Quality Control"
	RoleSpecialThanks    StaffRole = "Special Thanks"
)

// StaffRoles lists roles in template order.
var StaffRoles = []StaffRole{
	RoleTranslation, RoleTranslationCheck, RoleEditing, RoleEncode,
	RoleTiming, RoleTypesetting, RoleQualityControl, RoleSpecialThanks,
}

// SongStaffRole is a credited role for opening and ending songs.
type SongStaffRole string

const (
	SongRoleTranslation SongStaffRole = "Translation"
	SongRoleEditing     SongStaffRole = "Editing"
	SongRoleTiming      SongStaffRole = "Timing"
	SongRoleStyling     SongStaffRole = "Song Styling"
)

// SongStaffRoles lists song roles in template order.
var SongStaffRoles = []SongStaffRole{SongRoleTranslation, SongRoleEditing, SongRoleTiming, SongRoleStyling}

// StaffCredit names who filled a role.
type StaffCredit struct {
	Role StaffRole `json:"role"`
	Name string    `json:"name"`
}

// SongStaffCredit names who filled a song role.
type SongStaffCredit struct {
	Role SongStaffRole `json:"role"`
	Name string        `json:"name"`
}

// VideoSpec describes the video track.
type VideoSpec struct {
	Source      string `json:"source,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	Codec       string `json:"codec,omitempty"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// AudioTrack describes one audio track row.
type AudioTrack struct {
	Language string `json:"language"`
	Codec    string `json:"codec"`
	Channels string `json:"channels"`
	Bitrate  string `json:"bitrate"`
	Source   string `json:"source"`
	Default  Flag   `json:"default"`
	Forced   Flag   `json:"forced"`
}

// SubtitleTrack describes one subtitle track row.
type SubtitleTrack struct {
	Label        string `json:"label"`
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
	Format       string `json:"format"`
	Default      Flag   `json:"default"`
	Forced       Flag   `json:"forced"`
}

// Flag is a Yes/No cell. Values read from a template are kept verbatim so
// Validate can report malformed ones.
type Flag string

const (
	Yes Flag = "Yes"
	No  Flag = "No"
)

// FlagOf converts a bool.
func FlagOf(v bool) Flag {
	if v {
		return Yes
	}
	return No
}

// Valid reports whether the flag reads as Yes or No, ignoring case.
func (f Flag) Valid() bool {
	_, ok := f.Bool()
	return ok
}

// Bool returns the flag value; ok is false for anything but Yes/No.
func (f Flag) Bool() (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "yes":
		return true, true
	case "no":
		return false, true
	}
	return false, false
}

// ParseStaffRole matches a role name, ignoring case and extra spaces.
func ParseStaffRole(value string) (StaffRole, bool) {
	normalized := StaffRole(normalizeRole(value))
	for _, role := range StaffRoles {
		if role == normalized {
			return role, true
		}
	}
	return normalized, false
}

// ParseSongStaffRole matches a song role name, ignoring case and extra spaces.
func ParseSongStaffRole(value string) (SongStaffRole, bool) {
	normalized := SongStaffRole(normalizeRole(value))
	for _, role := range SongStaffRoles {
		if role == normalized {
			return role, true
		}
	}
	return normalized, false
}

func normalizeRole(value string) string {
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(xlanguage.English).String(strings.Join(strings.Fields(value), " "))
}
