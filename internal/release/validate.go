package release

import (
	"fmt"
	"strings"

	"muxsystem/internal/language"
)

// Severity grades a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single validation finding. Row is 1-based; zero means the issue
// concerns the whole section.
type Issue struct {
	Section  string   `json:"section"`
	Row      int      `json:"row,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

func (i Issue) String() string {
	var b strings.Builder
	b.WriteString(string(i.Severity))
	b.WriteString(": ")
	b.WriteString(i.Section)
	if i.Row > 0 {
		fmt.Fprintf(&b, " row %d", i.Row)
	}
	if i.Field != "" {
		b.WriteString(" " + i.Field)
	}
	b.WriteString(": " + i.Message)
	return b.String()
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a parsed template. Missing sections and header columns are
// reported first; row checks only run when every required section exists.
func Validate(doc *Document) []Issue {
	var issues []Issue
	for _, name := range RequiredSections {
		sec, ok := doc.Section(name)
		switch {
		case !ok:
			issues = append(issues, Issue{Section: name, Message: "section header missing", Severity: SeverityError})
		case sec.Table == nil:
			issues = append(issues, Issue{Section: name, Message: "section has no table", Severity: SeverityError})
		}
	}
	if len(issues) > 0 {
		return issues
	}

	// Rows cannot carry a flag whose column is absent; report the column once.
	absent := map[[2]string]bool{}
	for _, name := range []string{SectionAudio, SectionSubtitles} {
		sec, _ := doc.Section(name)
		for _, col := range []string{"Default", "Forced"} {
			if sec.Table.column(col) < 0 {
				absent[[2]string{name, col}] = true
				issues = append(issues, Issue{Section: name, Field: col, Message: "column missing", Severity: SeverityError})
			}
		}
	}

	m, err := doc.Metadata()
	if err != nil {
		return append(issues, Issue{Message: err.Error(), Severity: SeverityError})
	}
	for _, issue := range m.Validate() {
		if issue.Row > 0 && absent[[2]string{issue.Section, issue.Field}] {
			continue
		}
		issues = append(issues, issue)
	}
	return issues
}

// Validate checks typed metadata: staff roles, Yes/No flags and language codes.
func (m Metadata) Validate() []Issue {
	var issues []Issue
	for i, credit := range m.Staff {
		if _, ok := ParseStaffRole(string(credit.Role)); !ok {
			issues = append(issues, Issue{
				Section: SectionStaff, Row: i + 1, Field: "Role",
				Message:  fmt.Sprintf("unknown role %q", credit.Role),
				Severity: SeverityError,
			})
		}
	}
	for i, credit := range m.SongStaff {
		if _, ok := ParseSongStaffRole(string(credit.Role)); !ok {
			issues = append(issues, Issue{
				Section: SectionSongStaff, Row: i + 1, Field: "Role",
				Message:  fmt.Sprintf("unknown role %q", credit.Role),
				Severity: SeverityError,
			})
		}
	}

	if len(m.Audio) == 0 {
		issues = append(issues, Issue{Section: SectionAudio, Message: "no tracks listed", Severity: SeverityWarning})
	}
	for i, track := range m.Audio {
		issues = append(issues, flagIssues(SectionAudio, i+1, track.Default, track.Forced)...)
		if issue, ok := languageIssue(SectionAudio, i+1, "Language", track.Language); ok {
			issues = append(issues, issue)
		}
	}

	if len(m.Subtitles) == 0 {
		issues = append(issues, Issue{Section: SectionSubtitles, Message: "no tracks listed", Severity: SeverityWarning})
	}
	for i, track := range m.Subtitles {
		issues = append(issues, flagIssues(SectionSubtitles, i+1, track.Default, track.Forced)...)
		code := track.LanguageCode
		if strings.TrimSpace(code) == "" {
			code = track.Language
		}
		if issue, ok := languageIssue(SectionSubtitles, i+1, "Code", code); ok {
			issues = append(issues, issue)
		}
	}
	return issues
}

func flagIssues(section string, row int, def, forced Flag) []Issue {
	var issues []Issue
	for _, f := range []struct {
		field string
		value Flag
	}{{"Default", def}, {"Forced", forced}} {
		if !f.value.Valid() {
			issues = append(issues, Issue{
				Section: section, Row: row, Field: f.field,
				Message:  fmt.Sprintf("must be Yes or No, got %q", f.value),
				Severity: SeverityError,
			})
		}
	}
	return issues
}

// languageIssue warns about a non-empty value that is not a known language.
func languageIssue(section string, row int, field, value string) (Issue, bool) {
	value = strings.TrimSpace(value)
	if value == "" || language.Known(value) {
		return Issue{}, false
	}
	return Issue{
		Section: section, Row: row, Field: field,
		Message:  fmt.Sprintf("unrecognised language %q", value),
		Severity: SeverityWarning,
	}, true
}
