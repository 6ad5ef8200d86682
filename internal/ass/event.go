package ass

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Style is one "Style:" row of the styles section.
type Style struct {
	format []string
	fields []string
}

func (s *Style) get(name string) string {
	return fieldValue(s.format, s.fields, name)
}

// Name returns the style name.
func (s *Style) Name() string { return strings.TrimSpace(s.get("Name")) }

// Fontname returns the style font family.
func (s *Style) Fontname() string { return strings.TrimSpace(s.get("Fontname")) }

// Bold reports whether the style is bold ("-1" or "1" in the script).
func (s *Style) Bold() bool { return assBool(s.get("Bold")) }

// Italic reports whether the style is italic.
func (s *Style) Italic() bool { return assBool(s.get("Italic")) }

func (s *Style) remap(format []string) *Style {
	return &Style{format: format, fields: remapFields(s.format, s.fields, format)}
}

// Event is one row of the [Events] section.
type Event struct {
	Kind   string // Dialogue, Comment, ...
	format []string
	fields []string
}

// NewEvent builds an event using the default v4+ field layout.
func NewEvent(kind string, start, end time.Duration, style, name, effect, text string) *Event {
	e := &Event{Kind: kind, format: defaultEventFormat, fields: make([]string, len(defaultEventFormat))}
	e.set("Layer", "0")
	e.SetStart(start)
	e.SetEnd(end)
	e.set("Style", style)
	e.set("Name", name)
	e.set("MarginL", "0")
	e.set("MarginR", "0")
	e.set("MarginV", "0")
	e.set("Effect", effect)
	e.set("Text", text)
	return e
}

func (e *Event) get(name string) string {
	return fieldValue(e.format, e.fields, name)
}

func (e *Event) set(name, value string) {
	for i, f := range e.format {
		if strings.EqualFold(f, name) && i < len(e.fields) {
			e.fields[i] = value
			return
		}
	}
}

// IsComment reports whether the event is a Comment line.
func (e *Event) IsComment() bool { return e.Kind == "Comment" }

// IsDialogue reports whether the event is a Dialogue line.
func (e *Event) IsDialogue() bool { return e.Kind == "Dialogue" }

// Start returns the event start time; malformed values read as zero.
func (e *Event) Start() time.Duration {
	d, _ := ParseTime(e.get("Start"))
	return d
}

// End returns the event end time; malformed values read as zero.
func (e *Event) End() time.Duration {
	d, _ := ParseTime(e.get("End"))
	return d
}

// SetStart updates the start time.
func (e *Event) SetStart(d time.Duration) { e.set("Start", FormatTime(d)) }

// SetEnd updates the end time.
func (e *Event) SetEnd(d time.Duration) { e.set("End", FormatTime(d)) }

// Style returns the style name the event uses.
func (e *Event) Style() string { return strings.TrimSpace(e.get("Style")) }

// Name returns the actor field ("Actor" in older v4 scripts).
func (e *Event) Name() string {
	if v := e.get("Name"); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(e.get("Actor"))
}

// Effect returns the effect field.
func (e *Event) Effect() string { return strings.TrimSpace(e.get("Effect")) }

// Text returns the raw text including override blocks.
func (e *Event) Text() string { return e.get("Text") }

// Shift moves the event by offset, clamping at zero.
func (e *Event) Shift(offset time.Duration) {
	start := e.Start() + offset
	end := e.End() + offset
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	e.SetStart(start)
	e.SetEnd(end)
}

func (e *Event) remap(format []string) *Event {
	return &Event{Kind: e.Kind, format: format, fields: remapFields(e.format, e.fields, format)}
}

func (e *Event) marked(marker string) bool {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		return false
	}
	return strings.EqualFold(e.Effect(), marker) || strings.EqualFold(e.Name(), marker)
}

func fieldValue(format, fields []string, name string) string {
	for i, f := range format {
		if strings.EqualFold(f, name) && i < len(fields) {
			return fields[i]
		}
	}
	return ""
}

func remapFields(from, values, to []string) []string {
	if strings.EqualFold(strings.Join(from, ","), strings.Join(to, ",")) {
		return append([]string(nil), values...)
	}
	out := make([]string, len(to))
	for i, name := range to {
		v := fieldValue(from, values, name)
		if v == "" && strings.EqualFold(name, "Name") {
			v = fieldValue(from, values, "Actor")
		}
		out[i] = v
	}
	return out
}

func assBool(value string) bool {
	value = strings.TrimSpace(value)
	return value == "-1" || value == "1"
}

// ParseTime parses an ASS timestamp such as 0:01:02.34.
func ParseTime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	total := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	total += time.Duration(secs*100+0.5) * 10 * time.Millisecond
	return total, nil
}

// FormatTime renders d with centisecond precision, the resolution ASS stores.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	cs := (d + 5*time.Millisecond) / (10 * time.Millisecond)
	hours := cs / 360000
	cs -= hours * 360000
	minutes := cs / 6000
	cs -= minutes * 6000
	seconds := cs / 100
	cs -= seconds * 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, cs)
}
