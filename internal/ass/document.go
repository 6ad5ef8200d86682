package ass

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"muxsystem/internal/fileutil"
)

const (
	sectionScriptInfo = "Script Info"
	sectionStyles     = "V4+ Styles"
	sectionEvents     = "Events"
	sectionGarbage    = "Aegisub Project Garbage"
	sectionExtradata  = "Aegisub Extradata"
)

var (
	defaultStyleFormat = []string{
		"Name", "Fontname", "Fontsize", "PrimaryColour", "SecondaryColour", "OutlineColour",
		"BackColour", "Bold", "Italic", "Underline", "StrikeOut", "ScaleX", "ScaleY", "Spacing",
		"Angle", "BorderStyle", "Outline", "Shadow", "Alignment", "MarginL", "MarginR", "MarginV",
		"Encoding",
	}
	defaultEventFormat = []string{
		"Layer", "Start", "End", "Style", "Name", "MarginL", "MarginR", "MarginV", "Effect", "Text",
	}
)

// Document is a parsed Advanced SubStation Alpha script. Sections keep their
// original order and unknown sections survive a parse/write round trip.
type Document struct {
	sections []*section
}

type section struct {
	name   string
	lines  []string // raw body for sections without a Format line
	format []string
	styles []*Style
	events []*Event
}

func (s *section) structured() bool {
	return isStylesName(s.name) || strings.EqualFold(s.name, sectionEvents)
}

func isStylesName(name string) bool {
	return strings.EqualFold(name, sectionStyles) || strings.EqualFold(name, "V4 Styles")
}

// Open parses the script at path.
func Open(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Parse reads a script. A leading UTF-8 byte order mark is ignored.
func Parse(r io.Reader) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	doc := &Document{}
	var current *section
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			current = &section{name: strings.TrimSpace(trimmed[1 : len(trimmed)-1])}
			doc.sections = append(doc.sections, current)
			continue
		}
		if current == nil {
			if trimmed == "" {
				continue
			}
			return nil, fmt.Errorf("content before first section: %q", trimmed)
		}
		if !current.structured() {
			current.lines = append(current.lines, line)
			continue
		}
		if trimmed == "" {
			continue
		}
		key, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			current.lines = append(current.lines, line)
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimLeft(value, " ")
		switch {
		case strings.EqualFold(key, "Format"):
			current.format = splitFormat(value)
		case isStylesName(current.name) && strings.EqualFold(key, "Style"):
			format := current.formatOr(defaultStyleFormat)
			current.styles = append(current.styles, &Style{format: format, fields: splitFields(value, len(format))})
		case strings.EqualFold(current.name, sectionEvents) && isEventKind(key):
			format := current.formatOr(defaultEventFormat)
			current.events = append(current.events, &Event{Kind: canonicalKind(key), format: format, fields: splitFields(value, len(format))})
		default:
			current.lines = append(current.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *section) formatOr(fallback []string) []string {
	if len(s.format) == 0 {
		s.format = append([]string(nil), fallback...)
	}
	return s.format
}

func splitFormat(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// splitFields splits on commas into exactly n fields; the last field keeps any
// remaining commas because dialogue text may contain them.
func splitFields(value string, n int) []string {
	parts := strings.SplitN(value, ",", n)
	for len(parts) < n {
		parts = append(parts, "")
	}
	return parts
}

func isEventKind(key string) bool {
	switch strings.ToLower(key) {
	case "dialogue", "comment", "picture", "sound", "movie", "command":
		return true
	}
	return false
}

func canonicalKind(key string) string {
	lower := strings.ToLower(key)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// WriteTo serializes the document.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for i, sec := range d.sections {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString("[" + sec.name + "]\n")
		lines := sec.lines
		if !sec.structured() {
			// Trailing blank lines are re-added as section separators.
			for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
				lines = lines[:len(lines)-1]
			}
		}
		for _, line := range lines {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
		if len(sec.format) > 0 {
			buf.WriteString("Format: " + strings.Join(sec.format, ", ") + "\n")
		}
		for _, style := range sec.styles {
			buf.WriteString("Style: " + strings.Join(style.fields, ",") + "\n")
		}
		for _, event := range sec.events {
			buf.WriteString(event.Kind + ": " + strings.Join(event.fields, ",") + "\n")
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Save writes the document to path.
func (d *Document) Save(path string) error {
	return fileutil.Write(path, 0o644, func(w io.Writer) error {
		_, err := d.WriteTo(w)
		return err
	})
}

// Info returns a [Script Info] value such as "PlayResX".
func (d *Document) Info(key string) string {
	sec := d.section(sectionScriptInfo)
	if sec == nil {
		return ""
	}
	for _, line := range sec.lines {
		k, v, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(k), key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Styles returns the script styles in file order.
func (d *Document) Styles() []*Style {
	if sec := d.stylesSection(); sec != nil {
		return sec.styles
	}
	return nil
}

// Events returns the script events in file order.
func (d *Document) Events() []*Event {
	if sec := d.section(sectionEvents); sec != nil {
		return sec.events
	}
	return nil
}

// SectionNames lists sections in file order.
func (d *Document) SectionNames() []string {
	names := make([]string, 0, len(d.sections))
	for _, sec := range d.sections {
		names = append(names, sec.name)
	}
	return names
}

func (d *Document) section(name string) *section {
	for _, sec := range d.sections {
		if strings.EqualFold(sec.name, name) {
			return sec
		}
	}
	return nil
}

func (d *Document) stylesSection() *section {
	for _, sec := range d.sections {
		if isStylesName(sec.name) {
			return sec
		}
	}
	return nil
}

func (d *Document) ensureSection(name string, format []string) *section {
	var sec *section
	if name == sectionStyles {
		sec = d.stylesSection()
	} else {
		sec = d.section(name)
	}
	if sec != nil {
		if len(sec.format) == 0 {
			sec.format = append([]string(nil), format...)
		}
		return sec
	}
	sec = &section{name: name, format: append([]string(nil), format...)}
	if name == sectionStyles {
		if i := slices.IndexFunc(d.sections, func(s *section) bool {
			return strings.EqualFold(s.name, sectionEvents)
		}); i >= 0 {
			d.sections = slices.Insert(d.sections, i, sec)
			return sec
		}
	}
	d.sections = append(d.sections, sec)
	return sec
}

// CleanGarbage drops Aegisub project state that should not ship in a release.
func (d *Document) CleanGarbage() {
	kept := d.sections[:0]
	for _, sec := range d.sections {
		if strings.EqualFold(sec.name, sectionGarbage) || strings.EqualFold(sec.name, sectionExtradata) {
			continue
		}
		kept = append(kept, sec)
	}
	d.sections = kept
}
