package release

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// ErrMissingSection is wrapped when a required section is absent.
var ErrMissingSection = errors.New("missing section")

// Table is a parsed markdown table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Section is one headed part of the template.
type Section struct {
	Title string
	Table *Table
}

// Document is a template as written, before typed conversion.
type Document struct {
	Sections []Section
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// ParseDocument converts markdown to HTML and collects each heading with the
// first table that follows it before the next heading.
func ParseDocument(r io.Reader) (*Document, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	var html bytes.Buffer
	if err := markdown.Convert(source, &html); err != nil {
		return nil, fmt.Errorf("render template markdown: %w", err)
	}
	page, err := goquery.NewDocumentFromReader(&html)
	if err != nil {
		return nil, fmt.Errorf("parse template html: %w", err)
	}

	const headings = "h1, h2, h3, h4"
	doc := &Document{}
	page.Find(headings).Each(func(_ int, heading *goquery.Selection) {
		sec := Section{Title: strings.TrimSpace(heading.Text())}
		if tbl := heading.NextUntil(headings).Filter("table").First(); tbl.Length() > 0 {
			sec.Table = readTable(tbl)
		}
		doc.Sections = append(doc.Sections, sec)
	})
	return doc, nil
}

func readTable(sel *goquery.Selection) *Table {
	tbl := &Table{}
	sel.Find("thead tr").First().Find("th").Each(func(_ int, cell *goquery.Selection) {
		tbl.Headers = append(tbl.Headers, strings.TrimSpace(cell.Text()))
	})
	sel.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		tbl.Rows = append(tbl.Rows, cells)
	})
	return tbl
}

// Section finds a section by title, ignoring case.
func (d *Document) Section(title string) (Section, bool) {
	for _, sec := range d.Sections {
		if strings.EqualFold(sec.Title, title) {
			return sec, true
		}
	}
	return Section{}, false
}

// column returns the index of the named header, or -1.
func (t *Table) column(names ...string) int {
	for i, h := range t.Headers {
		for _, name := range names {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

// cell returns row[col] or "" when the row is short or col is -1.
func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// keyValues reads a two column Field/Value table into a lower-cased map.
func (t *Table) keyValues() map[string]string {
	values := make(map[string]string, len(t.Rows))
	for _, row := range t.Rows {
		key := strings.ToLower(strings.Join(strings.Fields(cell(row, 0)), " "))
		if key != "" {
			values[key] = cell(row, 1)
		}
	}
	return values
}

// Parse reads a filled template into typed records.
func Parse(r io.Reader) (Metadata, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return Metadata{}, err
	}
	return doc.Metadata()
}

// Metadata converts the document. Missing required sections fail with
// ErrMissingSection; malformed cells are kept verbatim for Validate.
func (d *Document) Metadata() (Metadata, error) {
	var missing []string
	for _, name := range RequiredSections {
		if sec, ok := d.Section(name); !ok || sec.Table == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Metadata{}, fmt.Errorf("%w: %s", ErrMissingSection, strings.Join(missing, ", "))
	}

	var m Metadata
	info, _ := d.Section(SectionInfo)
	kv := info.Table.keyValues()
	m.Info = ReleaseInfo{
		Title:   kv["title"],
		TVDBID:  kv["tvdb id"],
		AniDBID: kv["anidb id"],
		Season:  kv["season"],
	}

	staff, _ := d.Section(SectionStaff)
	for _, row := range staff.Table.Rows {
		role, _ := ParseStaffRole(cell(row, 0))
		m.Staff = append(m.Staff, StaffCredit{Role: role, Name: cell(row, 1)})
	}

	if song, ok := d.Section(SectionSongStaff); ok && song.Table != nil {
		for _, row := range song.Table.Rows {
			role, _ := ParseSongStaffRole(cell(row, 0))
			m.SongStaff = append(m.SongStaff, SongStaffCredit{Role: role, Name: cell(row, 1)})
		}
	}

	video, _ := d.Section(SectionVideo)
	kv = video.Table.keyValues()
	m.Video = VideoSpec{
		Source:      kv["source"],
		Resolution:  kv["resolution"],
		Codec:       kv["codec"],
		AspectRatio: kv["aspect ratio"],
		Notes:       firstNonEmpty(kv["notes"], kv["extra notes"]),
	}

	audio, _ := d.Section(SectionAudio)
	at := audio.Table
	cols := audioColumns(at)
	for _, row := range at.Rows {
		m.Audio = append(m.Audio, AudioTrack{
			Language: cell(row, cols.language),
			Codec:    cell(row, cols.codec),
			Channels: cell(row, cols.channels),
			Bitrate:  cell(row, cols.bitrate),
			Source:   cell(row, cols.source),
			Default:  Flag(cell(row, cols.defaultFlag)),
			Forced:   Flag(cell(row, cols.forced)),
		})
	}

	subs, _ := d.Section(SectionSubtitles)
	st := subs.Table
	scols := subtitleColumns(st)
	for _, row := range st.Rows {
		m.Subtitles = append(m.Subtitles, SubtitleTrack{
			Label:        cell(row, scols.label),
			Language:     cell(row, scols.language),
			LanguageCode: cell(row, scols.code),
			Format:       cell(row, scols.format),
			Default:      Flag(cell(row, scols.defaultFlag)),
			Forced:       Flag(cell(row, scols.forced)),
		})
	}
	return m, nil
}

type audioCols struct {
	language, codec, channels, bitrate, source, defaultFlag, forced int
}

func audioColumns(t *Table) audioCols {
	return audioCols{
		language:    t.column("Language"),
		codec:       t.column("Codec"),
		channels:    t.column("Channels"),
		bitrate:     t.column("Bitrate", "Bit Rate"),
		source:      t.column("Source"),
		defaultFlag: t.column("Default"),
		forced:      t.column("Forced"),
	}
}

type subtitleCols struct {
	label, language, code, format, defaultFlag, forced int
}

func subtitleColumns(t *Table) subtitleCols {
	return subtitleCols{
		label:       t.column("Track", "Label", "Name"),
		language:    t.column("Language"),
		code:        t.column("Code", "Language Code"),
		format:      t.column("Format"),
		defaultFlag: t.column("Default"),
		forced:      t.column("Forced"),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
