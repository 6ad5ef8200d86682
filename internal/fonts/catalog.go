// Package fonts indexes font files by the names subtitle scripts refer to.
package fonts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/image/font/sfnt"

	"muxsystem/internal/ass"
)

var fontExtensions = map[string]string{
	".ttf": "application/x-truetype-font",
	".otf": "application/vnd.ms-opentype",
	".ttc": "application/x-truetype-font",
	".otc": "application/vnd.ms-opentype",
}

var nameIDs = []sfnt.NameID{
	sfnt.NameIDFamily,
	sfnt.NameIDFull,
	sfnt.NameIDTypographicFamily,
	sfnt.NameIDPostScript,
}

// Face is one font inside a file.
type Face struct {
	Path   string
	Family string
	Full   string
}

// Catalog maps lower-cased font names to the files that provide them.
type Catalog struct {
	byName map[string][]Face
	files  int
}

// Match pairs a requested name with the file that satisfies it.
type Match struct {
	Name string
	Path string
}

// Index walks dirs for font files. Missing directories are ignored so an
// unconfigured fonts dir does not fail the run; unreadable fonts are skipped.
func Index(dirs ...string) (*Catalog, error) {
	catalog := &Catalog{byName: make(map[string][]Face)}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == dir {
					return fs.SkipDir
				}
				return err
			}
			if d.IsDir() || !IsFontFile(path) {
				return nil
			}
			faces, err := readFaces(path)
			if err != nil {
				return nil
			}
			catalog.files++
			for _, face := range faces {
				catalog.add(face)
			}
			return nil
		})
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("index fonts in %s: %w", dir, err)
		}
	}
	return catalog, nil
}

// IsFontFile reports whether path has a supported font extension.
func IsFontFile(path string) bool {
	_, ok := fontExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// MIMEType returns the attachment MIME type mkvmerge expects for path.
func MIMEType(path string) string {
	if mime, ok := fontExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Files returns the number of font files indexed.
func (c *Catalog) Files() int { return c.files }

// Lookup returns the faces registered under name.
func (c *Catalog) Lookup(name string) []Face {
	return c.byName[normalize(name)]
}

// Resolve finds a file for every requested font. Found files are unique;
// missing names are reported once each in request order.
func (c *Catalog) Resolve(uses []ass.FontUse) ([]Match, []string) {
	var (
		found   []Match
		missing []string
		seen    = map[string]struct{}{}
	)
	for _, use := range uses {
		faces := c.Lookup(use.Name)
		if len(faces) == 0 {
			if !slices.Contains(missing, use.Name) {
				missing = append(missing, use.Name)
			}
			continue
		}
		for _, face := range pickFaces(faces, use) {
			if _, ok := seen[face.Path]; ok {
				continue
			}
			seen[face.Path] = struct{}{}
			found = append(found, Match{Name: use.Name, Path: face.Path})
		}
	}
	return found, missing
}

// pickFaces prefers the face whose full name carries the requested weight and
// slant, falling back to every face of the family so renderers can synthesize.
func pickFaces(faces []Face, use ass.FontUse) []Face {
	if len(faces) == 1 {
		return faces
	}
	for _, face := range faces {
		full := strings.ToLower(face.Full)
		bold := strings.Contains(full, "bold")
		italic := strings.Contains(full, "italic") || strings.Contains(full, "oblique")
		if bold == use.Bold && italic == use.Italic {
			return []Face{face}
		}
	}
	return faces
}

func (c *Catalog) add(face Face) {
	names := []string{face.Family, face.Full}
	for _, name := range names {
		key := normalize(name)
		if key == "" {
			continue
		}
		if slices.ContainsFunc(c.byName[key], func(f Face) bool { return f.Path == face.Path && f.Full == face.Full }) {
			continue
		}
		c.byName[key] = append(c.byName[key], face)
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "@")))
}

func readFaces(path string) ([]Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	collection, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, err
	}
	var (
		faces []Face
		buf   sfnt.Buffer
	)
	for i := 0; i < collection.NumFonts(); i++ {
		font, err := collection.Font(i)
		if err != nil {
			continue
		}
		names := make(map[sfnt.NameID]string, len(nameIDs))
		for _, id := range nameIDs {
			if v, err := font.Name(&buf, id); err == nil {
				names[id] = v
			}
		}
		family := names[sfnt.NameIDTypographicFamily]
		if family == "" {
			family = names[sfnt.NameIDFamily]
		}
		faces = append(faces, Face{Path: path, Family: family, Full: names[sfnt.NameIDFull]})
		// Legacy family names (ID 1) differ from typographic ones for weights
		// such as "Roboto Medium"; register both.
		if legacy := names[sfnt.NameIDFamily]; legacy != "" && legacy != family {
			faces = append(faces, Face{Path: path, Family: legacy, Full: names[sfnt.NameIDFull]})
		}
		if ps := names[sfnt.NameIDPostScript]; ps != "" {
			faces = append(faces, Face{Path: path, Family: ps, Full: names[sfnt.NameIDFull]})
		}
	}
	return faces, nil
}
