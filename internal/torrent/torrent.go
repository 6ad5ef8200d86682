// Package torrent builds BitTorrent v1 metainfo files for muxed releases.
package torrent

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/IncSW/go-bencode"

	"muxsystem/internal/fileutil"
)

const (
	// DefaultPieceLength is used for releases up to a couple of GiB.
	DefaultPieceLength int64 = 1 << 20
	// MaxPieceLength caps the automatic choice.
	MaxPieceLength int64 = 16 << 20
	targetPieces   int64 = 1500
	createdBy            = "muxsystem"
)

// ErrNoFiles is returned when Build is given nothing to hash.
var ErrNoFiles = errors.New("no files to include")

// Options control the metainfo outside the hashed content.
type Options struct {
	// Name overrides the torrent name. Multi-file torrents default to the
	// shared parent directory name.
	Name         string
	Trackers     []string
	PieceLength  int64 // zero picks one from the total size
	Private      bool
	Comment      string
	CreationDate time.Time
}

// File is one entry of a multi-file torrent.
type File struct {
	Path   []string
	Length int64
}

// Torrent is built metainfo ready to encode.
type Torrent struct {
	Name         string
	PieceLength  int64
	Pieces       []byte
	Length       int64  // single-file mode
	Files        []File // multi-file mode
	Announce     string
	AnnounceList [][]string
	Comment      string
	CreatedBy    string
	CreationDate time.Time
	Private      bool
}

type source struct {
	path   string
	rel    []string
	length int64
}

// Build hashes paths into a torrent. Directories are walked recursively; a
// single regular file produces a single-file torrent.
func Build(paths []string, opts Options) (*Torrent, error) {
	sources, root, err := collect(paths)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, src := range sources {
		total += src.length
	}
	pieceLength := opts.PieceLength
	if pieceLength <= 0 {
		pieceLength = PieceLengthFor(total)
	}

	t := &Torrent{
		PieceLength:  pieceLength,
		Comment:      opts.Comment,
		CreatedBy:    createdBy,
		CreationDate: opts.CreationDate,
		Private:      opts.Private,
	}
	if t.CreationDate.IsZero() {
		t.CreationDate = time.Now()
	}
	if len(opts.Trackers) > 0 {
		t.Announce = opts.Trackers[0]
		for _, tracker := range opts.Trackers {
			t.AnnounceList = append(t.AnnounceList, []string{tracker})
		}
	}

	singleFile := len(sources) == 1 && len(paths) == 1 && root == ""
	switch {
	case opts.Name != "":
		t.Name = opts.Name
	case singleFile:
		t.Name = filepath.Base(sources[0].path)
	default:
		t.Name = filepath.Base(root)
	}
	if singleFile {
		t.Length = sources[0].length
	} else {
		for _, src := range sources {
			t.Files = append(t.Files, File{Path: src.rel, Length: src.length})
		}
	}

	t.Pieces, err = hashPieces(sources, pieceLength)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// PieceLengthFor doubles from 1 MiB until the piece count is reasonable.
func PieceLengthFor(total int64) int64 {
	length := DefaultPieceLength
	for length < MaxPieceLength && total/length > targetPieces {
		length *= 2
	}
	return length
}

// collect expands paths into files. root is the directory multi-file paths are
// relative to, empty for a lone file.
func collect(paths []string) ([]source, string, error) {
	if len(paths) == 0 {
		return nil, "", ErrNoFiles
	}
	var files []string
	var dirs []string
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, "", fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, "", fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, abs)
			continue
		}
		dirs = append(dirs, abs)
		err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, "", fmt.Errorf("walk %s: %w", p, err)
		}
	}
	if len(files) == 0 {
		return nil, "", ErrNoFiles
	}
	slices.Sort(files)
	files = slices.Compact(files)

	root := ""
	switch {
	case len(dirs) == 1 && len(paths) == 1:
		root = dirs[0]
	case len(files) > 1 || len(dirs) > 0:
		root = commonDir(files)
	}

	sources := make([]source, 0, len(files))
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			return nil, "", fmt.Errorf("stat %s: %w", path, err)
		}
		src := source{path: path, length: info.Size()}
		if root != "" {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return nil, "", fmt.Errorf("relative path %s: %w", path, err)
			}
			src.rel = strings.Split(filepath.ToSlash(rel), "/")
		}
		sources = append(sources, src)
	}
	return sources, root, nil
}

func commonDir(files []string) string {
	dir := filepath.Dir(files[0])
	for _, f := range files[1:] {
		for !strings.HasPrefix(f, dir+string(filepath.Separator)) && dir != filepath.Dir(dir) {
			dir = filepath.Dir(dir)
		}
	}
	return dir
}

// hashPieces streams the files back to back, hashing every pieceLength bytes.
func hashPieces(sources []source, pieceLength int64) ([]byte, error) {
	var pieces []byte
	buf := make([]byte, 0, pieceLength)
	flush := func() {
		sum := sha1.Sum(buf)
		pieces = append(pieces, sum[:]...)
		buf = buf[:0]
	}
	for _, src := range sources {
		f, err := os.Open(src.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", src.path, err)
		}
		for {
			n, err := io.ReadFull(f, buf[len(buf):cap(buf)])
			buf = buf[:len(buf)+n]
			if len(buf) == cap(buf) {
				flush()
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("read %s: %w", src.path, err)
			}
		}
		f.Close()
	}
	if len(buf) > 0 {
		flush()
	}
	return pieces, nil
}

func (t *Torrent) info() map[string]interface{} {
	info := map[string]interface{}{
		"name":         t.Name,
		"piece length": t.PieceLength,
		"pieces":       string(t.Pieces),
	}
	if t.Private {
		info["private"] = int64(1)
	}
	if len(t.Files) == 0 {
		info["length"] = t.Length
		return info
	}
	files := make([]interface{}, 0, len(t.Files))
	for _, f := range t.Files {
		path := make([]interface{}, 0, len(f.Path))
		for _, part := range f.Path {
			path = append(path, part)
		}
		files = append(files, map[string]interface{}{"length": f.Length, "path": path})
	}
	info["files"] = files
	return info
}

// InfoHash returns the hex SHA-1 of the bencoded info dictionary.
func (t *Torrent) InfoHash() (string, error) {
	encoded, err := bencode.Marshal(t.info())
	if err != nil {
		return "", fmt.Errorf("encode info: %w", err)
	}
	sum := sha1.Sum(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// Encode returns the bencoded metainfo.
func (t *Torrent) Encode() ([]byte, error) {
	meta := map[string]interface{}{
		"info":          t.info(),
		"created by":    t.CreatedBy,
		"creation date": t.CreationDate.Unix(),
	}
	if t.Announce != "" {
		meta["announce"] = t.Announce
	}
	if len(t.AnnounceList) > 0 {
		tiers := make([]interface{}, 0, len(t.AnnounceList))
		for _, tier := range t.AnnounceList {
			urls := make([]interface{}, 0, len(tier))
			for _, u := range tier {
				urls = append(urls, u)
			}
			tiers = append(tiers, urls)
		}
		meta["announce-list"] = tiers
	}
	if t.Comment != "" {
		meta["comment"] = t.Comment
	}
	data, err := bencode.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("encode torrent: %w", err)
	}
	return data, nil
}

// WriteFile encodes the torrent to path via a temp file and rename.
func (t *Torrent) WriteFile(path string) error {
	data, err := t.Encode()
	if err != nil {
		return err
	}
	if err := fileutil.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write torrent: %w", err)
	}
	return nil
}
