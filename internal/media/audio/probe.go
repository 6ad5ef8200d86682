package audio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abema/go-mp4"
	"github.com/go-flac/flacpicture"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// ErrUnsupported is returned for extensions Probe cannot read.
var ErrUnsupported = errors.New("unsupported audio format")

// Info describes one audio file.
type Info struct {
	Path       string
	Codec      string
	Channels   int
	SampleRate int
	BitDepth   int
	Duration   time.Duration
	Language   string
	Title      string
	Cover      *Picture
}

// Picture is an embedded cover image.
type Picture struct {
	MIME string
	Data []byte
}

// Layout renders the channel count as a speaker layout.
func (i Info) Layout() string { return ChannelLayout(i.Channels) }

// Probe reads path, dispatching on its extension.
func Probe(path string) (Info, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		return probeFLAC(path)
	case ".m4a", ".mp4":
		return probeM4A(path)
	default:
		return Info{}, fmt.Errorf("probe %s: %w", filepath.Base(path), ErrUnsupported)
	}
}

func probeFLAC(path string) (Info, error) {
	file, err := flac.ParseFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("parse flac %s: %w", filepath.Base(path), err)
	}
	stream, err := file.GetStreamInfo()
	if err != nil {
		return Info{}, fmt.Errorf("read flac stream info: %w", err)
	}

	info := Info{
		Path:       path,
		Codec:      "FLAC",
		Channels:   stream.ChannelCount,
		SampleRate: stream.SampleRate,
		BitDepth:   stream.BitDepth,
	}
	if stream.SampleRate > 0 {
		info.Duration = time.Duration(stream.SampleCount) * time.Second / time.Duration(stream.SampleRate)
	}

	comments := vorbisComments(file.Meta)
	info.Language = firstValue(comments, "LANGUAGE")
	info.Title = firstValue(comments, "TITLE")
	info.Cover = frontCover(file.Meta)
	return info, nil
}

func vorbisComments(blocks []*flac.MetaDataBlock) map[string][]string {
	for _, block := range blocks {
		if block.Type != flac.VorbisComment {
			continue
		}
		comment, err := flacvorbis.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		values := make(map[string][]string, len(comment.Comments))
		for _, entry := range comment.Comments {
			name, value, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			name = strings.ToUpper(name)
			values[name] = append(values[name], value)
		}
		return values
	}
	return nil
}

func firstValue(comments map[string][]string, name string) string {
	if values := comments[name]; len(values) > 0 {
		return strings.TrimSpace(values[0])
	}
	return ""
}

// frontCover prefers a front cover picture and falls back to the first one.
func frontCover(blocks []*flac.MetaDataBlock) *Picture {
	var picture *flacpicture.MetadataBlockPicture
	for _, block := range blocks {
		if block.Type != flac.Picture {
			continue
		}
		parsed, err := flacpicture.ParseFromMetaDataBlock(*block)
		if err != nil {
			continue
		}
		if picture == nil || parsed.PictureType == flacpicture.PictureTypeFrontCover {
			picture = parsed
			if parsed.PictureType == flacpicture.PictureTypeFrontCover {
				break
			}
		}
	}
	if picture == nil {
		return nil
	}
	return &Picture{MIME: picture.MIME, Data: picture.ImageData}
}

var (
	stsdPath = mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeTrak(), mp4.BoxTypeMdia(), mp4.BoxTypeMinf(), mp4.BoxTypeStbl(), mp4.BoxTypeStsd()}
	alacType = mp4.StrToBoxType("alac")
)

// go-mp4 only knows the mp4a and enca audio sample entries. An ALAC entry
// has the same layout, followed by its decoder config as a child box.
func init() {
	mp4.AddAnyTypeBoxDef(&mp4.AudioSampleEntry{}, alacType)
}

func probeM4A(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, err
	}
	defer file.Close()

	probe, err := mp4.Probe(file)
	if err != nil {
		return Info{}, fmt.Errorf("probe m4a %s: %w", filepath.Base(path), err)
	}
	info := Info{Path: path, Codec: "AAC"}
	for _, track := range probe.Tracks {
		if track.Codec == mp4.CodecMP4A && track.MP4A != nil {
			info.Channels = int(track.MP4A.ChannelCount)
		}
		if track.Timescale > 0 && info.Duration == 0 {
			info.Duration = time.Duration(track.Duration) * time.Second / time.Duration(track.Timescale)
		}
	}
	if info.Duration == 0 && probe.Timescale > 0 {
		info.Duration = time.Duration(probe.Duration) * time.Second / time.Duration(probe.Timescale)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return Info{}, err
	}
	entries, err := mp4.ExtractBoxesWithPayload(file, nil, []mp4.BoxPath{
		append(append(mp4.BoxPath{}, stsdPath...), mp4.BoxTypeMp4a()),
		append(append(mp4.BoxPath{}, stsdPath...), alacType),
	})
	if err != nil {
		return Info{}, fmt.Errorf("read m4a sample entry: %w", err)
	}
	for _, entry := range entries {
		sample, ok := entry.Payload.(*mp4.AudioSampleEntry)
		if !ok {
			continue
		}
		if entry.Info.Type == alacType {
			info.Codec = "ALAC"
		}
		// Sample rate is a 16.16 fixed point value.
		info.SampleRate = int(sample.SampleRate >> 16)
		info.BitDepth = int(sample.SampleSize)
		if info.Channels == 0 {
			info.Channels = int(sample.ChannelCount)
		}
		break
	}
	return info, nil
}

// ChannelLayout maps a channel count to the conventional layout name.
func ChannelLayout(channels int) string {
	switch channels {
	case 0:
		return ""
	case 1:
		return "1.0"
	case 2:
		return "2.0"
	case 3:
		return "2.1"
	case 4:
		return "4.0"
	case 5:
		return "5.0"
	case 6:
		return "5.1"
	case 7:
		return "6.1"
	case 8:
		return "7.1"
	default:
		return strconv.Itoa(channels) + "ch"
	}
}
