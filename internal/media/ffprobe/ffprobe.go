package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the decoded ffprobe payload.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream is one stream in the container.
type Stream struct {
	Index              int               `json:"index"`
	CodecName          string            `json:"codec_name"`
	CodecLongName      string            `json:"codec_long_name"`
	CodecType          string            `json:"codec_type"`
	Profile            string            `json:"profile"`
	Width              int               `json:"width"`
	Height             int               `json:"height"`
	DisplayAspectRatio string            `json:"display_aspect_ratio"`
	PixFmt             string            `json:"pix_fmt"`
	SampleRate         string            `json:"sample_rate"`
	Channels           int               `json:"channels"`
	ChannelLayout      string            `json:"channel_layout"`
	BitRate            string            `json:"bit_rate"`
	Duration           string            `json:"duration"`
	Tags               map[string]string `json:"tags"`
	Disposition        Disposition       `json:"disposition"`
}

// Disposition holds the flags mkvmerge writes as default/forced.
type Disposition struct {
	Default  int `json:"default"`
	Forced   int `json:"forced"`
	Comment  int `json:"comment"`
	Attached int `json:"attached_pic"`
}

// Format is container-level metadata.
type Format struct {
	Filename   string            `json:"filename"`
	NBStreams  int               `json:"nb_streams"`
	FormatName string            `json:"format_name"`
	Duration   string            `json:"duration"`
	Size       string            `json:"size"`
	BitRate    string            `json:"bit_rate"`
	Tags       map[string]string `json:"tags"`
}

// Inspect executes ffprobe against path.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Decode(output)
}

// Decode parses raw ffprobe JSON.
func Decode(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// PrimaryVideo returns the first video stream that is not an attached
// picture. The bool is false when there is none.
func (r Result) PrimaryVideo() (Stream, bool) {
	for _, s := range r.Streams {
		if s.IsVideo() && s.Disposition.Attached == 0 {
			return s, true
		}
	}
	return Stream{}, false
}

// AudioStreams returns audio streams in file order.
func (r Result) AudioStreams() []Stream { return r.byType("audio") }

// SubtitleStreams returns subtitle streams in file order.
func (r Result) SubtitleStreams() []Stream { return r.byType("subtitle") }

func (r Result) byType(kind string) []Stream {
	var out []Stream
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, kind) {
			out = append(out, s)
		}
	}
	return out
}

// DurationSeconds returns the container duration, 0 when absent and NaN when
// unparsable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the container size, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

// IsVideo reports whether the stream is a video stream.
func (s Stream) IsVideo() bool { return strings.EqualFold(s.CodecType, "video") }

// Tag returns a stream tag, matching the key case-insensitively.
func (s Stream) Tag(key string) string {
	for k, v := range s.Tags {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Language returns the stream language tag, "und" when unset.
func (s Stream) Language() string {
	if lang := s.Tag("language"); lang != "" {
		return lang
	}
	return "und"
}

// Title returns the stream title tag.
func (s Stream) Title() string { return s.Tag("title") }

// IsDefault reports the default disposition.
func (s Stream) IsDefault() bool { return s.Disposition.Default != 0 }

// IsForced reports the forced disposition.
func (s Stream) IsForced() bool { return s.Disposition.Forced != 0 }

// BitRateKbps returns the stream bitrate in kbit/s. Matroska stores it in the
// BPS statistics tag rather than bit_rate.
func (s Stream) BitRateKbps() int64 {
	for _, raw := range []string{s.BitRate, s.Tag("BPS"), s.Tag("BPS-eng")} {
		rate := parseFloat(raw)
		if rate > 0 && !math.IsNaN(rate) {
			return int64(math.Round(rate / 1000))
		}
	}
	return 0
}

// AspectRatio returns display_aspect_ratio, deriving it from the frame size
// when ffprobe leaves it out.
func (s Stream) AspectRatio() string {
	if ar := strings.TrimSpace(s.DisplayAspectRatio); ar != "" && ar != "0:1" && ar != "N/A" {
		return ar
	}
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	g := gcd(s.Width, s.Height)
	return strconv.Itoa(s.Width/g) + ":" + strconv.Itoa(s.Height/g)
}

// Resolution renders WIDTHxHEIGHT.
func (s Stream) Resolution() string {
	if s.Width <= 0 || s.Height <= 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
