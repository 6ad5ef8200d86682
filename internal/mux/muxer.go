package mux

import (
	"context"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"muxsystem/internal/fonts"
	"muxsystem/internal/language"
	"muxsystem/internal/logging"
)

const defaultBinary = "mkvmerge"

// mkvmerge exits 1 when it finished but printed warnings.
const exitWarnings = 1

type commandRunner func(ctx context.Context, name string, args ...string) error

// AudioInput is one external audio file.
type AudioInput struct {
	Path     string
	Language string
	Name     string
	Default  bool
}

// SubtitleInput is the merged subtitle script.
type SubtitleInput struct {
	Path     string
	Language string
	Name     string
	Default  bool
	Forced   bool
}

// Job describes one episode to mux.
type Job struct {
	Episode      string
	EpisodeTitle string
	Video        string
	Audio        []AudioInput
	Subtitle     SubtitleInput
	Fonts        []string
	Chapters     string
	Cover        string
	OutputDir    string
}

// Result reports a finished mux.
type Result struct {
	OutputPath string
	Name       string
	CRC32      string
	Warnings   bool
}

// Muxer runs mkvmerge for jobs.
type Muxer struct {
	logger     *slog.Logger
	run        commandRunner
	binary     string
	naming     Naming
	premuxArgs []string
}

// NewMuxer constructs a muxer. premuxArgs are passed before the video file,
// for example --no-global-tags.
func NewMuxer(logger *slog.Logger, binary string, naming Naming, premuxArgs []string) *Muxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	return &Muxer{
		logger:     logging.NewComponentLogger(logger, "muxer"),
		run:        defaultCommandRunner,
		binary:     binary,
		naming:     naming,
		premuxArgs: append([]string(nil), premuxArgs...),
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (m *Muxer) WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) {
	if m != nil && r != nil {
		m.run = r
	}
}

// Naming returns the naming template the muxer applies.
func (m *Muxer) Naming() Naming { return m.naming }

// Mux builds the episode file. On failure no partial output is left behind.
func (m *Muxer) Mux(ctx context.Context, job Job) (Result, error) {
	if m == nil {
		return Result{}, errors.New("muxer not initialized")
	}
	if err := job.validate(); err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := filepath.Join(job.OutputDir, ".muxsystem-"+job.Episode+".tmp.mkv")
	args := m.buildArgs(job, tmpPath)

	m.logger.Debug("executing mkvmerge",
		logging.String("episode", job.Episode),
		logging.Int("audio_tracks", len(job.Audio)),
		logging.Int("fonts", len(job.Fonts)),
		logging.Bool("chapters", job.Chapters != ""),
		logging.Bool("cover", job.Cover != ""),
	)

	var warnings bool
	if err := m.run(ctx, m.binary, args...); err != nil {
		var coded interface{ ExitCode() int }
		if errors.As(err, &coded) && coded.ExitCode() == exitWarnings {
			warnings = true
			m.logger.Warn("mkvmerge finished with warnings",
				logging.String("episode", job.Episode),
				logging.Error(err),
				logging.String(logging.FieldEventType, "mkvmerge_warnings"),
				logging.String(logging.FieldImpact, "output kept"),
			)
		} else {
			_ = os.Remove(tmpPath)
			return Result{}, fmt.Errorf("mkvmerge failed: %w", err)
		}
	}

	if _, err := os.Stat(tmpPath); err != nil {
		return Result{}, fmt.Errorf("mkvmerge did not produce output file: %w", err)
	}

	sum, err := FileCRC32(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, err
	}

	name := m.naming.FileName(job.Episode, job.EpisodeTitle, sum)
	final := filepath.Join(job.OutputDir, name)
	if err := os.Rename(tmpPath, final); err != nil {
		_ = os.Remove(tmpPath)
		return Result{}, fmt.Errorf("rename muxed output: %w", err)
	}

	m.logger.Info("episode muxed",
		logging.String(logging.FieldEventType, "episode_mux_complete"),
		logging.String("episode", job.Episode),
		logging.String("output", final),
		logging.String("crc32", sum),
	)
	return Result{OutputPath: final, Name: name, CRC32: sum, Warnings: warnings}, nil
}

func (j Job) validate() error {
	if strings.TrimSpace(j.Episode) == "" {
		return errors.New("episode is required")
	}
	if strings.TrimSpace(j.OutputDir) == "" {
		return errors.New("output dir is required")
	}
	if strings.TrimSpace(j.Video) == "" {
		return errors.New("video path is required")
	}
	inputs := []string{j.Video, j.Subtitle.Path, j.Chapters, j.Cover}
	for _, a := range j.Audio {
		inputs = append(inputs, a.Path)
	}
	inputs = append(inputs, j.Fonts...)
	for _, path := range inputs {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input not found %q: %w", path, err)
		}
	}
	return nil
}

// buildArgs lays out the mkvmerge command line. Track options apply to the
// file that follows them, so each block ends with its input path.
func (m *Muxer) buildArgs(job Job, outputPath string) []string {
	args := []string{"-o", outputPath}
	if title := m.naming.Title(job.Episode, job.EpisodeTitle); title != "" {
		args = append(args, "--title", title)
	}

	videoArgs := []string{"--no-audio", "--no-subtitles", "--no-attachments"}
	for _, extra := range m.premuxArgs {
		if !containsArg(videoArgs, extra) {
			videoArgs = append(videoArgs, extra)
		}
	}
	args = append(args, videoArgs...)
	args = append(args, job.Video)

	for _, audio := range job.Audio {
		args = append(args, "--language", "0:"+language.ToISO3(audio.Language))
		if name := strings.TrimSpace(audio.Name); name != "" {
			args = append(args, "--track-name", "0:"+name)
		}
		args = append(args, "--default-track-flag", "0:"+yesNo(audio.Default))
		args = append(args, audio.Path)
	}

	if sub := job.Subtitle; sub.Path != "" {
		args = append(args, "--language", "0:"+language.ToISO3(sub.Language))
		if name := strings.TrimSpace(sub.Name); name != "" {
			args = append(args, "--track-name", "0:"+name)
		}
		args = append(args, "--default-track-flag", "0:"+yesNo(sub.Default))
		args = append(args, "--forced-display-flag", "0:"+yesNo(sub.Forced))
		args = append(args, sub.Path)
	}

	for _, font := range job.Fonts {
		args = append(args, "--attachment-mime-type", fonts.MIMEType(font), "--attach-file", font)
	}
	if job.Cover != "" {
		args = append(args,
			"--attachment-mime-type", coverMIME(job.Cover),
			"--attachment-name", "cover"+strings.ToLower(filepath.Ext(job.Cover)),
			"--attach-file", job.Cover,
		)
	}
	if job.Chapters != "" {
		args = append(args, "--chapters", job.Chapters)
	}
	return args
}

func containsArg(args []string, arg string) bool {
	for _, a := range args {
		if a == arg {
			return true
		}
	}
	return false
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func coverMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// FileCRC32 returns the IEEE CRC32 of path as eight upper-case hex digits.
func FileCRC32(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for crc32: %w", err)
	}
	defer file.Close()
	hasher := crc32.NewIEEE()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash %s: %w", filepath.Base(path), err)
	}
	return fmt.Sprintf("%08X", hasher.Sum32()), nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
