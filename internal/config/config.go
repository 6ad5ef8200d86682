package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Show identifies the series being released.
type Show struct {
	Name    string `toml:"name"`
	Season  int    `toml:"season"`
	TMDBID  int    `toml:"tmdb_id"`
	TVDBID  int    `toml:"tvdb_id"`
	AniDBID int    `toml:"anidb_id"`
}

// Paths contains the input, output, and bookkeeping directories.
type Paths struct {
	PremuxDir   string `toml:"premux_dir"`
	AudioDir    string `toml:"audio_dir"`
	SubtitleDir string `toml:"subtitle_dir"`
	FontsDir    string `toml:"fonts_dir"`
	OutputDir   string `toml:"output_dir"`
	WorkDir     string `toml:"work_dir"`
	LogDir      string `toml:"log_dir"`
}

// Naming controls output file names and the Matroska segment title.
//
// Templates accept $show$, $ep$, $ver$, $flag$, $title$ and (out_name only) $crc32$.
type Naming struct {
	OutName  string `toml:"out_name"`
	MKVTitle string `toml:"mkv_title"`
	Flag     string `toml:"flag"`
	Version  int    `toml:"version"`
}

// Tracks describes how audio and subtitle inputs are labelled in the output.
type Tracks struct {
	AudioLanguage    string   `toml:"audio_language"`
	AudioName        string   `toml:"audio_name"`
	AudioExtensions  []string `toml:"audio_extensions"`
	SubtitleLanguage string   `toml:"subtitle_language"`
	SubtitleName     string   `toml:"subtitle_name"`
}

// Merge lists the extra subtitle scripts folded into the main dialogue script.
// Patterns are globs relative to paths.subtitle_dir and accept $show$ and $ep$.
type Merge struct {
	Typesetting       string   `toml:"typesetting"`
	Opening           string   `toml:"opening"`
	Ending            string   `toml:"ending"`
	OpeningSync       string   `toml:"opening_sync"`
	EndingSync        string   `toml:"ending_sync"`
	SourceSync        string   `toml:"source_sync"`
	Common            []string `toml:"common"`
	ChaptersFromActor bool     `toml:"chapters_from_actor"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ImageBaseURL   string `toml:"image_base_url"`
	Language       string `toml:"language"`
	WriteCover     bool   `toml:"write_cover"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Mkvmerge configures the external MKVToolNix and FFmpeg binaries.
type Mkvmerge struct {
	Binary        string   `toml:"binary"`
	FFprobeBinary string   `toml:"ffprobe_binary"`
	PremuxArgs    []string `toml:"premux_args"`
}

// Torrent contains defaults for generated .torrent files.
type Torrent struct {
	Trackers       []string `toml:"trackers"`
	PieceLengthKiB int      `toml:"piece_length_kib"`
	Private        bool     `toml:"private"`
	Comment        string   `toml:"comment"`
}

// Notify configures ntfy push notifications sent when a mux run ends.
type Notify struct {
	NtfyTopic             string `toml:"ntfy_topic"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// Preflight contains thresholds checked before a real mux run.
type Preflight struct {
	MinFreeGiB int `toml:"min_free_gib"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Config encapsulates all configuration values for muxsystem.
type Config struct {
	Show      Show      `toml:"show"`
	Paths     Paths     `toml:"paths"`
	Naming    Naming    `toml:"naming"`
	Tracks    Tracks    `toml:"tracks"`
	Merge     Merge     `toml:"merge"`
	TMDB      TMDB      `toml:"tmdb"`
	Mkvmerge  Mkvmerge  `toml:"mkvmerge"`
	Torrent   Torrent   `toml:"torrent"`
	Notify    Notify    `toml:"notify"`
	Preflight Preflight `toml:"preflight"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	// The project file wins so a checked-out release repository is self-contained.
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a mux run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the mux history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.LogDir, "history.db")
}

// LogFilePath returns the location of the persistent log file.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "muxsystem.log")
}

// SubtitleName returns the subtitle track name, falling back to the release flag.
func (c *Config) SubtitleName(flag string) string {
	if name := strings.TrimSpace(c.Tracks.SubtitleName); name != "" {
		return name
	}
	return flag
}

// TMDBEnabled reports whether TMDB lookups should run.
func (c *Config) TMDBEnabled() bool {
	return c.Show.TMDBID > 0 && strings.TrimSpace(c.TMDB.APIKey) != ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
