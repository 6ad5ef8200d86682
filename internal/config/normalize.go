package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShow()
	c.normalizeNaming()
	c.normalizeTracks()
	c.normalizeTMDB()
	c.normalizeMkvmerge()
	c.Notify.NtfyTopic = strings.TrimSpace(c.Notify.NtfyTopic)
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("TMDB_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.TMDB.APIKey = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("NTFY_TOPIC"); ok && strings.TrimSpace(value) != "" {
		c.Notify.NtfyTopic = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("MUXSYSTEM_FLAG"); ok && strings.TrimSpace(value) != "" {
		c.Naming.Flag = strings.TrimSpace(value)
	}
	if value, ok := os.LookupEnv("MUXSYSTEM_TMDB_ID"); ok {
		if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			c.Show.TMDBID = id
		}
	}
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.premux_dir", &c.Paths.PremuxDir},
		{"paths.audio_dir", &c.Paths.AudioDir},
		{"paths.subtitle_dir", &c.Paths.SubtitleDir},
		{"paths.fonts_dir", &c.Paths.FontsDir},
		{"paths.output_dir", &c.Paths.OutputDir},
		{"paths.work_dir", &c.Paths.WorkDir},
		{"paths.log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		trimmed := strings.TrimSpace(*field.value)
		if trimmed == "" {
			trimmed = "."
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeShow() {
	c.Show.Name = strings.TrimSpace(c.Show.Name)
}

func (c *Config) normalizeNaming() {
	c.Naming.OutName = strings.TrimSpace(c.Naming.OutName)
	c.Naming.MKVTitle = strings.TrimSpace(c.Naming.MKVTitle)
	c.Naming.Flag = strings.TrimSpace(c.Naming.Flag)
	if c.Naming.Version == 0 {
		c.Naming.Version = 1
	}
}

func (c *Config) normalizeTracks() {
	c.Tracks.AudioLanguage = strings.ToLower(strings.TrimSpace(c.Tracks.AudioLanguage))
	c.Tracks.SubtitleLanguage = strings.ToLower(strings.TrimSpace(c.Tracks.SubtitleLanguage))
	exts := make([]string, 0, len(c.Tracks.AudioExtensions))
	seen := make(map[string]struct{}, len(c.Tracks.AudioExtensions))
	for _, ext := range c.Tracks.AudioExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	c.Tracks.AudioExtensions = exts
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
}

func (c *Config) normalizeMkvmerge() {
	if strings.TrimSpace(c.Mkvmerge.Binary) == "" {
		c.Mkvmerge.Binary = defaultMkvmergeBinary
	}
	if strings.TrimSpace(c.Mkvmerge.FFprobeBinary) == "" {
		c.Mkvmerge.FFprobeBinary = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
