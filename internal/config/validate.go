package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShow(); err != nil {
		return err
	}
	if err := c.validateNaming(); err != nil {
		return err
	}
	if err := c.validateTracks(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateTorrent(); err != nil {
		return err
	}
	if err := c.validateNotify(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateShow() error {
	if c.Show.Name == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("show.name is required. Edit %s or ./%s (create with 'muxsystem config init')", defaultPath, projectConfigName)
	}
	if strings.ContainsAny(c.Show.Name, `/\`) {
		return errors.New("show.name must not contain path separators")
	}
	if c.Show.Season < 0 {
		return errors.New("show.season must be >= 0")
	}
	if c.Show.TMDBID < 0 || c.Show.TVDBID < 0 || c.Show.AniDBID < 0 {
		return errors.New("show ids must be >= 0")
	}
	return nil
}

func (c *Config) validateNaming() error {
	if c.Naming.OutName == "" {
		return errors.New("naming.out_name must be set")
	}
	if !strings.Contains(c.Naming.OutName, "$ep$") {
		return errors.New("naming.out_name must contain $ep$ so episodes do not overwrite each other")
	}
	if c.Naming.Flag == "" {
		return errors.New("naming.flag must be set")
	}
	if c.Naming.Version < 1 {
		return errors.New("naming.version must be >= 1")
	}
	return nil
}

func (c *Config) validateTracks() error {
	if len(c.Tracks.AudioExtensions) == 0 {
		return errors.New("tracks.audio_extensions must include at least one extension")
	}
	for _, ext := range c.Tracks.AudioExtensions {
		switch ext {
		case ".flac", ".m4a", ".mka", ".opus", ".aac", ".ac3", ".wav":
		default:
			return fmt.Errorf("tracks.audio_extensions: unsupported extension %q", ext)
		}
	}
	if c.Tracks.AudioLanguage == "" {
		return errors.New("tracks.audio_language must be set")
	}
	if c.Tracks.SubtitleLanguage == "" {
		return errors.New("tracks.subtitle_language must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	if c.Show.TMDBID == 0 {
		return nil
	}
	if c.TMDB.BaseURL == "" {
		return errors.New("tmdb.base_url must be set when show.tmdb_id is set")
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		return errors.New("tmdb.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateTorrent() error {
	if c.Torrent.PieceLengthKiB < 0 {
		return errors.New("torrent.piece_length_kib must be >= 0")
	}
	if kib := c.Torrent.PieceLengthKiB; kib > 0 && kib&(kib-1) != 0 {
		return errors.New("torrent.piece_length_kib must be a power of two")
	}
	if c.Preflight.MinFreeGiB < 0 {
		return errors.New("preflight.min_free_gib must be >= 0")
	}
	return nil
}

func (c *Config) validateNotify() error {
	if c.Notify.NtfyTopic == "" {
		return nil
	}
	if !strings.HasPrefix(c.Notify.NtfyTopic, "http://") && !strings.HasPrefix(c.Notify.NtfyTopic, "https://") {
		return errors.New("notify.ntfy_topic must be a full http(s) URL")
	}
	if c.Notify.RequestTimeoutSeconds <= 0 {
		return errors.New("notify.request_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
