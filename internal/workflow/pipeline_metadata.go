package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"

	"muxsystem/internal/config"
	"muxsystem/internal/fileutil"
	"muxsystem/internal/logging"
	"muxsystem/internal/media/audio"
)

// fetchMetadata looks up the episode title and, when enabled, downloads the
// show poster into the episode work dir. Failures only cost the metadata.
func (p *Pipeline) fetchMetadata(ctx context.Context, logger *slog.Logger, cfg *config.Config, in *episodeInputs) (title, cover string) {
	showID := int64(cfg.Show.TMDBID)
	season := cfg.Show.Season
	if season <= 0 {
		season = 1
	}
	episode, err := p.tmdb.EpisodeDetails(ctx, showID, season, in.episode)
	if err != nil {
		logging.WarnWithContext(logger, "tmdb episode lookup failed", "tmdb_lookup_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check tmdb.api_key and show.tmdb_id"),
			logging.String(logging.FieldImpact, "episode title left empty"),
		)
	} else {
		title = strings.TrimSpace(episode.Name)
	}

	if !cfg.TMDB.WriteCover {
		return title, ""
	}
	show, err := p.tmdb.TVDetails(ctx, showID)
	if err != nil || strings.TrimSpace(show.PosterPath) == "" {
		if err == nil {
			err = fmt.Errorf("show %d has no poster", showID)
		}
		logging.WarnWithContext(logger, "tmdb cover unavailable", "tmdb_cover_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "muxing without cover"),
		)
		return title, ""
	}
	ext := path.Ext(show.PosterPath)
	if ext == "" {
		ext = ".jpg"
	}
	dest := filepath.Join(in.workDir, "cover"+ext)
	if err := p.tmdb.DownloadImage(ctx, show.PosterPath, dest); err != nil {
		logging.WarnWithContext(logger, "tmdb cover download failed", "tmdb_cover_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "muxing without cover"),
		)
		return title, ""
	}
	return title, dest
}

// writeEmbeddedCover saves a cover taken from an audio file's metadata.
func writeEmbeddedCover(dir string, pic *audio.Picture) (string, error) {
	ext := ".jpg"
	if strings.EqualFold(pic.MIME, "image/png") {
		ext = ".png"
	}
	dest := filepath.Join(dir, "cover"+ext)
	if err := fileutil.WriteFile(dest, pic.Data, 0o644); err != nil {
		return "", fmt.Errorf("write cover: %w", err)
	}
	return dest, nil
}
