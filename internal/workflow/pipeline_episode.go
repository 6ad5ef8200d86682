package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"muxsystem/internal/ass"
	"muxsystem/internal/chapters"
	"muxsystem/internal/config"
	"muxsystem/internal/episodes"
	"muxsystem/internal/history"
	"muxsystem/internal/logging"
	"muxsystem/internal/media/audio"
	"muxsystem/internal/mux"
)

const (
	mergedScriptName = "subtitles.ass"
	chaptersFileName = "chapters.txt"
)

// episodeInputs is everything gathered for one episode before muxing.
type episodeInputs struct {
	episode  int
	label    string
	workDir  string
	video    string
	audio    []string
	script   string
	chapters string
	fonts    []string
	missing  []string
	nChapter int
}

func (p *Pipeline) processEpisode(ctx context.Context, run *runState, ep int) Outcome {
	label := episodes.Format(ep)
	ctx = logging.WithEpisode(ctx, label)
	logger := logging.WithContext(ctx, p.logger)
	outcome := Outcome{Episode: ep}

	inputs, err := p.gatherInputs(ctx, logger, run, ep)
	var skip *SkipError
	switch {
	case errors.As(err, &skip):
		logging.WarnWithContext(logger, skip.Error(), "episode_skipped",
			logging.String("reason", skip.Reason),
			logging.String(logging.FieldErrorHint, "check the input directories in the config"),
		)
		outcome.Status = history.StatusSkipped
		outcome.Reason = skip.Reason
		return outcome
	case err != nil:
		logging.ErrorWithContext(logger, fmt.Sprintf("Error muxing episode %s: %v", label, err), "episode_failed",
			logging.Error(err),
		)
		outcome.Status = history.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}
	outcome.Chapters = inputs.nChapter
	outcome.Fonts = len(inputs.fonts)
	outcome.Missing = inputs.missing

	if run.dryRun {
		logger.Info(fmt.Sprintf("Dry run for episode %s completed", label),
			logging.String(logging.FieldEventType, "episode_dry_run"),
			logging.String("script", inputs.script),
			logging.Int("chapters", inputs.nChapter),
			logging.Int("fonts", len(inputs.fonts)),
		)
		outcome.Status = history.StatusDryRun
		return outcome
	}

	result, err := p.muxEpisode(ctx, logger, run, inputs)
	if err != nil {
		logging.ErrorWithContext(logger, fmt.Sprintf("Error muxing episode %s: %v", label, err), "episode_failed",
			logging.Error(err),
		)
		outcome.Status = history.StatusFailed
		outcome.Reason = err.Error()
		return outcome
	}
	logger.Info("Successfully muxed: "+result.Name,
		logging.String(logging.FieldEventType, "episode_muxed"),
		logging.String("output", result.OutputPath),
		logging.String("crc32", result.CRC32),
	)
	outcome.Status = history.StatusMuxed
	outcome.OutputPath = result.OutputPath
	outcome.CRC32 = result.CRC32
	return outcome
}

// gatherInputs locates and prepares the inputs for ep in the order the
// checks are reported: video, audio, subtitles.
func (p *Pipeline) gatherInputs(ctx context.Context, logger *slog.Logger, run *runState, ep int) (*episodeInputs, error) {
	cfg := &run.cfg
	label := episodes.Format(ep)
	in := &episodeInputs{episode: ep, label: label, workDir: filepath.Join(cfg.Paths.WorkDir, label)}

	if !run.dryRun {
		videos, err := findFiles(cfg.Paths.PremuxDir, episodePattern(label, ".mkv"))
		if err != nil {
			return nil, err
		}
		if len(videos) == 0 {
			return nil, &SkipError{Episode: ep, Reason: "Video file not found"}
		}
		in.video = videos[0]
	}

	audioPaths, err := audioFiles(cfg.Paths.AudioDir, label, cfg.Tracks.AudioExtensions)
	if err != nil {
		return nil, err
	}
	in.audio = audioPaths

	subs, err := findFiles(cfg.Paths.SubtitleDir, episodePattern(label, ".ass"))
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, &SkipError{Episode: ep, Reason: "Subtitle files missing"}
	}
	if !run.dryRun && len(in.audio) == 0 {
		return nil, &SkipError{Episode: ep, Reason: "Audio files missing"}
	}

	doc, err := loadScripts(subs)
	if err != nil {
		return nil, err
	}
	if err := p.mergeExtras(logger, cfg.Merge, cfg.Paths.SubtitleDir, cfg.Show.Name, label, doc); err != nil {
		return nil, err
	}
	doc.CleanGarbage()

	if err := os.MkdirAll(in.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create episode work dir: %w", err)
	}
	in.script = filepath.Join(in.workDir, mergedScriptName)
	if err := doc.Save(in.script); err != nil {
		return nil, fmt.Errorf("write merged script: %w", err)
	}

	chapterList := doc.Chapters(cfg.Merge.ChaptersFromActor)
	in.nChapter = len(chapterList)
	chapterPath := filepath.Join(in.workDir, chaptersFileName)
	wrote, err := chapters.WriteFile(chapterPath, chapterList)
	if err != nil {
		return nil, err
	}
	if wrote {
		in.chapters = chapterPath
	}

	matches, missing := run.catalog.Resolve(doc.Fonts())
	for _, m := range matches {
		in.fonts = append(in.fonts, m.Path)
	}
	in.missing = missing
	if len(missing) > 0 {
		logging.WarnWithContext(logger, "fonts not found", "fonts_missing",
			logging.Strings("fonts", missing),
			logging.String(logging.FieldErrorHint, "add the fonts to paths.fonts_dir"),
			logging.String(logging.FieldImpact, "fonts not attached"),
		)
	}
	logger.Debug("episode inputs ready",
		logging.String("video", in.video),
		logging.Int("audio_tracks", len(in.audio)),
		logging.Int("scripts", len(subs)),
		logging.Int("chapters", in.nChapter),
		logging.Int("fonts", len(in.fonts)),
	)
	return in, nil
}

type mergeStep struct {
	pattern string
	opts    ass.MergeOptions
}

// mergeExtras folds typesetting, song and common scripts into doc.
func (p *Pipeline) mergeExtras(logger *slog.Logger, merge config.Merge, subDir, show, ep string, doc *ass.Document) error {
	steps := []mergeStep{
		{pattern: merge.Typesetting},
		{pattern: merge.Opening, opts: ass.MergeOptions{SyncTarget: merge.OpeningSync, SyncSource: merge.SourceSync}},
		{pattern: merge.Ending, opts: ass.MergeOptions{SyncTarget: merge.EndingSync, SyncSource: merge.SourceSync}},
	}
	for _, common := range merge.Common {
		steps = append(steps, mergeStep{pattern: common})
	}

	for _, step := range steps {
		if strings.TrimSpace(step.pattern) == "" {
			continue
		}
		pattern := path.Clean(expandMergePattern(step.pattern, show, ep))
		files, err := findFiles(subDir, filepath.FromSlash(pattern))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Debug("no script to merge", logging.String("pattern", pattern))
			continue
		}
		for _, file := range files {
			extra, err := ass.Open(file)
			if err != nil {
				return err
			}
			res := doc.Merge(extra, step.opts)
			if step.opts.SyncTarget != "" && !res.Synced {
				logging.WarnWithContext(logger, "sync marker not found", "merge_unsynced",
					logging.String("file", filepath.Base(file)),
					logging.String("marker", step.opts.SyncTarget),
					logging.String(logging.FieldErrorHint, "add a "+step.opts.SyncTarget+" comment line to the dialogue script"),
					logging.String(logging.FieldImpact, "lines merged without shifting"),
				)
			}
			logger.Debug("merged script",
				logging.String("file", filepath.Base(file)),
				logging.Int("events", res.Events),
				logging.Int("styles", res.Styles),
				logging.Bool("synced", res.Synced),
				logging.Duration("offset", res.Offset),
			)
		}
	}
	return nil
}

// muxEpisode resolves metadata and cover art then runs mkvmerge.
func (p *Pipeline) muxEpisode(ctx context.Context, logger *slog.Logger, run *runState, in *episodeInputs) (mux.Result, error) {
	cfg := &run.cfg
	job := mux.Job{
		Episode:   in.label,
		Video:     in.video,
		Fonts:     in.fonts,
		Chapters:  in.chapters,
		OutputDir: cfg.Paths.OutputDir,
		Subtitle: mux.SubtitleInput{
			Path:     in.script,
			Language: cfg.Tracks.SubtitleLanguage,
			Name:     cfg.SubtitleName(run.flag),
			Default:  true,
		},
	}

	var covers []*audio.Picture
	for i, file := range in.audio {
		track := mux.AudioInput{
			Path:     file,
			Language: cfg.Tracks.AudioLanguage,
			Name:     cfg.Tracks.AudioName,
			Default:  i == 0,
		}
		info, err := audio.Probe(file)
		switch {
		case err == nil:
			if info.Language != "" {
				track.Language = info.Language
			}
			if info.Cover != nil {
				covers = append(covers, info.Cover)
			}
			logger.Debug("audio probed",
				logging.String("file", filepath.Base(file)),
				logging.String("codec", info.Codec),
				logging.String("layout", info.Layout()),
				logging.Int("sample_rate", info.SampleRate),
			)
		case errors.Is(err, audio.ErrUnsupported):
		default:
			logger.Debug("audio probe failed", logging.String("file", filepath.Base(file)), logging.Error(err))
		}
		job.Audio = append(job.Audio, track)
	}

	if p.tmdb != nil {
		job.EpisodeTitle, job.Cover = p.fetchMetadata(ctx, logger, cfg, in)
	}
	if job.Cover == "" && len(covers) > 0 {
		cover, err := writeEmbeddedCover(in.workDir, covers[0])
		if err != nil {
			logger.Debug("embedded cover not written", logging.Error(err))
		} else {
			job.Cover = cover
		}
	}
	return run.muxer.Mux(ctx, job)
}
