package workflow

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"muxsystem/internal/config"
	"muxsystem/internal/episodes"
	"muxsystem/internal/fonts"
	"muxsystem/internal/history"
	"muxsystem/internal/logging"
	"muxsystem/internal/mux"
	"muxsystem/internal/notifications"
	"muxsystem/internal/preflight"
)

// runState carries what every episode of one run shares.
type runState struct {
	id      string
	cfg     config.Config
	dryRun  bool
	flag    string
	muxer   *mux.Muxer
	catalog *fonts.Catalog
}

// Run processes the requested episodes. The returned error covers failures
// that stop the whole run; per-episode problems are reported in the Summary.
func (p *Pipeline) Run(ctx context.Context, req Request) (Summary, error) {
	if p == nil {
		return Summary{}, errors.New("pipeline not initialized")
	}
	run := &runState{id: p.newRunID(), cfg: *p.cfg, dryRun: req.DryRun}
	if out := strings.TrimSpace(req.OutputDir); out != "" {
		abs, err := filepath.Abs(out)
		if err != nil {
			return Summary{}, fmt.Errorf("resolve output dir: %w", err)
		}
		run.cfg.Paths.OutputDir = abs
	}
	if flag := strings.TrimSpace(req.Flag); flag != "" {
		run.cfg.Naming.Flag = flag
	}
	if req.Version > 0 {
		run.cfg.Naming.Version = req.Version
	}
	run.flag = run.cfg.Naming.Flag

	ctx = logging.WithRunID(ctx, run.id)
	logger := logging.WithContext(ctx, p.logger)
	summary := Summary{RunID: run.id, DryRun: req.DryRun}

	if req.DryRun {
		logger.Info("Running in dry-run mode - no files will be created")
	}
	if err := os.MkdirAll(run.cfg.Paths.OutputDir, 0o755); err != nil {
		return summary, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.MkdirAll(run.cfg.Paths.WorkDir, 0o755); err != nil {
		return summary, fmt.Errorf("create work dir: %w", err)
	}

	lock := flock.New(filepath.Join(run.cfg.Paths.WorkDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return summary, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release work dir lock", logging.Error(err))
		}
	}()

	list, err := p.resolveEpisodes(ctx, run, req.Episodes)
	if err != nil {
		return summary, err
	}
	summary.Requested = list

	if !req.DryRun {
		if err := p.runPreflight(ctx, run); err != nil {
			p.notify(ctx, func(ctx context.Context) error {
				return p.notifier.NotifyRunFailed(ctx, run.cfg.Show.Name, err)
			})
			return summary, err
		}
	}

	run.muxer = mux.NewMuxer(p.logger, run.cfg.Mkvmerge.Binary, mux.Naming{
		OutName:  run.cfg.Naming.OutName,
		MKVTitle: run.cfg.Naming.MKVTitle,
		Show:     run.cfg.Show.Name,
		Flag:     run.flag,
		Version:  run.cfg.Naming.Version,
	}, run.cfg.Mkvmerge.PremuxArgs)
	if p.runner != nil {
		run.muxer.WithCommandRunner(p.runner)
	}

	run.catalog, err = fonts.Index(run.cfg.Paths.FontsDir, filepath.Join(run.cfg.Paths.SubtitleDir, "fonts"))
	if err != nil {
		return summary, fmt.Errorf("index fonts: %w", err)
	}
	logger.Debug("font catalog ready", logging.Int("font_files", run.catalog.Files()))

	start := time.Now()
	for _, ep := range list {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		outcome := p.processEpisode(ctx, run, ep)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Status == history.StatusMuxed || req.DryRun {
			summary.Processed++
		}
		p.record(ctx, run, outcome)
	}

	logger.Info(fmt.Sprintf("Muxing complete: %d of %d episodes processed", summary.Processed, len(list)),
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("processed", summary.Processed),
		logging.Int("requested", len(list)),
		logging.Duration("elapsed", time.Since(start)),
	)
	if !req.DryRun {
		report := notifications.RunReport{
			Show:      run.cfg.Show.Name,
			Requested: len(list),
			Processed: summary.Processed,
			Duration:  time.Since(start),
		}
		for _, o := range summary.Outcomes {
			switch o.Status {
			case history.StatusSkipped:
				report.Skipped++
			case history.StatusFailed:
				report.Failed++
			}
		}
		p.notify(ctx, func(ctx context.Context) error {
			return p.notifier.NotifyRunCompleted(ctx, report)
		})
	}
	return summary, nil
}

// notify sends a notification; delivery problems never fail the run.
func (p *Pipeline) notify(ctx context.Context, send func(context.Context) error) {
	if p.notifier == nil {
		return
	}
	if err := send(ctx); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "notification failed", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notify.ntfy_topic"),
		)
	}
}

func (p *Pipeline) resolveEpisodes(ctx context.Context, run *runState, sel episodes.Selection) ([]int, error) {
	logger := logging.WithContext(ctx, p.logger)
	if !sel.All {
		if len(sel.Episodes) == 0 {
			logger.Error("No valid episodes specified.")
			return nil, ErrNoEpisodes
		}
		return sel.Episodes, nil
	}

	found, err := episodes.Discover(run.cfg.Paths.SubtitleDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("discover episodes: %w", err)
	}
	if len(found) == 0 {
		logger.Error("No valid episodes found in subtitle directory.")
		return nil, ErrNoEpisodesFound
	}
	logger.Info(fmt.Sprintf("Found episodes %s in subtitle directory", episodes.Summary(found)),
		logging.Int("count", len(found)),
	)
	return found, nil
}

func (p *Pipeline) runPreflight(ctx context.Context, run *runState) error {
	results := p.preflight(ctx, &run.cfg, run.dryRun)
	failed := preflight.Failed(results)
	if len(failed) == 0 {
		return nil
	}
	logger := logging.WithContext(ctx, p.logger)
	details := make([]string, 0, len(failed))
	for _, r := range failed {
		logging.ErrorWithContext(logger, "preflight check failed", "preflight_failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldErrorHint, "run `muxsystem check` for the full report"),
		)
		details = append(details, r.Name+": "+r.Detail)
	}
	return fmt.Errorf("%w: %s", ErrPreflight, strings.Join(details, "; "))
}

func (p *Pipeline) record(ctx context.Context, run *runState, outcome Outcome) {
	if p.store == nil {
		return
	}
	entry := &history.Entry{
		RunID:      run.id,
		Episode:    episodes.Format(outcome.Episode),
		Status:     outcome.Status,
		OutputPath: outcome.OutputPath,
		CRC32:      outcome.CRC32,
		Reason:     outcome.Reason,
		DryRun:     run.dryRun,
	}
	if err := p.store.Record(ctx, entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "failed to record history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "episode outcome missing from history"),
		)
	}
}
