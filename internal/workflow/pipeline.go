package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"muxsystem/internal/config"
	"muxsystem/internal/history"
	"muxsystem/internal/logging"
	"muxsystem/internal/notifications"
	"muxsystem/internal/preflight"
	"muxsystem/internal/tmdb"
)

const lockFileName = ".muxsystem.lock"

type commandRunner func(ctx context.Context, name string, args ...string) error

type preflightFunc func(ctx context.Context, cfg *config.Config, dryRun bool) []preflight.Result

// metadataClient is the part of the TMDB client the pipeline calls.
type metadataClient interface {
	TVDetails(ctx context.Context, showID int64) (*tmdb.Show, error)
	EpisodeDetails(ctx context.Context, showID int64, season, episode int) (*tmdb.Episode, error)
	DownloadImage(ctx context.Context, imagePath, dest string) error
}

// Pipeline muxes episodes according to a config.
type Pipeline struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *history.Store
	tmdb      metadataClient
	notifier  notifications.Service
	runner    commandRunner
	preflight preflightFunc
	newRunID  func() string
}

// Option configures optional Pipeline behavior.
type Option func(*Pipeline)

// WithHistory records every outcome in store.
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) { p.store = store }
}

// WithCommandRunner replaces the mkvmerge runner, for tests.
func WithCommandRunner(r func(ctx context.Context, name string, args ...string) error) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.runner = r
		}
	}
}

// WithMetadataClient replaces the TMDB client built from config.
func WithMetadataClient(c metadataClient) Option {
	return func(p *Pipeline) { p.tmdb = c }
}

// WithNotifier replaces the ntfy notifier built from config.
func WithNotifier(n notifications.Service) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithPreflight replaces the preflight checks run before a real mux.
func WithPreflight(fn func(ctx context.Context, cfg *config.Config, dryRun bool) []preflight.Result) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.preflight = fn
		}
	}
}

// New constructs a pipeline. A TMDB client is created when the config
// enables lookups.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("workflow requires a config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "workflow"),
		preflight: preflight.RunAll,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.notifier == nil {
		p.notifier = notifications.NewService(cfg)
	}
	if p.tmdb == nil && cfg.TMDBEnabled() {
		client, err := tmdb.New(cfg.TMDB.APIKey, cfg.TMDB.BaseURL, cfg.TMDB.Language,
			tmdb.WithImageBaseURL(cfg.TMDB.ImageBaseURL),
			tmdb.WithTimeout(time.Duration(cfg.TMDB.TimeoutSeconds)*time.Second),
		)
		if err != nil {
			return nil, err
		}
		p.tmdb = client
	}
	return p, nil
}
