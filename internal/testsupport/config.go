package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"muxsystem/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose directories all live under a fresh temp
// dir. Nothing is created on disk until a test writes inputs.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Show.Name = "Test Show"
	cfgVal.Paths = config.Paths{
		PremuxDir:   filepath.Join(base, "premux"),
		AudioDir:    filepath.Join(base, "audio"),
		SubtitleDir: filepath.Join(base, "subs"),
		FontsDir:    filepath.Join(base, "fonts"),
		OutputDir:   filepath.Join(base, "muxed"),
		WorkDir:     filepath.Join(base, "work"),
		LogDir:      filepath.Join(base, "logs"),
	}
	cfgVal.Preflight.MinFreeGiB = 0

	builder := &configBuilder{t: t, baseDir: base, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithTMDB enables TMDB lookups against baseURL.
func WithTMDB(key, baseURL string, showID int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIKey = key
		b.cfg.TMDB.BaseURL = baseURL
		b.cfg.TMDB.ImageBaseURL = baseURL + "/images"
		b.cfg.Show.TMDBID = showID
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, mkvmerge and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"mkvmerge", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.PremuxDir)
}
