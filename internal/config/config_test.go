package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"muxsystem/internal/config"
)

func writeConfig(t *testing.T, dir string, body string) string {
	t.Helper()
	path := filepath.Join(dir, "muxsystem.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRequiresShowName(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	_, _, exists, err := config.Load("")
	if err == nil {
		t.Fatal("expected error without show.name")
	}
	if exists {
		t.Fatal("expected no config file to be found")
	}
	if !strings.Contains(err.Error(), "show.name is required") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadCustomPathExpandsPaths(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	path := writeConfig(t, tempDir, `
[show]
name = "Kusuriya"
tmdb_id = 12345

[paths]
premux_dir = "in/premux"
log_dir = "logs"

[naming]
flag = "Pololer"
version = 2
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if cfg.Show.Name != "Kusuriya" {
		t.Fatalf("unexpected show name %q", cfg.Show.Name)
	}
	if cfg.Paths.PremuxDir != filepath.Join(tempDir, "in", "premux") {
		t.Fatalf("premux dir not expanded: %q", cfg.Paths.PremuxDir)
	}
	if cfg.Paths.SubtitleDir != filepath.Join(tempDir, "subs") {
		t.Fatalf("subtitle dir default not applied: %q", cfg.Paths.SubtitleDir)
	}
	if cfg.Naming.Flag != "Pololer" || cfg.Naming.Version != 2 {
		t.Fatalf("unexpected naming: %+v", cfg.Naming)
	}
	if cfg.TMDBEnabled() {
		t.Fatal("expected TMDB disabled without api key")
	}
	if cfg.HistoryPath() != filepath.Join(tempDir, "logs", "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}
}

func TestProjectConfigDiscoveredInWorkingDirectory(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(tempDir)
	writeConfig(t, tempDir, "[show]\nname = \"Local\"\n")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != filepath.Join(tempDir, "muxsystem.toml") {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if cfg.Show.Name != "Local" {
		t.Fatalf("unexpected show name %q", cfg.Show.Name)
	}
}

func TestEnvOverridesTMDBKeyAndFlag(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	path := writeConfig(t, tempDir, `
[show]
name = "Show"
tmdb_id = 99

[tmdb]
api_key = "file-key"
`)
	t.Setenv("TMDB_API_KEY", "env-key")
	t.Setenv("MUXSYSTEM_FLAG", "EnvGroup")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.TMDB.APIKey != "env-key" {
		t.Fatalf("expected TMDB key from env, got %q", cfg.TMDB.APIKey)
	}
	if cfg.Naming.Flag != "EnvGroup" {
		t.Fatalf("expected flag from env, got %q", cfg.Naming.Flag)
	}
	if !cfg.TMDBEnabled() {
		t.Fatal("expected TMDB enabled")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tempDir := t.TempDir()
	path := writeConfig(t, tempDir, "[show]\nname = \"Show\"\nnmae = \"typo\"\n")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestNormalizeAudioExtensions(t *testing.T) {
	tempDir := t.TempDir()
	t.Chdir(tempDir)
	path := writeConfig(t, tempDir, `
[show]
name = "Show"

[tracks]
audio_extensions = ["FLAC", ".m4a", "flac", " "]
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{".flac", ".m4a"}
	if strings.Join(cfg.Tracks.AudioExtensions, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected extensions %v", cfg.Tracks.AudioExtensions)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "your_tmdb_api_key_here") {
		t.Fatalf("sample config missing placeholder TMDB key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Naming.OutName != config.Default().Naming.OutName {
		t.Fatalf("sample out_name drifted from default: %q", cfg.Naming.OutName)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	base := func() config.Config {
		cfg := config.Default()
		cfg.Show.Name = "Show"
		return cfg
	}

	cases := map[string]func(*config.Config){
		"name with separator":   func(c *config.Config) { c.Show.Name = "a/b" },
		"out name without ep":   func(c *config.Config) { c.Naming.OutName = "[$flag$] $show$" },
		"empty flag":            func(c *config.Config) { c.Naming.Flag = "" },
		"zero version":          func(c *config.Config) { c.Naming.Version = 0 },
		"unsupported extension": func(c *config.Config) { c.Tracks.AudioExtensions = []string{".mp3"} },
		"piece length":          func(c *config.Config) { c.Torrent.PieceLengthKiB = 300 },
		"log format":            func(c *config.Config) { c.Logging.Format = "xml" },
		"tmdb timeout":          func(c *config.Config) { c.Show.TMDBID = 1; c.TMDB.TimeoutSeconds = 0 },
		"ntfy topic not url":    func(c *config.Config) { c.Notify.NtfyTopic = "my-topic" },
		"ntfy timeout":          func(c *config.Config) { c.Notify.NtfyTopic = "https://ntfy.sh/x"; c.Notify.RequestTimeoutSeconds = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := base()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults with a show name to validate: %v", err)
	}
}
