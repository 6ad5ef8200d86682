package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"muxsystem/internal/history"
	"muxsystem/internal/testsupport"
	"muxsystem/internal/workflow"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "Test Show")

	target := filepath.Join(t.TempDir(), "muxsystem.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A freshly generated sample must load as-is.
	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("config validate on sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "JudulAnime")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting an existing file")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestEpisodesCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	writeScripts(t, env.cfg, "01", "02", "03", "05")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"all discovers", []string{"episodes", "all"}, "Episodes: 1-3, 5 (4)"},
		{"explicit range", []string{"episodes", "4-6"}, "04 05 06"},
		{"discover filters", []string{"episodes", "4-6", "--discover"}, "Episodes: 5 (1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCLI(t, tt.args, env.configPath)
			if err != nil {
				t.Fatalf("episodes: %v", err)
			}
			requireContains(t, out, tt.want)
		})
	}
}

func TestInvalidSelectionExitCode(t *testing.T) {
	env := setupCLITestEnv(t)
	for _, args := range [][]string{
		{"episodes", "5-1"},
		{"mux", "x"},
	} {
		_, _, err := runCLI(t, args, env.configPath)
		if err == nil {
			t.Fatalf("%v: expected error", args)
		}
		if code := exitCode(err); code != exitInvalidSelection {
			t.Fatalf("%v: exit code = %d, want %d", args, code, exitInvalidSelection)
		}
	}
}

func TestInvalidSelectionExitCodeWithBrokenConfig(t *testing.T) {
	setupCLITestEnv(t)
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[show]\nname = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	for _, args := range [][]string{
		{"mux", "5-1"},
		{"episodes", "x"},
	} {
		_, _, err := runCLI(t, args, configPath)
		if err == nil {
			t.Fatalf("%v: expected error", args)
		}
		if code := exitCode(err); code != exitInvalidSelection {
			t.Fatalf("%v: exit code = %d, want %d (%v)", args, code, exitInvalidSelection, err)
		}
	}

	_, _, err := runCLI(t, []string{"mux", "1", "--dry-run"}, configPath)
	if err == nil || !strings.Contains(err.Error(), "show.name is required") {
		t.Fatalf("valid selection with broken config: got %v", err)
	}
	if code := exitCode(err); code != exitFailure {
		t.Fatalf("exit code = %d, want %d", code, exitFailure)
	}
}

func TestMuxDryRunRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)
	writeScripts(t, env.cfg, "01")

	out, _, err := runCLI(t, []string{"mux", "all", "--dry-run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("mux --dry-run: %v", err)
	}
	var summary workflow.Summary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if !summary.DryRun || summary.Processed != 1 || len(summary.Outcomes) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := summary.Outcomes[0].Status; got != history.StatusDryRun {
		t.Fatalf("status = %q, want %q", got, history.StatusDryRun)
	}
	merged := filepath.Join(env.cfg.Paths.WorkDir, "01", "subtitles.ass")
	if _, err := os.Stat(merged); err != nil {
		t.Fatalf("expected merged script: %v", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, string(history.StatusDryRun))

	out, _, err = runCLI(t, []string{"history", "--episode", "1", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --episode: %v", err)
	}
	var entries []history.Entry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 || entries[0].Episode != "01" || !entries[0].DryRun {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestMuxNothingProcessedFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedBinaries())
	writeScripts(t, env.cfg, "01")
	for _, dir := range []string{env.cfg.Paths.PremuxDir, env.cfg.Paths.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	out, _, err := runCLI(t, []string{"mux", "1"}, env.configPath)
	if !errors.Is(err, errNothingProcessed) {
		t.Fatalf("err = %v, want %v", err, errNothingProcessed)
	}
	if exitCode(err) != exitFailure {
		t.Fatalf("exit code = %d, want %d", exitCode(err), exitFailure)
	}
	requireContains(t, out, "Video file not found")
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"check", "--dry-run"}, env.configPath)
	if err == nil {
		t.Fatal("expected a missing subtitle directory to fail the check")
	}
	requireContains(t, out, "[ERROR]")

	writeScripts(t, env.cfg, "01")
	out, _, err = runCLI(t, []string{"check", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "Subtitle directory:")
	requireContains(t, out, "[OK]")
}

func TestHistoryEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No history recorded")
}

func TestReleaseInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "release.md")

	out, _, err := runCLI(t, []string{"release", "init", "-o", target}, env.configPath)
	if err != nil {
		t.Fatalf("release init: %v", err)
	}
	requireContains(t, out, "Wrote release template")

	if _, _, err := runCLI(t, []string{"release", "validate", target}, ""); err != nil {
		t.Fatalf("release validate: %v", err)
	}

	out, _, err = runCLI(t, []string{"release", "show", target, "--json"}, "")
	if err != nil {
		t.Fatalf("release show: %v", err)
	}
	var meta struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
	}
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta.Info.Title != "Test Show" {
		t.Fatalf("title = %q, want %q", meta.Info.Title, "Test Show")
	}
}

func TestReleaseValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "release.md")
	testsupport.WriteText(t, path, "# Release\n\n## Info\n\n| Field | Value |\n|---|---|\n| Title | X |\n")

	out, _, err := runCLI(t, []string{"release", "validate", path}, "")
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if exitCode(err) != exitFailure {
		t.Fatalf("exit code = %d, want %d", exitCode(err), exitFailure)
	}
	requireContains(t, strings.ToLower(out), "staff")
}

func TestTorrentCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "[Test] Show - 01.mkv"), 4096)
	testsupport.WriteFile(t, filepath.Join(env.cfg.Paths.OutputDir, "[Test] Show - 02.mkv"), 2048)
	target := filepath.Join(env.baseDir, "batch.torrent")

	out, _, err := runCLI(t, []string{"torrent", "-o", target, "-t", "https://tracker.example/announce"}, env.configPath)
	if err != nil {
		t.Fatalf("torrent: %v", err)
	}
	requireContains(t, out, "Files:      2")
	requireContains(t, out, "Info hash:")
	if info, err := os.Stat(target); err != nil || info.Size() == 0 {
		t.Fatalf("expected torrent at %s: %v", target, err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("boom"), exitFailure},
		{"coded", withExitCode(exitInvalidSelection, errors.New("bad")), exitInvalidSelection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLogsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, env.cfg.LogFilePath(),
		"10:00:00 INFO workflow: Found episodes 1-2 run_id=r1\n"+
			"10:00:01 WARN workflow: Skipping episode 02: Video file not found run_id=r1 episode=02\n"+
			"10:00:02 INFO workflow: Dry run for episode 01 completed run_id=r1 episode=01\n")

	out, _, err := runCLI(t, []string{"logs", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
	requireContains(t, out, "Dry run for episode 01")

	out, _, err = runCLI(t, []string{"logs", "--episode", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("logs --episode: %v", err)
	}
	requireContains(t, out, "Skipping episode 02")
	if strings.Contains(out, "Dry run") {
		t.Fatalf("episode filter leaked other lines: %q", out)
	}
}

func TestFieldTerm(t *testing.T) {
	if got := fieldTerm("console", "episode", "03"); got != "episode=03" {
		t.Fatalf("console term = %q", got)
	}
	if got := fieldTerm("json", "episode", "03"); got != `"episode":"03"` {
		t.Fatalf("json term = %q", got)
	}
}
