package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"muxsystem/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if result := CheckDirectoryAccess("test", dir); !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	if result := CheckDirectoryAccess("test", filepath.Join(dir, "new", "nested")); !result.Passed {
		t.Fatalf("expected creatable dir to pass, got: %s", result.Detail)
	}

	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", file); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryReadable(t *testing.T) {
	if result := CheckDirectoryReadable("subs", t.TempDir()); !result.Passed {
		t.Fatalf("expected pass, got %s", result.Detail)
	}
	result := CheckDirectoryReadable("subs", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	dir := t.TempDir()
	free, err := FreeSpace(dir)
	if err != nil {
		t.Fatalf("FreeSpace returned error: %v", err)
	}
	if free == 0 {
		t.Skip("filesystem reports no free space")
	}
	if result := CheckFreeSpace("space", dir, 1); !result.Passed {
		t.Fatalf("expected pass for 1 byte minimum, got %s", result.Detail)
	}
	if result := CheckFreeSpace("space", filepath.Join(dir, "missing"), free*1024); result.Passed {
		t.Fatal("expected failure for impossible minimum")
	}
}

func TestCheckTMDB(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" || r.URL.Query().Get("api_key") != "good-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckTMDB(context.Background(), srv.URL, "good-key"); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckTMDB(context.Background(), srv.URL, "bad-key"); result.Passed {
		t.Fatal("expected failure for bad key")
	}
	if result := CheckTMDB(context.Background(), "", "key"); result.Passed || !result.Optional {
		t.Fatalf("expected optional failure for missing url, got %+v", result)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, false); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAllDryRunOnlyChecksSubtitles(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.SubtitleDir, 0o755); err != nil {
		t.Fatal(err)
	}
	results := RunAll(context.Background(), cfg, true)
	if len(results) != 1 || !results[0].Passed {
		t.Fatalf("unexpected dry-run results %+v", results)
	}
}

func TestRunAllReportsMissingBinary(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffprobe"))
	cfg.Mkvmerge.Binary = "mkvmerge-not-installed"
	for _, dir := range []string{cfg.Paths.SubtitleDir, cfg.Paths.PremuxDir, cfg.Paths.AudioDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	results := RunAll(context.Background(), cfg, false)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "mkvmerge" {
		t.Fatalf("expected only mkvmerge to fail, got %+v", failed)
	}
	for _, r := range results {
		if r.Name == "TMDB" {
			t.Fatal("TMDB check should be skipped without an id")
		}
	}
}
