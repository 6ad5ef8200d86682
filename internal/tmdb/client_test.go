package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"muxsystem/internal/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
	if _, err := tmdb.New("key", " ", "en-US"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestTVDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/1429" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "key" || r.URL.Query().Get("append_to_response") != "external_ids" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1429,"name":"Attack on Titan","poster_path":"/poster.jpg","external_ids":{"tvdb_id":267440}}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	show, err := client.TVDetails(context.Background(), 1429)
	if err != nil {
		t.Fatalf("TVDetails returned error: %v", err)
	}
	if show.Name != "Attack on Titan" || show.PosterPath != "/poster.jpg" || show.ExternalIDs.TVDBID != 267440 {
		t.Fatalf("unexpected show %#v", show)
	}
	if _, err := client.TVDetails(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero id")
	}
}

func TestEpisodeDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tv/10/season/1/episode/3" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":5,"name":"A Dim Light","season_number":1,"episode_number":3}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL+"/", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ep, err := client.EpisodeDetails(context.Background(), 10, 1, 3)
	if err != nil {
		t.Fatalf("EpisodeDetails returned error: %v", err)
	}
	if ep.Name != "A Dim Light" || ep.EpisodeNumber != 3 {
		t.Fatalf("unexpected episode %#v", ep)
	}
	if _, err := client.EpisodeDetails(context.Background(), 10, 1, 4); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestDownloadImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/t/p/original/poster.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("jpeg-bytes"))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", "https://api.example", "", tmdb.WithImageBaseURL(server.URL+"/t/p/original/"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "cover.jpg")
	if err := client.DownloadImage(context.Background(), "/poster.jpg", dest); err != nil {
		t.Fatalf("DownloadImage returned error: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "jpeg-bytes" {
		t.Fatalf("unexpected image content %q (%v)", data, err)
	}

	missing := filepath.Join(t.TempDir(), "missing.jpg")
	if err := client.DownloadImage(context.Background(), "/missing.jpg", missing); err == nil {
		t.Fatal("expected error for missing image")
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Fatal("failed download must not leave a file")
	}
}
