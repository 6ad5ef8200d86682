package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"muxsystem/internal/history"
	"muxsystem/internal/testsupport"
)

func TestRecordAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	entries := []*history.Entry{
		{RunID: "run-1", Episode: "01", Status: history.StatusMuxed, OutputPath: "/out/01.mkv", CRC32: "DEADBEEF"},
		{RunID: "run-1", Episode: "02", Status: history.StatusSkipped, Reason: "Video file not found"},
		{RunID: "run-2", Episode: "01", Status: history.StatusDryRun, DryRun: true},
	}
	for _, entry := range entries {
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
		if entry.ID == 0 || entry.CreatedAt.IsZero() {
			t.Fatalf("expected id and timestamp assigned, got %+v", entry)
		}
	}

	listed, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(listed))
	}
	if listed[0].RunID != "run-2" || !listed[0].DryRun {
		t.Fatalf("expected newest entry first, got %+v", listed[0])
	}
	if listed[1].Reason != "Video file not found" || listed[1].OutputPath != "" {
		t.Fatalf("unexpected skipped entry %+v", listed[1])
	}

	limited, err := store.List(ctx, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one entry with limit, got %d (%v)", len(limited), err)
	}

	latest, ok, err := store.Latest(ctx, "01")
	if err != nil || !ok {
		t.Fatalf("Latest returned %v %v", ok, err)
	}
	if latest.Status != history.StatusDryRun {
		t.Fatalf("unexpected latest entry %+v", latest)
	}
	if _, ok, err := store.Latest(ctx, "99"); err != nil || ok {
		t.Fatalf("expected no entry for unknown episode, got %v %v", ok, err)
	}
}

func TestRecordValidates(t *testing.T) {
	store := testsupport.MustOpenHistory(t, testsupport.NewConfig(t))
	ctx := context.Background()
	if err := store.Record(ctx, nil); err == nil {
		t.Fatal("expected error for nil entry")
	}
	if err := store.Record(ctx, &history.Entry{Status: history.StatusMuxed}); err == nil {
		t.Fatal("expected error for missing episode")
	}
	if err := store.Record(ctx, &history.Entry{Episode: "01"}); err == nil {
		t.Fatal("expected error for missing status")
	}
}

func TestOpenDetectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Record(context.Background(), &history.Entry{Episode: "05", Status: history.StatusFailed, Reason: "boom"}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	store.Close()

	reopened, err := history.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	entries, err := reopened.List(context.Background(), 10)
	if err != nil || len(entries) != 1 || entries[0].Reason != "boom" {
		t.Fatalf("unexpected entries after reopen: %+v (%v)", entries, err)
	}
}
