package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.sqlite")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpen_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.sqlite")

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	// Verify file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("database file was not created")
	}

	// Verify WAL mode
	journalMode, err := s.journalMode()
	if err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestGetName_Miss(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	name, resolvedAt, err := s.GetName(context.Background(), "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee")
	if err != nil {
		t.Fatalf("GetName error: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want empty on miss", name)
	}
	if !resolvedAt.IsZero() {
		t.Errorf("resolvedAt = %v, want zero on miss", resolvedAt)
	}
}

func TestPutName_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := s.PutName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee", "Steve", at); err != nil {
		t.Fatalf("PutName error: %v", err)
	}

	name, resolvedAt, err := s.GetName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee")
	if err != nil {
		t.Fatalf("GetName error: %v", err)
	}
	if name != "Steve" {
		t.Errorf("name = %q, want Steve", name)
	}
	if !resolvedAt.Equal(at) {
		t.Errorf("resolvedAt = %v, want %v", resolvedAt, at)
	}
}

func TestPutName_Upsert(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	t0 := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Hour)

	if err := s.PutName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee", "Steve", t0); err != nil {
		t.Fatalf("first PutName error: %v", err)
	}
	if err := s.PutName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee", "Alex", t1); err != nil {
		t.Fatalf("second PutName error: %v", err)
	}

	name, resolvedAt, err := s.GetName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee")
	if err != nil {
		t.Fatalf("GetName error: %v", err)
	}
	if name != "Alex" {
		t.Errorf("name = %q, want Alex", name)
	}
	if !resolvedAt.Equal(t1) {
		t.Errorf("resolvedAt = %v, want %v", resolvedAt, t1)
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	defer s.Close()

	ctx := context.Background()
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := s.PutName(ctx, "aaaaaaaabbbb1ccc8dddeeeeeeeeeeee", "Steve", old); err != nil {
		t.Fatalf("PutName error: %v", err)
	}
	if err := s.PutName(ctx, "bbbbbbbbcccc1ddd8eeeffffffffffff", "Alex", recent); err != nil {
		t.Fatalf("PutName error: %v", err)
	}

	n, err := s.Prune(ctx, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned = %d, want 1", n)
	}

	name, _, err := s.GetName(ctx, "bbbbbbbbcccc1ddd8eeeffffffffffff")
	if err != nil {
		t.Fatalf("GetName error: %v", err)
	}
	if name != "Alex" {
		t.Errorf("surviving name = %q, want Alex", name)
	}
}
