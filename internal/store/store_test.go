package store

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	got, err := s.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("Get on empty store: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value for absent key, got %q", got)
	}

	if err := s.Put(ctx, KeyUserID, "abc123"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err = s.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "abc123" {
		t.Errorf("Expected abc123, got %q", got)
	}
}

func TestMemoryStoreOverwrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, KeySessionID, "first"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, KeySessionID, "second"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err := s.Get(ctx, KeySessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "second" {
		t.Errorf("Expected overwritten value second, got %q", got)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil {
			t.Errorf("Close: %v", closeErr)
		}
	}()

	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	got, err := s.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("Get on fresh database: %v", err)
	}
	if got != "" {
		t.Errorf("Expected empty value for absent key, got %q", got)
	}

	if err := s.Put(ctx, KeyUserID, "QmqTfTzzYcjCLpPQwKQQ"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, KeyUserID, "ZZqTfTzzYcjCLpPQwKQQ"); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}

	got, err = s.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "ZZqTfTzzYcjCLpPQwKQQ" {
		t.Errorf("Expected overwritten value, got %q", got)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	s, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	if err := s.Put(ctx, KeyUserID, "persisted0123456789A"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite reopen: %v", err)
	}
	defer func() {
		if closeErr := reopened.Close(); closeErr != nil {
			t.Errorf("Close: %v", closeErr)
		}
	}()

	got, err := reopened.Get(ctx, KeyUserID)
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got != "persisted0123456789A" {
		t.Errorf("Expected value to survive reopen, got %q", got)
	}
}
