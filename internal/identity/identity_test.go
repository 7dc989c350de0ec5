package identity

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/floatchat/floatchat-go/internal/store"
)

func TestUserIDGeneratedAndIdempotent(t *testing.T) {
	persistent := store.NewMemory()
	m := NewManager(persistent, store.NewMemory(), nil)
	ctx := context.Background()

	first, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if !IsValidToken(first) {
		t.Fatalf("Generated user id %q does not match token format", first)
	}

	second, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID second call: %v", err)
	}
	if second != first {
		t.Errorf("Expected repeated calls to return %q, got %q", first, second)
	}
}

func TestExistingValidIDNeverRegenerated(t *testing.T) {
	persistent := store.NewMemory()
	ctx := context.Background()

	const existing = "AAAAbbbb0000CCCC1111"
	if err := persistent.Put(ctx, store.KeyUserID, existing); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	m := NewManager(persistent, store.NewMemory(), nil)
	got, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if got != existing {
		t.Errorf("Expected existing valid id %q to be reused, got %q", existing, got)
	}
}

func TestInvalidStoredIDRegeneratedAndPersisted(t *testing.T) {
	tests := []struct {
		name   string
		stored string
	}{
		{"too short", "abc123"},
		{"bad characters", "!!!!bbbb0000CCCC1111"},
		{"too long", "AAAAbbbb0000CCCC1111X"},
		{"whitespace", "AAAAbbbb0000 CCC1111"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persistent := store.NewMemory()
			ctx := context.Background()
			if err := persistent.Put(ctx, store.KeyUserID, tt.stored); err != nil {
				t.Fatalf("seed store: %v", err)
			}

			m := NewManager(persistent, store.NewMemory(), nil)
			got, err := m.UserID(ctx)
			if err != nil {
				t.Fatalf("UserID: %v", err)
			}
			if got == tt.stored {
				t.Errorf("Invalid stored id %q was reused", tt.stored)
			}
			if !IsValidToken(got) {
				t.Errorf("Replacement id %q does not match token format", got)
			}

			persisted, err := persistent.Get(ctx, store.KeyUserID)
			if err != nil {
				t.Fatalf("Get persisted value: %v", err)
			}
			if persisted != got {
				t.Errorf("Replacement id not persisted: stored %q, returned %q", persisted, got)
			}
		})
	}
}

func TestSessionIDUsesSessionScope(t *testing.T) {
	persistent := store.NewMemory()
	session := store.NewMemory()
	m := NewManager(persistent, session, nil)
	ctx := context.Background()

	sid, err := m.SessionID(ctx)
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if !IsValidToken(sid) {
		t.Fatalf("Generated session id %q does not match token format", sid)
	}

	// The session id must land in the session store, not the durable one.
	inSession, _ := session.Get(ctx, store.KeySessionID)
	if inSession != sid {
		t.Errorf("Session id not stored in session scope: %q", inSession)
	}
	inPersistent, _ := persistent.Get(ctx, store.KeySessionID)
	if inPersistent != "" {
		t.Errorf("Session id leaked into durable scope: %q", inPersistent)
	}
}

func TestUserIDWithSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	persistent, err := store.NewSQLite(dbPath)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	defer func() {
		if closeErr := persistent.Close(); closeErr != nil {
			t.Errorf("Close: %v", closeErr)
		}
	}()

	m := NewManager(persistent, store.NewMemory(), nil)
	ctx := context.Background()

	first, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	second, err := m.UserID(ctx)
	if err != nil {
		t.Fatalf("UserID second call: %v", err)
	}
	if first != second {
		t.Errorf("Expected stable user id across calls, got %q then %q", first, second)
	}
}

func TestIsValidToken(t *testing.T) {
	valid := []string{"AAAAbbbb0000CCCC1111", "abcdefghij0123456789"}
	for _, id := range valid {
		if !IsValidToken(id) {
			t.Errorf("Expected %q to be valid", id)
		}
	}

	invalid := []string{"", "short", "AAAAbbbb0000CCCC11112", "AAAAbbbb0000CCCC111!"}
	for _, id := range invalid {
		if IsValidToken(id) {
			t.Errorf("Expected %q to be invalid", id)
		}
	}
}
