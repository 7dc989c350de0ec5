// Package identity provides anonymous user and session identity for the
// chat widget. Identifiers are opaque 20-character alphanumeric tokens; a
// stored token that fails validation is regenerated and overwritten, never
// reused.
package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"

	"github.com/floatchat/floatchat-go/internal/store"
)

const (
	tokenLength   = 20
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9]{20}$`)

// Manager resolves the widget's user and session identifiers against their
// backing stores. The user id lives in the durable store; the session id
// lives in the session-scoped store.
type Manager struct {
	persistent store.Store
	session    store.Store
	logger     *slog.Logger
}

// NewManager creates a Manager over the two storage scopes.
func NewManager(persistent, session store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		persistent: persistent,
		session:    session,
		logger:     logger,
	}
}

// UserID returns the durable user identifier, generating and persisting a
// new one when no valid value is stored. Repeated calls within the same
// storage lifetime return the same value.
func (m *Manager) UserID(ctx context.Context) (string, error) {
	return m.getOrCreate(ctx, m.persistent, store.KeyUserID)
}

// SessionID returns the session-scoped identifier under the same contract
// as UserID.
func (m *Manager) SessionID(ctx context.Context) (string, error) {
	return m.getOrCreate(ctx, m.session, store.KeySessionID)
}

func (m *Manager) getOrCreate(ctx context.Context, s store.Store, key string) (string, error) {
	existing, err := s.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	if IsValidToken(existing) {
		return existing, nil
	}
	if existing != "" {
		m.logger.Warn("Stored identifier failed validation, regenerating", "key", key)
	}

	id, err := generateToken()
	if err != nil {
		return "", err
	}
	if err := s.Put(ctx, key, id); err != nil {
		return "", fmt.Errorf("persist %s: %w", key, err)
	}
	return id, nil
}

// IsValidToken reports whether id matches the canonical token format.
func IsValidToken(id string) bool {
	return tokenPattern.MatchString(id)
}

// generateToken produces a random token that satisfies the validation
// pattern by construction.
func generateToken() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(tokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate identifier: %w", err)
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
