package client

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Clark-Hu/store-rating/internal/auth"
)

// Session holds the caller's bearer token. It is created by LoadSession,
// replaced by Save after login or registration, and dropped by Clear on
// logout or when the server rejects the token.
type Session struct {
	mu        sync.RWMutex
	path      string
	token     string
	identity  auth.Identity
	expiresAt time.Time
}

// NewSession returns an empty session persisted at path. An empty path keeps
// the session in memory only.
func NewSession(path string) *Session {
	return &Session{path: path}
}

// LoadSession reads the token stored at path and keeps it only if it has not
// expired at now. Expired or unreadable tokens are removed from disk.
func LoadSession(path string, now time.Time) (*Session, error) {
	s := NewSession(path)
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	token := strings.TrimSpace(string(raw))
	id, expires, err := decodeToken(token)
	if err != nil || !now.Before(expires) {
		return s, s.Clear()
	}
	s.token, s.identity, s.expiresAt = token, id, expires
	return s, nil
}

// decodeToken reads the claims without verifying the signature; only the
// server holds the signing key.
func decodeToken(token string) (auth.Identity, time.Time, error) {
	var claims auth.Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return auth.Identity{}, time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return auth.Identity{}, time.Time{}, errors.New("decode token: missing exp")
	}
	id := auth.Identity{ID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: claims.Role}
	return id, claims.ExpiresAt.Time.UTC(), nil
}

// Save replaces the session token and persists it.
func (s *Session) Save(token string) error {
	id, expires, err := decodeToken(token)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.identity, s.expiresAt = token, id, expires
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear forgets the token and removes the stored copy.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.identity, s.expiresAt = "", auth.Identity{}, time.Time{}
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns the logged-in user as recorded in the token.
func (s *Session) Identity() (auth.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity, s.token != ""
}

// ExpiresAt reports when the current token stops being accepted.
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}
