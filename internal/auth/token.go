// Package auth implements credential issuance and request authentication:
// signed time-bounded tokens, password hashing, and role authorization.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
)

// Identity is the acting user resolved from a token.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  domain.Role
}

// IdentityOf builds the token identity for a stored user.
func IdentityOf(u domain.User) Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// Claims is the signed token payload. The user id travels in "sub".
type Claims struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens with a fixed lifetime.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager constructs a manager using the wall clock.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of m that reads time from now.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	cp := *m
	cp.now = now
	return &cp
}

// TTL reports the token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for id that expires after the configured lifetime.
func (m *TokenManager) Issue(id Identity) (string, time.Time, error) {
	if !id.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: invalid role for user %s", id.ID)
	}
	issued := m.now()
	expires := issued.Add(m.ttl)
	claims := Claims{
		Name:  id.Name,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Authenticate verifies the signature and expiry of token and returns the
// embedded identity. Any failure is reported as Unauthenticated.
func (m *TokenManager) Authenticate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, apperr.Unauthenticated("Access token required")
	}

	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "Token expired", Err: err}
		}
		return Identity{}, &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "Invalid or expired token", Err: err}
	}
	if !parsed.Valid || claims.Subject == "" || !claims.Role.Valid() {
		return Identity{}, apperr.Unauthenticated("Invalid or expired token")
	}

	return Identity{ID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.Unauthenticated("Access token required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperr.Unauthenticated("Authorization header format must be Bearer {token}")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperr.Unauthenticated("Access token required")
	}
	return token, nil
}
