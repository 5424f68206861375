package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/store-rating/internal/apperr"
	"github.com/Clark-Hu/store-rating/internal/domain"
)

const testSecret = "test-secret-0123456789"

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestIssueAndAuthenticate(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenManager(testSecret, time.Hour).WithClock(fixedClock(issued))

	id := Identity{ID: "u-1", Name: "Alice Doe", Email: "alice@example.com", Role: domain.RoleUser}
	token, expires, err := issuer.Issue(id)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(time.Hour), expires)

	got, err := issuer.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestAuthenticateExpiryWindow(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	token, _, err := NewTokenManager(testSecret, time.Hour).WithClock(fixedClock(issued)).Issue(Identity{
		ID: "u-1", Name: "Alice", Email: "a@example.com", Role: domain.RoleStoreOwner,
	})
	require.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).WithClock(fixedClock(issued.Add(59 * time.Minute))).Authenticate(token)
	assert.NoError(t, err)

	_, err = NewTokenManager(testSecret, time.Hour).WithClock(fixedClock(issued.Add(61 * time.Minute))).Authenticate(token)
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
}

func TestAuthenticateRejects(t *testing.T) {
	now := time.Now()
	manager := NewTokenManager(testSecret, time.Hour)
	valid, _, err := manager.Issue(Identity{ID: "u-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	otherKey, _, err := NewTokenManager("another-secret-0123456", time.Hour).Issue(Identity{ID: "u-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		Role:             domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             domain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badRole, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u-1",
		"role": "superuser",
		"exp":  now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"tampered":       valid + "x",
		"wrong key":      otherKey,
		"alg none":       noneAlg,
		"missing expiry": noExpiry,
		"unknown role":   badRole,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := manager.Authenticate(token)
			require.Error(t, err)
			assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
		})
	}
}

func TestIssueRejectsInvalidRole(t *testing.T) {
	_, _, err := NewTokenManager(testSecret, time.Hour).Issue(Identity{ID: "u-1"})
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		token, err := BearerToken(c.header)
		if c.ok {
			assert.NoError(t, err, c.header)
			assert.Equal(t, c.token, token)
		} else {
			assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err), c.header)
		}
	}
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(Identity{Role: domain.RoleAdmin}, domain.RoleAdmin))
	assert.NoError(t, Authorize(Identity{Role: domain.RoleUser}, domain.RoleUser, domain.RoleStoreOwner))

	err := Authorize(Identity{Role: domain.RoleUser}, domain.RoleAdmin)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = Authorize(Identity{Role: domain.RoleUnknown}, domain.RoleUnknown)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	err = Authorize(Identity{Role: domain.Role(42)}, domain.Role(42))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestHasher(t *testing.T) {
	h := NewHasher(4)
	hash, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, h.Verify(hash, "s3cret-pass"))
	assert.False(t, h.Verify(hash, "wrong-pass"))
	assert.False(t, h.Verify("not-a-hash", "s3cret-pass"))

	other, err := h.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "hashes must be salted")
}
