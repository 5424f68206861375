package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/store-rating/internal/auth"
	"github.com/Clark-Hu/store-rating/internal/browse"
	"github.com/Clark-Hu/store-rating/internal/domain"
	"github.com/Clark-Hu/store-rating/internal/logging"
)

var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func issueToken(t *testing.T, role domain.Role) string {
	t.Helper()
	tm := auth.NewTokenManager("client-test-secret-0123456789", time.Hour).WithClock(func() time.Time { return issuedAt })
	token, _, err := tm.Issue(auth.Identity{ID: "u-1", Name: "Alice", Email: "alice@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func writeEnvelope(w http.ResponseWriter, status int, ok bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": ok, "message": message, "data": data})
}

func newTestClient(t *testing.T, handler http.Handler, session *Session) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 2*time.Second, session, logging.Discard())
	require.NoError(t, err)
	return c
}

func TestLoginPersistsSession(t *testing.T) {
	token := issueToken(t, domain.RoleStoreOwner)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) {
			return
		}
		if body["password"] != "secret123" {
			writeEnvelope(w, http.StatusUnauthorized, false, "Invalid credentials", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "Login successful", map[string]interface{}{
			"token": token,
			"user":  map[string]string{"id": "u-1", "name": "Alice", "role": "store_owner"},
		})
	})
	mux.HandleFunc("/api/user/profile", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, "Profile retrieved successfully", map[string]interface{}{
			"user": map[string]string{"id": "u-1", "name": "Alice"},
		})
	})

	path := filepath.Join(t.TempDir(), "nested", "session")
	c := newTestClient(t, mux, NewSession(path))
	ctx := context.Background()

	_, err := c.Login(ctx, "alice@example.com", "wrong")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Invalid credentials", apiErr.Message)

	user, err := c.Login(ctx, "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, token, c.Session().Token())

	id, ok := c.Session().Identity()
	require.True(t, ok)
	assert.Equal(t, domain.RoleStoreOwner, id.Role)
	assert.Equal(t, issuedAt.Add(time.Hour), c.Session().ExpiresAt())

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alice", profile.Name)

	restored, err := LoadSession(path, issuedAt.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, token, restored.Token())

	require.NoError(t, c.Logout())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	_, ok = c.Session().Identity()
	assert.False(t, ok)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	session := NewSession(path)
	require.NoError(t, session.Save(issueToken(t, domain.RoleUser)))

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Token expired", nil)
	}), session)

	_, err := c.MyRatings(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Token expired", apiErr.Message)
	assert.Empty(t, session.Token())
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRateReportsCreation(t *testing.T) {
	calls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ratings/rate", r.URL.Path)
		calls++
		status, msg := http.StatusOK, "Rating updated successfully"
		if calls == 1 {
			status, msg = http.StatusCreated, "Rating submitted successfully"
		}
		writeEnvelope(w, status, true, msg, map[string]interface{}{"rating": map[string]interface{}{"id": "r-1", "rating": 4}})
	}), nil)

	rating, created, err := c.Rate(context.Background(), "s-1", 4, "Good")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 4, rating.Rating)

	_, created, err = c.Rate(context.Background(), "s-1", 2, "")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAdminStoresForwardsQuery(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		writeEnvelope(w, http.StatusOK, true, "Stores retrieved successfully", map[string]interface{}{
			"stores": []map[string]interface{}{{"id": "s-1", "name": "Bakery", "averageRating": 4.5}},
			"count":  1,
		})
	}), nil)

	stores, err := c.AdminStores(context.Background(), map[string][]string{"status": {"active"}})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, 4.5, stores[0].AverageRating)
}

func TestLoadSession(t *testing.T) {
	dir := t.TempDir()

	missing, err := LoadSession(filepath.Join(dir, "absent"), issuedAt)
	require.NoError(t, err)
	assert.Empty(t, missing.Token())

	expiredPath := filepath.Join(dir, "expired")
	require.NoError(t, os.WriteFile(expiredPath, []byte(issueToken(t, domain.RoleUser)), 0o600))
	expired, err := LoadSession(expiredPath, issuedAt.Add(61*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, expired.Token())
	_, statErr := os.Stat(expiredPath)
	assert.True(t, os.IsNotExist(statErr))

	validPath := filepath.Join(dir, "valid")
	require.NoError(t, os.WriteFile(validPath, []byte(issueToken(t, domain.RoleUser)), 0o600))
	valid, err := LoadSession(validPath, issuedAt.Add(59*time.Minute))
	require.NoError(t, err)
	assert.NotEmpty(t, valid.Token())
	assert.Equal(t, issuedAt.Add(time.Hour), valid.ExpiresAt())
	assert.Equal(t, time.UTC, valid.ExpiresAt().Location())

	garbagePath := filepath.Join(dir, "garbage")
	require.NoError(t, os.WriteFile(garbagePath, []byte("not a token"), 0o600))
	garbage, err := LoadSession(garbagePath, issuedAt)
	require.NoError(t, err)
	assert.Empty(t, garbage.Token())

	assert.Error(t, NewSession("").Save("not a token"))
}

func TestStoreFieldsFeedBrowse(t *testing.T) {
	cat := "Food"
	stores := []Store{
		{Name: "Zed", IsActive: true, AverageRating: 2},
		{Name: "Alpha", Category: &cat, IsActive: true, AverageRating: 4, Owner: &Person{Name: "Bob"}},
		{Name: "Closed", IsActive: false},
	}
	got := browse.Stores(stores, browse.StoreQuery{Status: browse.StatusActive, Sort: browse.SortRating}, Store.Fields)
	require.Len(t, got, 2)
	assert.Equal(t, "Alpha", got[0].Name)

	got = browse.Stores(stores, browse.StoreQuery{Search: "bob"}, Store.Fields)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Name)
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080", time.Second, nil, nil)
	assert.Error(t, err)
}

func FuzzDecodeEnvelope(f *testing.F) {
	f.Add(200, []byte(`{"success":true,"message":"ok","data":{"stores":[]}}`))
	f.Add(400, []byte(`{"success":false,"message":"Rating must be between 1 and 5","data":null}`))
	f.Add(502, []byte(`<html>bad gateway</html>`))
	f.Add(200, []byte(`{"success":true,"data":"oops"}`))

	f.Fuzz(func(t *testing.T, status int, raw []byte) {
		var out struct {
			Stores []Store `json:"stores"`
		}
		err := decodeEnvelope(status, raw, &out)
		var apiErr *APIError
		if status >= http.StatusBadRequest && err != nil && !errors.As(err, &apiErr) {
			t.Fatalf("status %d produced non-API error %v", status, err)
		}
	})
}
