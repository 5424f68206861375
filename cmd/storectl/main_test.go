package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/store-rating/internal/auth"
	"github.com/Clark-Hu/store-rating/internal/domain"
)

func writeEnvelope(w http.ResponseWriter, status int, ok bool, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": ok, "message": message, "data": data})
}

func newAPI(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	tm := auth.NewTokenManager("storectl-test-secret-0123456789", time.Hour)
	token, _, err := tm.Issue(auth.Identity{ID: "u-1", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "Login successful", map[string]interface{}{
			"token": token,
			"user":  map[string]string{"id": "u-1", "email": "alice@example.com", "role": "user"},
		})
	})
	mux.HandleFunc("/api/ratings/stores", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]interface{}{
			"stores": []map[string]interface{}{
				{"id": "s-1", "name": "Corner Cafe", "category": "Food", "isActive": true, "averageRating": 3.5, "totalRatings": 2},
				{"id": "s-2", "name": "Book Nook", "category": "Books", "isActive": true, "averageRating": 4.8, "totalRatings": 5},
				{"id": "s-3", "name": "Bike Hub", "category": "Sports", "isActive": true, "averageRating": 4.1, "totalRatings": 1},
			},
		})
	})
	mux.HandleFunc("/api/ratings/my-ratings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			writeEnvelope(w, http.StatusUnauthorized, false, "Access token required", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", map[string]interface{}{"ratings": []interface{}{}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, token
}

func envFor(srv *httptest.Server, sessionPath string) func(string) string {
	return func(key string) string {
		switch key {
		case "STORECTL_API":
			return srv.URL
		case "STORECTL_SESSION":
			return sessionPath
		}
		return ""
	}
}

func TestStoresSortsAndFilters(t *testing.T) {
	srv, _ := newAPI(t)
	env := envFor(srv, filepath.Join(t.TempDir(), "session"))

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"stores", "-sort", "rating"}, &out, env))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Book Nook")
	assert.Contains(t, lines[2], "Bike Hub")
	assert.Contains(t, lines[3], "Corner Cafe")

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"stores", "-search", "book"}, &out, env))
	assert.Contains(t, out.String(), "Book Nook")
	assert.NotContains(t, out.String(), "Corner Cafe")

	err := run(context.Background(), []string{"stores", "-sort", "price"}, &out, env)
	assert.Error(t, err)
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	srv, _ := newAPI(t)
	env := envFor(srv, filepath.Join(t.TempDir(), "session"))
	ctx := context.Background()

	var out bytes.Buffer
	err := run(ctx, []string{"my-ratings"}, &out, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Access token required")

	require.NoError(t, run(ctx, []string{"login", "-email", "alice@example.com", "-password", "secret123"}, &out, env))
	assert.Contains(t, out.String(), "signed in as alice@example.com")

	out.Reset()
	require.NoError(t, run(ctx, []string{"my-ratings"}, &out, env))
	assert.Contains(t, out.String(), "STORE")

	require.NoError(t, run(ctx, []string{"logout"}, &out, env))
	assert.Error(t, run(ctx, []string{"my-ratings"}, &out, env))
}

func TestUnknownCommand(t *testing.T) {
	srv, _ := newAPI(t)
	env := envFor(srv, filepath.Join(t.TempDir(), "session"))

	err := run(context.Background(), []string{"frobnicate"}, &bytes.Buffer{}, env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "frobnicate"`)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), nil, &out, env))
	assert.Contains(t, out.String(), "usage: storectl")
}
