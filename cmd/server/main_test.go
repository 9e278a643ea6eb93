package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expense-api/internal/apperr"
	"expense-api/internal/auth"
	"expense-api/internal/config"
	"expense-api/internal/expenses"
	"expense-api/internal/handlers"
	"expense-api/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *storage.DB, *auth.Service) {
	t.Helper()
	db, err := storage.NewDB(":memory:")
	require.NoError(t, err, "failed to create database")
	t.Cleanup(func() { db.Close() })

	issuer, err := auth.NewTokenIssuer(testSecret, 0)
	require.NoError(t, err)
	authService := auth.NewService(db, issuer)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := handlers.NewHandlers(authService, expenses.NewService(db, cfg.EnforceOwnership), db, logger)
	return setupRouter(h, cfg, logger), db, authService
}

func TestSetupRouter(t *testing.T) {
	cfg := &config.Config{EnforceOwnership: true}
	mux, _, _ := newTestRouter(t, cfg)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"Health is public", "GET", "/health", http.StatusOK},
		{"List Expenses requires auth", "GET", "/expenses", http.StatusUnauthorized},
		{"Create Expense requires auth", "POST", "/expenses", http.StatusUnauthorized},
		{"Summary requires auth", "GET", "/expenses/summary", http.StatusUnauthorized},
		{"Update Expense requires auth", "PUT", "/expenses/1", http.StatusUnauthorized},
		{"Delete Expense requires auth", "DELETE", "/expenses/1", http.StatusUnauthorized},
		{"Register validates body", "POST", "/register", http.StatusBadRequest},
		{"Login validates body", "POST", "/login", http.StatusBadRequest},
		{"Unknown path", "GET", "/nope", http.StatusNotFound},
		{"Wrong method", "PATCH", "/expenses", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, "%s %s returned unexpected status", tt.method, tt.path)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		})
	}
}

func TestSetupRouterRateLimitsAuth(t *testing.T) {
	cfg := &config.Config{EnforceOwnership: true, RateLimitEnabled: true, AuthRateLimitRPS: 1, AuthRateBurst: 2}
	mux, _, _ := newTestRouter(t, cfg)

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"a","password":"b"}`))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "health is not rate limited")
}

func TestEnsureAdminRejectsLongPassword(t *testing.T) {
	_, db, authService := newTestRouter(t, &config.Config{})
	ctx := context.Background()

	err := ensureAdmin(ctx, db, authService, "admin", strings.Repeat("a", 73))
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.KindOf(err))

	count, err := db.UserCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestEnsureAdmin(t *testing.T) {
	_, db, authService := newTestRouter(t, &config.Config{})
	ctx := context.Background()

	require.NoError(t, ensureAdmin(ctx, db, authService, "", ""))
	count, err := db.UserCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "no admin without credentials")

	require.NoError(t, ensureAdmin(ctx, db, authService, "admin", "adminpass"))
	_, err = authService.Login(ctx, "admin", "adminpass")
	assert.NoError(t, err)

	// Second start with a populated database is a no-op.
	require.NoError(t, ensureAdmin(ctx, db, authService, "admin", "adminpass"))
	count, err = db.UserCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
