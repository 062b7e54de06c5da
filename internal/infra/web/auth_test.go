//go:build !integration

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	auth := NewAuthManager("test-secret", time.Minute)

	t.Run("should pass a freshly minted token", func(t *testing.T) {
		token, err := auth.Mint()
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		auth.Middleware(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, but got %d", rec.Code)
		}
	})

	t.Run("should reject a missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		auth.Middleware(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, but got %d", rec.Code)
		}
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		other := NewAuthManager("other-secret", time.Minute)
		token, err := other.Mint()
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		auth.Middleware(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, but got %d", rec.Code)
		}
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		expired := NewAuthManager("test-secret", -time.Minute)
		token, err := expired.Mint()
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()

		auth.Middleware(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, but got %d", rec.Code)
		}
	})

	t.Run("should reject everything without a configured secret", func(t *testing.T) {
		open := NewAuthManager("", time.Minute)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		open.Middleware(okHandler()).ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("expected 403, but got %d", rec.Code)
		}
	})
}
