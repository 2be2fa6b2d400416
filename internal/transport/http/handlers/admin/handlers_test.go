package adminhandler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"nomina/internal/auth"
	cryptoutil "nomina/internal/platform/crypto"
	"nomina/internal/platform/jobs"
	"nomina/internal/transport/http/middleware"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	crypto, err := cryptoutil.New("")
	if err != nil {
		t.Fatalf("crypto init: %v", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.Auth(testSecret))
	router.Route("/api/v1", func(r chi.Router) {
		NewHandler(jobs.New(nil, crypto)).RegisterRoutes(r)
	})
	return router
}

func backfillRequest(t *testing.T, router http.Handler, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/encryption/backfill", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBackfillWithoutEncryptionKey(t *testing.T) {
	router := newTestRouter(t)
	token, err := auth.GenerateToken(testSecret, auth.Claims{Email: "admin@example.com", Role: auth.RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	rec := backfillRequest(t, router, token)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without encryption key, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBackfillRequiresAdmin(t *testing.T) {
	router := newTestRouter(t)

	rec := backfillRequest(t, router, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	viewer, err := auth.GenerateToken(testSecret, auth.Claims{Email: "viewer@example.com", Role: "viewer"}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	rec = backfillRequest(t, router, viewer)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}
}
