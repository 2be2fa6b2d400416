package authhandler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"nomina/internal/auth"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return NewHandler("admin@example.com", hash, "test-secret")
}

func postLogin(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, req)
	return rec
}

func TestHandleLoginIssuesToken(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, `{"email":"Admin@Example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("expected a token in the response")
	}

	claims, err := auth.ParseToken("test-secret", envelope.Data.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.Email != "admin@example.com" || claims.Role != auth.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestHandleLoginRejectsWrongPassword(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, `{"email":"admin@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginRejectsUnknownEmail(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, `{"email":"intruder@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginRejectsWhenAdminUnset(t *testing.T) {
	h := NewHandler("", "", "test-secret")

	rec := postLogin(t, h, `{"email":"admin@example.com","password":"correct-horse"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleLoginRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(t)

	rec := postLogin(t, h, `{"email":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
