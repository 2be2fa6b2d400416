package authhandler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"nomina/internal/auth"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

// Handler authenticates the single administrator account configured
// through the environment.
type Handler struct {
	AdminEmail string
	AdminHash  string
	Secret     string
}

func NewHandler(adminEmail, adminHash, secret string) *Handler {
	return &Handler{AdminEmail: adminEmail, AdminHash: adminHash, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	if h.AdminEmail == "" || h.AdminHash == "" {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if !strings.EqualFold(strings.TrimSpace(payload.Email), h.AdminEmail) {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(h.AdminHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{Email: h.AdminEmail, Role: auth.RoleAdmin}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]string{"email": h.AdminEmail, "role": auth.RoleAdmin},
	}, middleware.GetRequestID(r.Context()))
}
