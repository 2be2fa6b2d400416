package adminhandler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nomina/internal/auth"
	"nomina/internal/domain/directory"
	"nomina/internal/platform/jobs"
	"nomina/internal/transport/http/api"
	"nomina/internal/transport/http/middleware"
)

type Handler struct {
	Jobs *jobs.Service
}

func NewHandler(jobService *jobs.Service) *Handler {
	return &Handler{Jobs: jobService}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(auth.RoleAdmin))
		r.Post("/encryption/backfill", h.handleEncryptionBackfill)
	})
}

// handleEncryptionBackfill encrypts plaintext salaries on demand instead
// of waiting for the scheduled sweep.
func (h *Handler) handleEncryptionBackfill(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUser(r.Context()); !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	details, err := h.Jobs.EncryptionBackfill(r.Context())
	if err != nil {
		if errors.Is(err, directory.ErrEncryptionNotConfigured) {
			api.Fail(w, http.StatusServiceUnavailable, "encryption_not_configured", "no data encryption key is configured", middleware.GetRequestID(r.Context()))
			return
		}
		log.Printf("encryption backfill failed: %v", err)
		api.Fail(w, http.StatusInternalServerError, "backfill_failed", "failed to backfill salary encryption", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, details, middleware.GetRequestID(r.Context()))
}
