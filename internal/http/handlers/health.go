package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/models/dto"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler returns uptime and store status, plus the bare API ping.
type HealthHandler struct {
	startedAt time.Time
	store     Pinger
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, store Pinger) *HealthHandler {
	return &HealthHandler{startedAt: startedAt, store: store}
}

// Register wires the handler into r.
func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/api", h.handlePing)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := h.store.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("store ping failed")
		status, code = "degraded", http.StatusServiceUnavailable
	}
	respond.JSON(w, r, code, map[string]string{
		"status": status,
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}

func (h *HealthHandler) handlePing(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, dto.MessageResponse{Message: "server active"})
}
