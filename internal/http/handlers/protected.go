package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hongminglow/jwt-auth-api/internal/auth"
	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/middleware"
	"github.com/hongminglow/jwt-auth-api/internal/models/dto"
)

// ProtectedHandler serves the sample resource that requires a bearer token.
type ProtectedHandler struct {
	bearer auth.Strategy
}

// NewProtectedHandler constructs the handler.
func NewProtectedHandler(bearer auth.Strategy) *ProtectedHandler {
	return &ProtectedHandler{bearer: bearer}
}

// Register attaches the protected route to r.
func (h *ProtectedHandler) Register(r chi.Router) {
	r.With(middleware.Authenticate(h.bearer)).Get("/api/protected", h.handle)
}

func (h *ProtectedHandler) handle(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, dto.ProtectedResponse{Data: "rosebud"})
}
