package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/auth"
	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/middleware"
	"github.com/hongminglow/jwt-auth-api/internal/models"
	"github.com/hongminglow/jwt-auth-api/internal/models/dto"
)

// TokenIssuer signs a token for an authenticated identity.
type TokenIssuer interface {
	IssueFor(user models.SerializedUser) (string, error)
}

// AuthHandler owns the login and refresh endpoints. Both only read the
// credential store (through the strategies) and hand out tokens.
type AuthHandler struct {
	tokens TokenIssuer
	local  auth.Strategy
	bearer auth.Strategy
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(tokens TokenIssuer, local, bearer auth.Strategy) *AuthHandler {
	return &AuthHandler{tokens: tokens, local: local, bearer: bearer}
}

// Register attaches auth routes to r, each behind its strategy.
func (h *AuthHandler) Register(r chi.Router) {
	r.With(middleware.Authenticate(h.local)).Post("/login", h.handleLogin)
	r.With(middleware.Authenticate(h.bearer)).Post("/refresh", h.handleRefresh)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, "login")
}

// handleRefresh re-signs the claim carried by the incoming token. The store
// is not consulted, so profile changes show up only after a fresh login.
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	h.issue(w, r, "refresh")
}

func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, op string) {
	log := zerolog.Ctx(r.Context())
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		log.Error().Str("operation", op).Msg("no identity after authentication")
		respond.Internal(w, r)
		return
	}

	token, err := h.tokens.IssueFor(identity)
	if err != nil {
		log.Error().Err(err).Str("operation", op).Msg("issue token")
		respond.Internal(w, r)
		return
	}
	log.Info().Str("operation", op).Msg("token issued")
	respond.JSON(w, r, http.StatusOK, dto.AuthTokenResponse{AuthToken: token})
}
