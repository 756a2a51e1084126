package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/auth"
	"github.com/hongminglow/jwt-auth-api/internal/config"
	"github.com/hongminglow/jwt-auth-api/internal/http/handlers"
	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/middleware"
	"github.com/hongminglow/jwt-auth-api/internal/password"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
	"github.com/hongminglow/jwt-auth-api/internal/validation"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.UserStore, log zerolog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewHandler(cfg, store, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return &Server{inner: httpServer}
}

// NewHandler builds the full route tree. Every dependency is passed in; the
// handler holds no state of its own beyond what it is given.
func NewHandler(cfg config.Config, store storage.UserStore, log zerolog.Logger) http.Handler {
	hasher := password.NewBcryptHasher(password.WithCost(cfg.BcryptCost))
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	local := auth.NewLocalStrategy(store, hasher)
	bearer := auth.NewBearerStrategy(tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover)
	r.Use(middleware.CORS(cfg.ClientOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Error(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	handlers.NewHealthHandler(time.Now(), store).Register(r)
	handlers.NewProtectedHandler(bearer).Register(r)
	r.Route("/api/users", handlers.NewUsersHandler(store, validation.NewRegistration(store), hasher).Register)
	r.Route("/api/auth", handlers.NewAuthHandler(tokens, local, bearer).Register)

	return r
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
