package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
)

// Recover turns a handler panic into a logged, generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zerolog.Ctx(r.Context()).Error().Interface("panic", rec).Msg("handler panicked")
			respond.Internal(w, r)
		}()
		next.ServeHTTP(w, r)
	})
}
