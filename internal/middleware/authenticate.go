package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/auth"
	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/logging"
)

// Authenticate gates next behind strategy. Authentication failures get a
// uniform 401; anything else is logged and answered with a 500. On success
// the identity is available through auth.IdentityFrom.
func Authenticate(strategy auth.Strategy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := zerolog.Ctx(r.Context())

			identity, err := strategy.Authenticate(r)
			if err != nil {
				if auth.IsAuthError(err) {
					log.Debug().
						Str(logging.FieldStrategy, strategy.Name()).
						Str("reason", auth.Reason(err)).
						Msg("authentication rejected")
					respond.Unauthorized(w, r)
					return
				}
				log.Error().Err(err).Str(logging.FieldStrategy, strategy.Name()).Msg("authentication failed")
				respond.Internal(w, r)
				return
			}

			log.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str(logging.FieldUsername, identity.Username)
			})
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
