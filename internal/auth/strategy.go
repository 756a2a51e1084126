package auth

import (
	"context"
	"net/http"

	"github.com/hongminglow/jwt-auth-api/internal/models"
)

// Strategy authenticates a request and yields the caller's identity.
// Implementations return one of the Err* sentinels for an authentication
// failure and any other error for an internal one.
type Strategy interface {
	Name() string
	Authenticate(r *http.Request) (models.SerializedUser, error)
}

type identityKey struct{}

// WithIdentity stores an authenticated identity in ctx.
func WithIdentity(ctx context.Context, user models.SerializedUser) context.Context {
	return context.WithValue(ctx, identityKey{}, user)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (models.SerializedUser, bool) {
	user, ok := ctx.Value(identityKey{}).(models.SerializedUser)
	return user, ok
}
