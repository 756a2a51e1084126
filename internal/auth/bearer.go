package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hongminglow/jwt-auth-api/internal/models"
)

const bearerScheme = "Bearer"

// TokenVerifier verifies a signed token and returns its user claim.
type TokenVerifier interface {
	Verify(token string) (models.SerializedUser, error)
}

// BearerStrategy authenticates requests by the token in the Authorization
// header. It never touches the credential store: the token is self-contained.
type BearerStrategy struct {
	tokens TokenVerifier
}

// NewBearerStrategy creates the bearer-token strategy.
func NewBearerStrategy(tokens TokenVerifier) *BearerStrategy {
	return &BearerStrategy{tokens: tokens}
}

func (b *BearerStrategy) Name() string { return "bearer" }

func (b *BearerStrategy) Authenticate(r *http.Request) (models.SerializedUser, error) {
	token, ok := bearerToken(r)
	if !ok {
		return models.SerializedUser{}, ErrMissingCredentials
	}
	user, err := b.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return models.SerializedUser{}, err
		}
		return models.SerializedUser{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return user, nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively; any other scheme counts as absent.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
