package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/jwt-auth-api/internal/models"
)

// Claims is the JWT payload: the serialized user plus the registered claims.
type Claims struct {
	User models.SerializedUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 JWTs with a shared secret.
// Tokens are stateless: nothing is stored and nothing can revoke a token
// before it expires.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager with the provided secret, issuer, and
// default lifetime. An empty issuer leaves "iss" out and skips its check.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a token carrying claim verbatim, with the given subject and an
// expiry of now+ttl.
func (t *TokenManager) Issue(claim models.SerializedUser, subject string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		User: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssueFor issues a token for user with the default lifetime.
func (t *TokenManager) IssueFor(user models.SerializedUser) (string, error) {
	return t.Issue(user, user.Username, t.ttl)
}

// Verify checks signature, algorithm and expiry and returns the embedded
// user claim unchanged. Every failure wraps ErrInvalidToken.
func (t *TokenManager) Verify(tokenString string) (models.SerializedUser, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, t.keyFunc, t.parserOptions()...)
	if err != nil {
		return models.SerializedUser{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return models.SerializedUser{}, ErrInvalidToken
	}
	return claims.User, nil
}

func (t *TokenManager) keyFunc(token *jwt.Token) (any, error) {
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, errors.New("unexpected signing method " + token.Method.Alg())
	}
	return t.secret, nil
}

func (t *TokenManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}
	return opts
}
