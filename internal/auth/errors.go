package auth

import "errors"

// Authentication failures. All of them map to the same unauthenticated
// response; they stay distinct so the reason can be logged.
var (
	// ErrMissingCredentials means the request carried nothing to authenticate.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken means a bearer token was present but failed verification.
	ErrInvalidToken = errors.New("invalid token")
)

// IsAuthError reports whether err is an authentication failure as opposed to
// an unexpected internal error.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken)
}

// Reason returns a short log-friendly label for an authentication failure.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "internal"
	}
}
