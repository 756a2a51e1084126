// Package validation checks signup payloads before an account is created.
package validation

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hongminglow/jwt-auth-api/internal/password"
)

// Field bounds. bcrypt reads at most 72 bytes, so the password ceiling keeps
// every accepted character significant.
const (
	UsernameMin = 5
	UsernameMax = 72
	PasswordMin = 10
	PasswordMax = password.MaxBytes
)

const reasonValidation = "ValidationError"

// Error is a client-correctable problem with one field of the payload.
type Error struct {
	Code     int    `json:"code"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Location, e.Message)
}

func fieldError(location, message string) *Error {
	return &Error{
		Code:     http.StatusUnprocessableEntity,
		Reason:   reasonValidation,
		Message:  message,
		Location: location,
	}
}

// UsernameTaken is the error for a username that already exists.
func UsernameTaken() *Error {
	return fieldError("username", "Username already taken")
}

// NewUser is a payload that passed every check. Names are already trimmed.
type NewUser struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
}

// UsernameCounter is the slice of the credential store the validator reads.
type UsernameCounter interface {
	CountByUsername(ctx context.Context, username string) (int, error)
}

// Registration runs the signup checks in order and stops at the first failure.
type Registration struct {
	users UsernameCounter
}

// NewRegistration creates a validator that checks uniqueness against users.
func NewRegistration(users UsernameCounter) *Registration {
	return &Registration{users: users}
}

// Validate returns a *Error for a rejected payload, a different error if the
// store lookup fails, or the accepted user.
func (v *Registration) Validate(ctx context.Context, payload map[string]any) (NewUser, error) {
	fields, verr := CheckFields(payload)
	if verr != nil {
		return NewUser{}, verr
	}

	count, err := v.users.CountByUsername(ctx, fields.Username)
	if err != nil {
		return NewUser{}, fmt.Errorf("check username uniqueness: %w", err)
	}
	if count > 0 {
		return NewUser{}, UsernameTaken()
	}
	return fields, nil
}

// CheckFields runs the store-independent checks: presence, type, surrounding
// whitespace and length.
func CheckFields(payload map[string]any) (NewUser, *Error) {
	for _, field := range []string{"username", "password"} {
		if _, ok := payload[field]; !ok {
			return NewUser{}, fieldError(field, "Missing field")
		}
	}

	for _, field := range []string{"username", "password", "firstName", "lastName"} {
		if value, ok := payload[field]; ok {
			if _, isString := value.(string); !isString {
				return NewUser{}, fieldError(field, "Incorrect field type: expected string")
			}
		}
	}

	username := payload["username"].(string)
	pass := payload["password"].(string)

	// Credentials are rejected, never trimmed.
	for _, f := range []struct{ name, value string }{{"username", username}, {"password", pass}} {
		if trim(f.value) != f.value {
			return NewUser{}, fieldError(f.name, "Cannot start or end with whitespace")
		}
	}

	if verr := checkLength(username, pass); verr != nil {
		return NewUser{}, verr
	}

	return NewUser{
		Username:  username,
		Password:  pass,
		FirstName: trimmedString(payload, "firstName"),
		LastName:  trimmedString(payload, "lastName"),
	}, nil
}

// checkLength reports any too-short field before any too-long one.
func checkLength(username, pass string) *Error {
	sized := []struct {
		name     string
		value    string
		min, max int
	}{
		{"username", username, UsernameMin, UsernameMax},
		{"password", pass, PasswordMin, PasswordMax},
	}
	for _, f := range sized {
		if utf8.RuneCountInString(f.value) < f.min {
			return fieldError(f.name, fmt.Sprintf("Must be at least %d characters long", f.min))
		}
	}
	for _, f := range sized {
		if utf8.RuneCountInString(f.value) > f.max {
			return fieldError(f.name, fmt.Sprintf("Must be at most %d characters long", f.max))
		}
	}
	// Multi-byte passwords can fit the character limit and still overflow bcrypt.
	if len(pass) > password.MaxBytes {
		return fieldError("password", fmt.Sprintf("Must be at most %d characters long", PasswordMax))
	}
	return nil
}

func trimmedString(payload map[string]any, field string) string {
	s, _ := payload[field].(string)
	return trim(s)
}

// trim strips the ECMAScript whitespace set: unlike unicode.IsSpace it
// includes U+FEFF and excludes U+0085, so clients trimming in a browser
// agree with the server.
func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
