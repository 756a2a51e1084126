package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/hongminglow/jwt-auth-api/internal/models"
	"github.com/hongminglow/jwt-auth-api/internal/models/dto"
	"github.com/hongminglow/jwt-auth-api/internal/password"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
)

const (
	maxCredentialBody = 1 << 20
	maxFormMemory     = 32 << 10
)

// UserFinder is the slice of the credential store the local strategy reads.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
}

// LocalStrategy checks a username and password against the credential store.
type LocalStrategy struct {
	users  UserFinder
	hasher password.Hasher
}

// NewLocalStrategy creates the username/password strategy.
func NewLocalStrategy(users UserFinder, hasher password.Hasher) *LocalStrategy {
	return &LocalStrategy{users: users, hasher: hasher}
}

func (l *LocalStrategy) Name() string { return "local" }

// Authenticate never distinguishes an unknown user from a wrong password.
func (l *LocalStrategy) Authenticate(r *http.Request) (models.SerializedUser, error) {
	creds, err := readCredentials(r)
	if err != nil || creds.Username == "" || creds.Password == "" {
		return models.SerializedUser{}, ErrMissingCredentials
	}
	// Registration caps passwords at what bcrypt reads; anything longer could
	// only match on its prefix.
	if len(creds.Password) > password.MaxBytes {
		return models.SerializedUser{}, ErrInvalidCredentials
	}

	user, err := l.users.FindByUsername(r.Context(), creds.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.SerializedUser{}, ErrInvalidCredentials
		}
		return models.SerializedUser{}, fmt.Errorf("look up user: %w", err)
	}

	ok, err := l.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return models.SerializedUser{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return models.SerializedUser{}, ErrInvalidCredentials
	}
	return user.Serialize(), nil
}

// readCredentials accepts HTTP Basic auth, a form body, or a JSON body, in
// that order of precedence. Non-string JSON values read as absent.
func readCredentials(r *http.Request) (dto.Credentials, error) {
	if username, pass, ok := r.BasicAuth(); ok {
		return dto.Credentials{Username: username, Password: pass}, nil
	}

	if r.Body == nil {
		return dto.Credentials{}, nil
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxCredentialBody)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		err := r.ParseMultipartForm(maxFormMemory)
		// Middleware passes a copy of the request here, so the server's own
		// cleanup never sees this form.
		if r.MultipartForm != nil {
			defer r.MultipartForm.RemoveAll()
		}
		if err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return dto.Credentials{}, err
		}
		return dto.Credentials{
			Username: r.PostFormValue("username"),
			Password: r.PostFormValue("password"),
		}, nil
	}

	var body struct {
		Username any `json:"username"`
		Password any `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return dto.Credentials{}, nil
		}
		return dto.Credentials{}, err
	}
	username, _ := body.Username.(string)
	pass, _ := body.Password.(string)
	return dto.Credentials{Username: username, Password: pass}, nil
}
