package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hongminglow/jwt-auth-api/internal/http/respond"
	"github.com/hongminglow/jwt-auth-api/internal/models"
	"github.com/hongminglow/jwt-auth-api/internal/password"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
	"github.com/hongminglow/jwt-auth-api/internal/validation"
)

const maxBodyBytes = 1 << 20

// UserCreator is the write side of the credential store.
type UserCreator interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
}

// UsersHandler owns account registration.
type UsersHandler struct {
	users     UserCreator
	validator *validation.Registration
	hasher    password.Hasher
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users UserCreator, validator *validation.Registration, hasher password.Hasher) *UsersHandler {
	return &UsersHandler{users: users, validator: validator, hasher: hasher}
}

// Register attaches user routes to r.
func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/", h.handleCreate)
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())

	payload, err := decodePayload(w, r)
	if err != nil {
		log.Debug().Err(err).Msg("malformed registration body")
		respond.Error(w, r, http.StatusBadRequest, "Malformed request body")
		return
	}

	fields, err := h.validator.Validate(r.Context(), payload)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	hash, err := h.hasher.Hash(fields.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.users.CreateUser(r.Context(), models.User{
		Username:     fields.Username,
		PasswordHash: hash,
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
	})
	if err != nil {
		// The uniqueness check above is best-effort; the store's constraint
		// catches a concurrent registration of the same name.
		if errors.Is(err, storage.ErrAlreadyExists) {
			err = validation.UsernameTaken()
		}
		h.fail(w, r, err)
		return
	}

	log.Info().Str("username", created.Username).Msg("user registered")
	respond.JSON(w, r, http.StatusCreated, created.Serialize())
}

func (h *UsersHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respond.JSON(w, r, verr.Code, verr)
		return
	}
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("register user")
	respond.Internal(w, r)
}

// decodePayload reads a JSON object or a form body into a generic map so the
// validator can see which fields are present and what types they carry.
// An empty body is an empty payload.
func decodePayload(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
		payload := make(map[string]any, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				payload[key] = values[0]
			}
		}
		return payload, nil
	}

	payload := map[string]any{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return payload, nil
}
