package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/jwt-auth-api/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserStore captures persistence operations needed by the auth core.
// Username matching is exact and case-sensitive.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	CountByUsername(ctx context.Context, username string) (int, error)
	Ping(ctx context.Context) error
	Close()
}
