package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hongminglow/jwt-auth-api/internal/models"
	"github.com/hongminglow/jwt-auth-api/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store keeps users in process memory. It is meant for tests and local runs
// with STORAGE_DRIVER=memory; nothing survives a restart.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.User
	now    func() time.Time
}

// NewUserStore returns an empty Store.
func NewUserStore() *Store {
	return &Store{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

// CreateUser inserts a user, enforcing username uniqueness under the lock.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = s.now().UTC()
	s.users[user.Username] = user
	return user, nil
}

// FindByUsername fetches a user by exact username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

// CountByUsername reports how many users carry the username (0 or 1).
func (s *Store) CountByUsername(ctx context.Context, username string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.users[username]; ok {
		return 1, nil
	}
	return 0, nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (s *Store) Close() {}
