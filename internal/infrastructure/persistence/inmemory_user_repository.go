package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/domain/identity"
	"github.com/heoquay/backend/internal/domain/shared"
)

// InMemoryUserRepository keeps users in process memory. It is the default
// store and loses its contents on restart.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*identity.User
}

// NewInMemoryUserRepository creates an empty in-memory user store
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uuid.UUID]*identity.User)}
}

// Create stores a copy of user
func (r *InMemoryUserRepository) Create(_ context.Context, user *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := identity.NormalizeUsername(user.Username)
	for _, u := range r.users {
		if identity.NormalizeUsername(u.Username) == key {
			return shared.ErrAlreadyExists
		}
	}
	if _, ok := r.users[user.ID]; ok {
		return shared.ErrAlreadyExists
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

// Delete removes a user by ID
func (r *InMemoryUserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

// FindByID finds a user by ID
func (r *InMemoryUserRepository) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	found := *u
	return &found, nil
}

// FindByUsername finds a user by username, ignoring case
func (r *InMemoryUserRepository) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := identity.NormalizeUsername(username)
	for _, u := range r.users {
		if identity.NormalizeUsername(u.Username) == key {
			found := *u
			return &found, nil
		}
	}
	return nil, shared.ErrNotFound
}

// FindAll returns every user ordered by creation time
func (r *InMemoryUserRepository) FindAll(_ context.Context) ([]*identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*identity.User, 0, len(r.users))
	for _, u := range r.users {
		found := *u
		users = append(users, &found)
	}
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return identity.NormalizeUsername(users[i].Username) < identity.NormalizeUsername(users[j].Username)
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users, nil
}

// ExistsByUsername checks if a username already exists
func (r *InMemoryUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if err == shared.ErrNotFound {
		return false, nil
	}
	return false, err
}

var _ identity.UserRepository = (*InMemoryUserRepository)(nil)
