package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence.
// Usernames are unique case-insensitively.
type UserRepository interface {
	// Create stores a new user, failing with shared.ErrAlreadyExists on a duplicate name
	Create(ctx context.Context, user *User) error

	// Delete removes a user, failing with shared.ErrNotFound when absent
	Delete(ctx context.Context, id uuid.UUID) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindAll returns every user ordered by creation time
	FindAll(ctx context.Context) ([]*User, error)

	// ExistsByUsername checks if a username already exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
