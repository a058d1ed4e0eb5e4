package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/domain/identity"
)

// LoginInput contains the credentials forwarded to the webhook API
type LoginInput struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CreateUserInput contains input for creating a user
type CreateUserInput struct {
	UserName string `json:"userName" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// UserDTO is a user as returned to the desk. The password hash is never included.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"userName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserDTO converts a domain user
func ToUserDTO(u *identity.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		UserName:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
