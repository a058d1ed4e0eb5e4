package models

import (
	"github.com/heoquay/backend/internal/domain/identity"
)

// UserModel is the persistence model for a desk account.
// UsernameKey holds the normalized name and carries the unique index.
type UserModel struct {
	BaseModel
	Username     string        `gorm:"type:varchar(100);not null"`
	UsernameKey  string        `gorm:"type:varchar(100);not null;uniqueIndex:idx_users_username_key"`
	PasswordHash string        `gorm:"type:varchar(255);not null"`
	Role         identity.Role `gorm:"type:varchar(20);not null;default:'Shipper'"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		ID:           m.ID,
		Username:     m.Username,
		PasswordHash: m.PasswordHash,
		Role:         m.Role,
		CreatedAt:    m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.ID = u.ID
	m.CreatedAt = u.CreatedAt
	m.UpdatedAt = u.CreatedAt
	m.Username = u.Username
	m.UsernameKey = identity.NormalizeUsername(u.Username)
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role
}

// UserModelFromDomain creates a new persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
