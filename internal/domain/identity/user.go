package identity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is what a desk user is allowed to do
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleShipper Role = "Shipper"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

const maxUsernameLength = 100

// ParseRole accepts a role name case-insensitively; empty defaults to Shipper
func ParseRole(raw string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return RoleShipper, nil
	case "admin":
		return RoleAdmin, nil
	case "shipper":
		return RoleShipper, nil
	default:
		return "", shared.InvalidInput("role phải là Admin hoặc Shipper")
	}
}

// User is a locally managed desk account
type User struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// NewUser creates a user with a hashed password
func NewUser(username, password string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if role == "" {
		role = RoleShipper
	}
	if role != RoleAdmin && role != RoleShipper {
		return nil, shared.InvalidInput("role phải là Admin hoặc Shipper")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Không thể mã hóa mật khẩu")
	}

	return &User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Không thể mã hóa mật khẩu")
	}
	u.PasswordHash = hash
	return nil
}

// VerifyPassword checks if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user has the Admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeUsername is the form usernames are compared in
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validateUsername(username string) error {
	if username == "" {
		return shared.InvalidInput("Thiếu userName")
	}
	if utf8.RuneCountInString(username) > maxUsernameLength {
		return shared.InvalidInput("userName không được vượt quá 100 ký tự")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return shared.InvalidInput("userName không được chứa khoảng trắng")
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return shared.InvalidInput("Thiếu password")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return shared.InvalidInput("Mật khẩu phải có ít nhất 6 ký tự")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
