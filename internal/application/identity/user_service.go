package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/domain/identity"
	"github.com/heoquay/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService handles local desk user management
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// List returns every user ordered by creation time
func (s *UserService) List(ctx context.Context) ([]UserDTO, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out, nil
}

// Create creates a new user. Usernames are unique case-insensitively.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	role, err := identity.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	user, err := identity.NewUser(input.UserName, input.Password, role)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Tên đăng nhập đã tồn tại")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
	)

	dto := ToUserDTO(user)
	return &dto, nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", zap.String("user_id", id.String()))
	return nil
}
