package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/heoquay/backend/internal/domain/identity"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewUserRepository builds the user store selected by cfg.Driver. The returned
// close function releases the database connection, if any.
func NewUserRepository(cfg config.UsersConfig, log *zap.Logger) (identity.UserRepository, func() error, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch cfg.Driver {
	case "", "memory":
		log.Info("Using in-memory user store")
		return NewInMemoryUserRepository(), func() error { return nil }, nil
	case "sqlite", "postgres":
		db, err := NewDatabase(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("Using SQL user store", zap.String("driver", cfg.Driver))
		return NewGormUserRepository(db.DB), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported users driver %q", cfg.Driver)
	}
}

// SeedAdmin creates the bootstrap admin account when it does not exist yet
func SeedAdmin(ctx context.Context, repo identity.UserRepository, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	exists, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	user, err := identity.NewUser(username, password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
