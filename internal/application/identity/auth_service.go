package identity

import (
	"context"
	"strings"

	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// Poster forwards a JSON body to a webhook endpoint
type Poster interface {
	Post(ctx context.Context, endpoint string, body any) (*upstream.Result, error)
}

// AuthService authenticates against the webhook API. The proxy holds no
// session of its own: the token upstream returns goes straight to the caller.
type AuthService struct {
	upstream Poster
}

// NewAuthService creates an auth service
func NewAuthService(up Poster) *AuthService {
	return &AuthService{upstream: up}
}

// Login forwards the credentials and returns the upstream answer untouched
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*upstream.Result, error) {
	userName := strings.TrimSpace(in.UserName)
	log := logger.L(ctx).With(zap.String("username", userName))

	res, err := s.upstream.Post(ctx, config.EndpointLogin, map[string]any{
		"userName": userName,
		"password": in.Password,
	})
	if err != nil {
		log.Warn("Login forwarding failed", zap.Error(err))
		return nil, err
	}

	if res.OK() && res.Envelope().IsSuccess() {
		log.Info("User logged in")
	} else {
		log.Info("Login rejected", zap.Int("status", res.StatusCode))
	}
	return res, nil
}
