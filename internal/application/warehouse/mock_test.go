package warehouse

import (
	"context"
	"net/http"
	"net/url"

	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/stretchr/testify/mock"
)

// MockUpstream is a mock implementation of Upstream
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) Get(ctx context.Context, endpoint string, query url.Values) (*upstream.Result, error) {
	args := m.Called(ctx, endpoint, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Result), args.Error(1)
}

func (m *MockUpstream) Post(ctx context.Context, endpoint string, body any) (*upstream.Result, error) {
	args := m.Called(ctx, endpoint, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Result), args.Error(1)
}

func okJSON(body string) *upstream.Result {
	return &upstream.Result{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(body)}
}
