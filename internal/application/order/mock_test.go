package order

import (
	"context"
	"net/http"
	"net/url"

	"github.com/heoquay/backend/internal/application/delivery"
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

// MockDispatcher is a mock implementation of Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, orderID, serviceID string) (*delivery.Result, error) {
	args := m.Called(ctx, orderID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*delivery.Result), args.Error(1)
}

func jsonResult(status int, body string) *upstream.Result {
	return &upstream.Result{StatusCode: status, ContentType: "application/json", Body: []byte(body)}
}

func okJSON(body string) *upstream.Result {
	return jsonResult(http.StatusOK, body)
}
