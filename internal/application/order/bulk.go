package order

import (
	"context"
	"errors"
	"strings"

	"github.com/heoquay/backend/internal/application/delivery"
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/heoquay/backend/internal/infrastructure/ahamove"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// BulkType selects the action applied to every order of a bulk request
type BulkType int

const (
	BulkSetStatus BulkType = iota + 1
	BulkSendZalo
	BulkQRPayment
	BulkAhamove
)

// IsValid reports whether t is one of the four bulk actions
func (t BulkType) IsValid() bool {
	return t >= BulkSetStatus && t <= BulkAhamove
}

// ErrInvalidBulkType is returned for a type outside 1..4
var ErrInvalidBulkType = shared.InvalidInput("type phải là 1, 2, 3 hoặc 4")

// Dispatcher books deliveries, see delivery.Service
type Dispatcher interface {
	Dispatch(ctx context.Context, orderID, serviceID string) (*delivery.Result, error)
}

// BulkInput is a bulk action over several orders
type BulkInput struct {
	OrderIDs  []string
	Type      BulkType
	Status    string
	ServiceID string
}

// BulkOutcome is the result of a bulk action for one order
type BulkOutcome struct {
	OrderID string           `json:"orderId"`
	Error   string           `json:"error"`
	Message string           `json:"message,omitempty"`
	Data    *delivery.Result `json:"data,omitempty"`
}

// BulkResult holds either the relayed upstream answer (types 1 to 3) or
// the per-order outcomes of an Ahamove fan-out (type 4)
type BulkResult struct {
	Upstream *upstream.Result
	Outcomes []BulkOutcome
}

// Validate checks a bulk request before any network call
func (in *BulkInput) Validate() error {
	ids := make([]string, 0, len(in.OrderIDs))
	for _, id := range in.OrderIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	in.OrderIDs = ids

	if len(in.OrderIDs) == 0 {
		return shared.InvalidInput("Thiếu orderIds")
	}
	if !in.Type.IsValid() {
		return ErrInvalidBulkType
	}
	if in.Type == BulkSetStatus {
		status, ok := domain.LookupStatus(in.Status)
		if !ok {
			return shared.InvalidInput("status không hợp lệ")
		}
		in.Status = string(status)
	}
	return nil
}

// BulkService applies bulk actions
type BulkService struct {
	upstream   Upstream
	dispatcher Dispatcher
}

// NewBulkService creates a bulk action service
func NewBulkService(up Upstream, dispatcher Dispatcher) *BulkService {
	return &BulkService{upstream: up, dispatcher: dispatcher}
}

// Apply validates and runs a bulk action
func (s *BulkService) Apply(ctx context.Context, in BulkInput) (*BulkResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	if in.Type == BulkAhamove {
		return &BulkResult{Outcomes: s.dispatchAll(ctx, in)}, nil
	}

	body := map[string]any{
		"orderIds": in.OrderIDs,
		"type":     int(in.Type),
	}
	if in.Type == BulkSetStatus {
		body["status"] = in.Status
	}
	res, err := s.upstream.Post(ctx, config.EndpointOrderBulk, body)
	if err != nil {
		return nil, err
	}
	return &BulkResult{Upstream: res}, nil
}

// dispatchAll books a delivery per order. A failure is recorded for that
// order and does not stop the others; cancellation stops the rest.
func (s *BulkService) dispatchAll(ctx context.Context, in BulkInput) []BulkOutcome {
	log := logger.L(ctx)
	outcomes := make([]BulkOutcome, 0, len(in.OrderIDs))

	for _, id := range in.OrderIDs {
		if err := ctx.Err(); err != nil {
			outcomes = append(outcomes, BulkOutcome{OrderID: id, Error: upstream.FlagFail, Message: "Đã hủy yêu cầu"})
			continue
		}
		result, err := s.dispatcher.Dispatch(ctx, id, in.ServiceID)
		if err != nil {
			log.Warn("Bulk dispatch failed", zap.String("order_id", id), zap.Error(err))
			outcomes = append(outcomes, BulkOutcome{OrderID: id, Error: upstream.FlagFail, Message: outcomeMessage(err)})
			continue
		}
		outcomes = append(outcomes, BulkOutcome{OrderID: id, Error: upstream.FlagOK, Data: result})
	}
	return outcomes
}

func outcomeMessage(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	var reqErr *ahamove.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return "Không thể tạo đơn giao hàng"
}
