package order

import (
	"context"
	"fmt"
	"net/url"
	"time"

	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// orderListKeys are the wrapper keys the order array has been sent under
var orderListKeys = []string{"orders", "donHangs", "items", "data", "rows"}

// Upstream is the part of the webhook client the order services use
type Upstream interface {
	Get(ctx context.Context, endpoint string, query url.Values) (*upstream.Result, error)
	Post(ctx context.Context, endpoint string, body any) (*upstream.Result, error)
}

// Service fetches, transforms and updates orders through the webhook API
type Service struct {
	upstream Upstream
	calendar *domain.Calendar
	now      func() time.Time
}

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now, used to resolve "today"
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an order service
func NewService(up Upstream, cal *domain.Calendar, opts ...Option) *Service {
	s := &Service{
		upstream: up,
		calendar: cal,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calendar returns the calendar orders are grouped in
func (s *Service) Calendar() *domain.Calendar {
	return s.calendar
}

// List fetches every order and maps it onto the view model. query is
// forwarded as is. An upstream rejection is returned as *upstream.ResponseError.
func (s *Service) List(ctx context.Context, query url.Values) ([]domain.Order, error) {
	res, err := s.upstream.Get(ctx, config.EndpointOrders, query)
	if err != nil {
		return nil, err
	}
	if err := upstream.Reject(res); err != nil {
		return nil, err
	}

	raw, err := upstream.ExtractList(res, orderListKeys...)
	if err != nil {
		return nil, err
	}
	orders := FromUpstreamList(raw, s.calendar)
	logger.L(ctx).Debug("Orders fetched", zap.Int("count", len(orders)))
	return orders, nil
}

// CalendarView is the filtered, grouped order list with its tab counts
type CalendarView struct {
	Buckets []domain.DayBucket
	Tabs    domain.TabCounts
	Count   int
}

// BuildCalendar filters and groups orders. Tab counts ignore the status filter.
func (s *Service) BuildCalendar(orders []domain.Order, f domain.Filter) CalendarView {
	return buildCalendar(s.calendar, orders, f)
}

func buildCalendar(cal *domain.Calendar, orders []domain.Order, f domain.Filter) CalendarView {
	filtered := cal.Filter(orders, f)
	return CalendarView{
		Buckets: cal.GroupByDay(filtered),
		Tabs:    cal.CountTabs(orders, f),
		Count:   len(filtered),
	}
}

// ListCalendar fetches orders and builds the calendar view
func (s *Service) ListCalendar(ctx context.Context, f domain.Filter) (CalendarView, error) {
	orders, err := s.List(ctx, nil)
	if err != nil {
		return CalendarView{}, err
	}
	return s.BuildCalendar(orders, f), nil
}

// PickList aggregates the line items of a day. A zero day means today.
func (s *Service) PickList(ctx context.Context, day time.Time) (domain.PickList, error) {
	if day.IsZero() {
		day = s.calendar.Today(s.now())
	}
	orders, err := s.List(ctx, nil)
	if err != nil {
		return domain.PickList{}, err
	}
	return s.calendar.BuildPickList(orders, day), nil
}

// Find looks an order up by id or order code
func (s *Service) Find(ctx context.Context, orderID string) (*domain.Order, error) {
	orders, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID || (orders[i].Code != "" && orders[i].Code == orderID) {
			return &orders[i], nil
		}
	}
	return nil, shared.NotFound(fmt.Sprintf("Không tìm thấy đơn hàng %s", orderID))
}

// UpdateInput carries the edited line items of an order
type UpdateInput struct {
	OrderID  string           `json:"orderId"`
	SanPhams []map[string]any `json:"sanPhams"`
}

// Update forwards edited line items
func (s *Service) Update(ctx context.Context, in UpdateInput) (*upstream.Result, error) {
	return s.upstream.Post(ctx, config.EndpointOrderUpdate, in)
}

// UpdateStatus sets the status of one order
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*upstream.Result, error) {
	return s.upstream.Post(ctx, config.EndpointOrderStatus, map[string]any{
		"orderId": orderID,
		"status":  string(status),
	})
}

// CheckPaid asks whether an order was paid. Paid means the upstream flag is "0".
func (s *Service) CheckPaid(ctx context.Context, orderID string) (*upstream.Result, bool, error) {
	res, err := s.upstream.Post(ctx, config.EndpointCheckPaid, map[string]any{"orderId": orderID})
	if err != nil {
		return nil, false, err
	}
	return res, res.Envelope().IsSuccess(), nil
}

// QRPayment fetches the payment QR of an order, which may be an image
func (s *Service) QRPayment(ctx context.Context, orderID string) (*upstream.Result, error) {
	return s.upstream.Post(ctx, config.EndpointQRPayment, map[string]any{"orderId": orderID})
}

// SendZaloInput is a Zalo notification request
type SendZaloInput struct {
	OrderID string `json:"orderId"`
	Phone   string `json:"phone"`
	Message string `json:"message,omitempty"`
}

// SendZalo notifies the customer of an order over Zalo
func (s *Service) SendZalo(ctx context.Context, in SendZaloInput) (*upstream.Result, error) {
	return s.upstream.Post(ctx, config.EndpointSendZalo, in)
}

// ShipperConfirm records that a shipper accepted an order
func (s *Service) ShipperConfirm(ctx context.Context, orderID, shipper string) (*upstream.Result, error) {
	return s.upstream.Post(ctx, config.EndpointShipperConfirm, map[string]any{
		"orderId": orderID,
		"shipper": shipper,
	})
}
