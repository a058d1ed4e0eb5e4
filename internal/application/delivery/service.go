// Package delivery dispatches orders to Ahamove.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/heoquay/backend/internal/infrastructure/ahamove"
	"github.com/heoquay/backend/internal/infrastructure/config"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

// MinSearchLength is the shortest address query forwarded to Ahamove
const MinSearchLength = 2

// ErrMissingAddress is returned when an order has no drop-off address
var ErrMissingAddress = shared.InvalidInput("Đơn hàng chưa có địa chỉ giao")

// Courier is the Ahamove client surface used here
type Courier interface {
	CreateOrder(ctx context.Context, req ahamove.CreateOrderRequest) (*ahamove.CreateOrderResponse, error)
	SearchAddress(ctx context.Context, query string) ([]ahamove.Place, error)
}

// OrderFinder looks an order up upstream
type OrderFinder interface {
	Find(ctx context.Context, orderID string) (*domain.Order, error)
}

// StatusUpdater sets an order status upstream
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*upstream.Result, error)
}

// Result describes a dispatched delivery
type Result struct {
	OrderID        string  `json:"orderId"`
	AhamoveOrderID string  `json:"ahamoveOrderId"`
	Status         string  `json:"status"`
	SharedLink     string  `json:"sharedLink,omitempty"`
	Fee            float64 `json:"phiGiao"`
	COD            int64   `json:"cod"`
	StatusUpdated  bool    `json:"statusUpdated"`
}

// Service dispatches orders and searches addresses
type Service struct {
	courier Courier
	orders  OrderFinder
	status  StatusUpdater
	cfg     config.AhamoveConfig
}

// NewService creates a delivery service
func NewService(courier Courier, orders OrderFinder, status StatusUpdater, cfg config.AhamoveConfig) *Service {
	return &Service{
		courier: courier,
		orders:  orders,
		status:  status,
		cfg:     cfg,
	}
}

// DefaultServiceID is the Ahamove service used when a request names none
func (s *Service) DefaultServiceID() string {
	return s.cfg.DefaultServiceID
}

// Dispatch books an Ahamove delivery for an order. The route runs from the
// shop to the order's drop-off address; cash orders carry COD of the amount
// due. On success the order is moved to dang_giao, best effort.
func (s *Service) Dispatch(ctx context.Context, orderID, serviceID string) (*Result, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, shared.InvalidInput("Thiếu orderId")
	}
	if serviceID = strings.TrimSpace(serviceID); serviceID == "" {
		serviceID = s.cfg.DefaultServiceID
	}
	if serviceID == "" {
		return nil, shared.InvalidInput("Thiếu service_id")
	}

	o, err := s.orders.Find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	req, cod, err := s.buildRequest(o, serviceID)
	if err != nil {
		return nil, err
	}

	log := logger.L(ctx).With(zap.String("order_id", orderID), zap.String("service_id", serviceID))
	resp, err := s.courier.CreateOrder(ctx, req)
	if err != nil {
		log.Warn("Ahamove dispatch failed", zap.Error(err))
		return nil, err
	}

	result := &Result{
		OrderID:        orderID,
		AhamoveOrderID: resp.OrderID,
		Status:         resp.Status,
		SharedLink:     resp.SharedLink,
		Fee:            resp.TotalPrice.InexactFloat64(),
		COD:            cod,
	}

	res, err := s.status.UpdateStatus(ctx, orderIDFor(o), domain.StatusOutForDelivery)
	switch {
	case err != nil:
		log.Warn("Failed to mark order out for delivery", zap.Error(err))
	case upstream.Reject(res) != nil:
		log.Warn("Upstream refused out-for-delivery status", zap.Int("status", res.StatusCode))
	default:
		result.StatusUpdated = true
	}

	log.Info("Order dispatched to Ahamove", zap.String("ahamove_order_id", resp.OrderID))
	return result, nil
}

func (s *Service) buildRequest(o *domain.Order, serviceID string) (ahamove.CreateOrderRequest, int64, error) {
	dropOff := o.DropOffAddress()
	if dropOff == "" {
		return ahamove.CreateOrderRequest{}, 0, ErrMissingAddress
	}

	var cod int64
	payment := ahamove.PaymentBalance
	if o.Payment == domain.PaymentCash {
		cod = o.AmountDue().Round(0).IntPart()
		payment = ahamove.PaymentCash
	}

	remarks := o.Code
	if o.Note != "" {
		remarks = strings.TrimSpace(remarks + " " + o.Note)
	}

	return ahamove.CreateOrderRequest{
		ServiceID:     serviceID,
		PaymentMethod: payment,
		Remarks:       remarks,
		Path: []ahamove.Point{
			{
				Address: s.cfg.PickupAddress,
				Name:    s.cfg.PickupName,
				Mobile:  s.cfg.PickupPhone,
			},
			{
				Address: dropOff,
				Name:    o.Customer.Name,
				Mobile:  o.Customer.Phone,
				COD:     cod,
				Remarks: o.Note,
			},
		},
	}, cod, nil
}

func orderIDFor(o *domain.Order) string {
	if o.ID != "" {
		return o.ID
	}
	return o.Code
}

// SearchAddress returns address suggestions. Queries shorter than
// MinSearchLength runes return an empty list without calling Ahamove.
func (s *Service) SearchAddress(ctx context.Context, keySearch string) ([]ahamove.Place, error) {
	keySearch = strings.TrimSpace(keySearch)
	if utf8.RuneCountInString(keySearch) < MinSearchLength {
		return []ahamove.Place{}, nil
	}
	places, err := s.courier.SearchAddress(ctx, keySearch)
	if err != nil {
		return nil, fmt.Errorf("search address: %w", err)
	}
	return places, nil
}
