package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	orderapp "github.com/heoquay/backend/internal/application/order"
	domain "github.com/heoquay/backend/internal/domain/order"
	"github.com/heoquay/backend/internal/interfaces/http/dto"
	"github.com/spf13/cast"
)

// OrderHandler handles the order desk endpoints
type OrderHandler struct {
	BaseHandler
	orders *orderapp.Service
	bulk   *orderapp.BulkService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *orderapp.Service, bulk *orderapp.BulkService) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		bulk:   bulk,
	}
}

// UpdateOrderRequest carries the edited line items of an order
type UpdateOrderRequest struct {
	OrderID  string           `json:"orderId" binding:"required"`
	SanPhams []map[string]any `json:"sanPhams" binding:"required"`
}

// UpdateStatusRequest sets the status of one order
type UpdateStatusRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// BulkRequest applies one action to several orders. type may be sent as a
// number or a numeric string.
type BulkRequest struct {
	OrderIDs  []string `json:"orderIds"`
	Type      any      `json:"type"`
	Status    string   `json:"status"`
	ServiceID string   `json:"service_id"`
}

// OrderIDRequest names a single order
type OrderIDRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

// SendZaloRequest notifies the customer of an order
type SendZaloRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Message string `json:"message"`
}

// ShipperConfirmRequest records that a shipper accepted an order
type ShipperConfirmRequest struct {
	OrderID string `json:"orderId" binding:"required"`
	Shipper string `json:"shipper" binding:"required"`
}

// List returns the order view models
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orderapp.ToOrderResponses(orders, h.orders.Calendar()))
}

// Calendar returns the filtered day buckets with their tab counts
func (h *OrderHandler) Calendar(c *gin.Context) {
	f, err := parseFilter(c, h.orders.Calendar())
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	view, err := h.orders.ListCalendar(c.Request.Context(), f)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orderapp.ToCalendarResponse(view, h.orders.Calendar()))
}

// Update forwards edited line items
func (h *OrderHandler) Update(c *gin.Context) {
	var req UpdateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.orders.Update(c.Request.Context(), orderapp.UpdateInput{
		OrderID:  strings.TrimSpace(req.OrderID),
		SanPhams: req.SanPhams,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// UpdateStatus sets the status of one order
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}
	status, ok := domain.LookupStatus(req.Status)
	if !ok {
		h.BadRequest(c, "status không hợp lệ")
		return
	}
	res, err := h.orders.UpdateStatus(c.Request.Context(), strings.TrimSpace(req.OrderID), status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// UpdateTypes runs a bulk action. Types 1 to 3 relay the webhook answer;
// type 4 answers with one outcome per order.
func (h *OrderHandler) UpdateTypes(c *gin.Context) {
	var req BulkRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.bulk.Apply(c.Request.Context(), orderapp.BulkInput{
		OrderIDs:  req.OrderIDs,
		Type:      parseBulkType(req.Type),
		Status:    req.Status,
		ServiceID: req.ServiceID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Upstream != nil {
		h.Relay(c, result.Upstream)
		return
	}

	failed := 0
	for _, o := range result.Outcomes {
		if o.Error != dto.FlagOK {
			failed++
		}
	}
	resp := dto.NewSuccessResponse(result.Outcomes)
	if failed > 0 {
		resp.Error = dto.FlagFail
		resp.Message = fmt.Sprintf("%d/%d đơn không tạo được giao hàng", failed, len(result.Outcomes))
	}
	c.JSON(http.StatusOK, resp)
}

// CheckPaid relays the payment check and adds isPaid
func (h *OrderHandler) CheckPaid(c *gin.Context) {
	var req OrderIDRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, paid, err := h.orders.CheckPaid(c.Request.Context(), strings.TrimSpace(req.OrderID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	env := res.Envelope()
	env["isPaid"] = paid
	c.JSON(res.StatusCode, env)
}

// QRPayment relays the payment QR, which may be an image
func (h *OrderHandler) QRPayment(c *gin.Context) {
	var req OrderIDRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.orders.QRPayment(c.Request.Context(), strings.TrimSpace(req.OrderID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// SendZalo notifies the customer over Zalo
func (h *OrderHandler) SendZalo(c *gin.Context) {
	var req SendZaloRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.orders.SendZalo(c.Request.Context(), orderapp.SendZaloInput{
		OrderID: strings.TrimSpace(req.OrderID),
		Phone:   strings.TrimSpace(req.Phone),
		Message: req.Message,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// ShipperConfirm records that a shipper accepted an order
func (h *OrderHandler) ShipperConfirm(c *gin.Context) {
	var req ShipperConfirmRequest
	if !h.BindJSON(c, &req) {
		return
	}
	res, err := h.orders.ShipperConfirm(c.Request.Context(), strings.TrimSpace(req.OrderID), strings.TrimSpace(req.Shipper))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// CollectOrders returns the pick list of a day, today by default
func (h *OrderHandler) CollectOrders(c *gin.Context) {
	var day time.Time
	if raw := strings.TrimSpace(c.Query("date")); raw != "" {
		if day = h.orders.Calendar().ParseDate(raw); day.IsZero() {
			h.BadRequest(c, "date không hợp lệ")
			return
		}
	}
	list, err := h.orders.PickList(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orderapp.ToPickListResponse(list, h.orders.Calendar()))
}

// parseFilter reads the list filters from the query string. Each filter
// accepts its English and Vietnamese parameter name.
func parseFilter(c *gin.Context, cal *domain.Calendar) (domain.Filter, error) {
	f := domain.Filter{
		Search:         queryAny(c, "q", "search", "timKiem"),
		Branch:         queryAny(c, "branch", "chiNhanh"),
		DeliveryMethod: queryAny(c, "delivery", "hinhThucGiao"),
		Shipper:        queryAny(c, "shipper"),
	}
	if raw := queryAny(c, "status", "trangThai"); raw != "" && raw != "tat_ca" {
		status, ok := domain.LookupStatus(raw)
		if !ok {
			return f, errors.New("status không hợp lệ")
		}
		f.Status = status
	}
	if raw := queryAny(c, "date", "ngay"); raw != "" {
		if f.Date = cal.ParseDate(raw); f.Date.IsZero() {
			return f, errors.New("date không hợp lệ")
		}
	}
	return f, nil
}

func queryAny(c *gin.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// parseBulkType reads the bulk type from a JSON number or string. Anything
// that is not a whole number yields 0, which the bulk service rejects.
func parseBulkType(raw any) orderapp.BulkType {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}
	v, err := cast.ToFloat64E(raw)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0
	}
	return orderapp.BulkType(v)
}
