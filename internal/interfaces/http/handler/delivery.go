package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/delivery"
)

// DeliveryHandler handles the Ahamove endpoints
type DeliveryHandler struct {
	BaseHandler
	deliveryService *delivery.Service
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryService *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{
		deliveryService: deliveryService,
	}
}

// DispatchRequest books an Ahamove delivery. service_id falls back to the
// configured default.
type DispatchRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	ServiceID string `json:"service_id"`
}

// Dispatch books a delivery for one order
func (h *DeliveryHandler) Dispatch(c *gin.Context) {
	var req DispatchRequest
	if !h.BindJSON(c, &req) {
		return
	}
	result, err := h.deliveryService.Dispatch(c.Request.Context(), req.OrderID, req.ServiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SearchAddress returns address suggestions for keySearch
func (h *DeliveryHandler) SearchAddress(c *gin.Context) {
	places, err := h.deliveryService.SearchAddress(c.Request.Context(), c.Query("keySearch"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, places)
}
