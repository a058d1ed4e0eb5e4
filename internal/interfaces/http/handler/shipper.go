package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/shipper"
	"github.com/spf13/cast"
)

// ShipperHandler serves the cached shipper list
type ShipperHandler struct {
	BaseHandler
	shipperService *shipper.Service
}

// NewShipperHandler creates a new ShipperHandler
func NewShipperHandler(shipperService *shipper.Service) *ShipperHandler {
	return &ShipperHandler{
		shipperService: shipperService,
	}
}

// List returns the shippers. ?refresh=1 bypasses the cache.
func (h *ShipperHandler) List(c *gin.Context) {
	refresh := cast.ToBool(c.Query("refresh"))
	shippers, err := h.shipperService.List(c.Request.Context(), refresh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, shippers)
}
