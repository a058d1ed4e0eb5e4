package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/warehouse"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
)

// WarehouseHandler handles the raw material (NVL) stock endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *warehouse.Service
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *warehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseService: warehouseService,
	}
}

// DeleteItemRequest names the item to delete when no maNvl query is given
type DeleteItemRequest struct {
	MaNvl string `json:"maNvl"`
}

// List returns every item with tonKho recomputed
func (h *WarehouseHandler) List(c *gin.Context) {
	items, err := h.warehouseService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Create adds an item
func (h *WarehouseHandler) Create(c *gin.Context) {
	var req warehouse.CreateInput
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.warehouseService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.relayMutation(c, m)
}

// Update merges the sent fields into the item found by id or maNvl
func (h *WarehouseHandler) Update(c *gin.Context) {
	var req warehouse.UpdateInput
	if !h.BindJSON(c, &req) {
		return
	}
	m, err := h.warehouseService.Update(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.relayMutation(c, m)
}

// Delete removes the item named by the maNvl query parameter or body field
func (h *WarehouseHandler) Delete(c *gin.Context) {
	code := strings.TrimSpace(c.Query("maNvl"))
	if code == "" {
		var req DeleteItemRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			code = req.MaNvl
		}
	}
	res, err := h.warehouseService.Delete(c.Request.Context(), code)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}

// relayMutation relays the webhook answer. A successful answer without data
// carries the record that was sent, so the desk sees the derived tonKho.
func (h *WarehouseHandler) relayMutation(c *gin.Context, m *warehouse.Mutation) {
	env := m.Upstream.Envelope()
	if upstream.Reject(m.Upstream) == nil && env.Data() == nil {
		env["data"] = m.Item
	}
	c.JSON(m.Upstream.StatusCode, env)
}
