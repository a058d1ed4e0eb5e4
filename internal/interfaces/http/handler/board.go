package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	orderapp "github.com/heoquay/backend/internal/application/order"
	"github.com/heoquay/backend/internal/application/refresh"
	domain "github.com/heoquay/backend/internal/domain/order"
)

// BoardHandler serves the server-side order board kept fresh by the poller
type BoardHandler struct {
	BaseHandler
	board    *orderapp.Board
	poller   *refresh.Poller
	calendar *domain.Calendar
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(board *orderapp.Board, poller *refresh.Poller, cal *domain.Calendar) *BoardHandler {
	return &BoardHandler{
		board:    board,
		poller:   poller,
		calendar: cal,
	}
}

// BoardResponse is the filtered snapshot with the poller state
type BoardResponse struct {
	orderapp.CalendarResponse
	RefreshedAt *time.Time    `json:"refreshedAt,omitempty"`
	Poller      refresh.State `json:"poller"`
}

// RefreshResponse reports whether a manual refresh ran
type RefreshResponse struct {
	Refreshed bool          `json:"refreshed"`
	Poller    refresh.State `json:"poller"`
}

// VisibilityRequest freezes or resumes the countdown
type VisibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

// Get returns the current snapshot, filtered like GET /api/orders/calendar
func (h *BoardHandler) Get(c *gin.Context) {
	f, err := parseFilter(c, h.calendar)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	view, refreshedAt := h.board.View(f)
	resp := BoardResponse{
		CalendarResponse: orderapp.ToCalendarResponse(view, h.calendar),
		Poller:           h.poller.State(),
	}
	if !refreshedAt.IsZero() {
		resp.RefreshedAt = &refreshedAt
	}
	h.Success(c, resp)
}

// Refresh re-fetches now. It does nothing while another refresh runs or
// when auto-refresh is disabled.
func (h *BoardHandler) Refresh(c *gin.Context) {
	ran, err := h.poller.Refresh(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, RefreshResponse{Refreshed: ran, Poller: h.poller.State()})
}

// Visibility records whether the desk is looking at the board
func (h *BoardHandler) Visibility(c *gin.Context) {
	var req VisibilityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	h.poller.SetVisible(*req.Visible)
	h.Success(c, h.poller.State())
}
