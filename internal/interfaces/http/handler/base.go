package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/domain/shared"
	"github.com/heoquay/backend/internal/infrastructure/ahamove"
	"github.com/heoquay/backend/internal/infrastructure/logger"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
	"github.com/heoquay/backend/internal/interfaces/http/dto"
	"github.com/heoquay/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Error sends an error envelope with the given status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, message)
}

// Relay answers with the webhook API's status code and normalized body
func (h *BaseHandler) Relay(c *gin.Context, res *upstream.Result) {
	c.JSON(res.StatusCode, res.Envelope())
}

// BindJSON binds the request body, answering 400 when it does not validate
func (h *BaseHandler) BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		h.BadRequest(c, middleware.ValidationMessage(err))
		return false
	}
	return true
}

// HandleError converts an application error into a response. Upstream
// failures that produced a response are relayed with their status; failures
// without one answer 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	log := logger.L(c.Request.Context())

	var (
		respErr    *upstream.ResponseError
		ahamoveErr *ahamove.RequestError
		domainErr  *shared.DomainError
	)
	switch {
	case errors.As(err, &respErr):
		h.Relay(c, respErr.Result)
	case errors.As(err, &domainErr):
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Message)
	case errors.As(err, &ahamoveErr):
		status := ahamoveErr.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		h.Error(c, status, ahamoveErr.Message)
	case errors.Is(err, upstream.ErrUnavailable), errors.Is(err, ahamove.ErrRequestFailed),
		errors.Is(err, ahamove.ErrNotConfigured):
		log.Warn("Upstream unavailable", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.MsgUpstreamUnavailable)
	default:
		log.Error("Unhandled error", zap.Error(err))
		h.Error(c, http.StatusInternalServerError, dto.MsgInternal)
	}
}
