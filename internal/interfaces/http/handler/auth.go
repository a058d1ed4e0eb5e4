package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/heoquay/backend/internal/application/identity"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Login forwards the credentials to the webhook API and relays its answer,
// token included. Nothing is stored server side.
func (h *AuthHandler) Login(c *gin.Context) {
	var req identity.LoginInput
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Relay(c, res)
}
