package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/heoquay/backend/internal/application/identity"
	identitydomain "github.com/heoquay/backend/internal/domain/identity"
	"github.com/heoquay/backend/internal/infrastructure/upstream"
)

// MsgAdminRequired is returned when a non-admin caller asks for an Admin account
const MsgAdminRequired = "Chỉ Admin mới được tạo tài khoản Admin"

// UserHandler handles the local user list
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// DeleteUserRequest names the user to delete when no id query is given
type DeleteUserRequest struct {
	ID string `json:"id"`
}

// List returns every user
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// Create adds a user. A taken user name answers 409. Only a caller whose
// role is Admin may create an Admin account.
func (h *UserHandler) Create(c *gin.Context) {
	var req identity.CreateUserInput
	if !h.BindJSON(c, &req) {
		return
	}
	if requested, err := identitydomain.ParseRole(req.Role); err == nil && requested == identitydomain.RoleAdmin {
		caller, _ := identitydomain.ParseRole(upstream.CredentialsFromContext(c.Request.Context()).Role)
		if caller != identitydomain.RoleAdmin {
			h.Error(c, http.StatusForbidden, MsgAdminRequired)
			return
		}
	}

	user, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete removes a user identified by the id query parameter or body field
func (h *UserHandler) Delete(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("id"))
	if raw == "" {
		var req DeleteUserRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			raw = strings.TrimSpace(req.ID)
		}
	}
	if raw == "" {
		h.BadRequest(c, "Thiếu id")
		return
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "id không hợp lệ")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"id": id})
}
