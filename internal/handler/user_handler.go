package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// UserHandler exposes account administration endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler constructs handler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Monitors godoc
// @Summary List monitor accounts
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /users/monitors [get]
func (h *UserHandler) Monitors(c *gin.Context) {
	monitors, err := h.users.Monitors(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, monitors, nil)
}

type updateRoleRequest struct {
	Role int `json:"role"`
}

// UpdateRole godoc
// @Summary Promote or demote between student and monitor
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body updateRoleRequest true "Role"
// @Success 204
// @Security BearerAuth
// @Router /users/{id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.users.UpdateRole(c.Request.Context(), c.Param("id"), models.UserRole(req.Role)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
