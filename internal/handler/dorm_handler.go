package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// DormHandler exposes building catalog endpoints.
type DormHandler struct {
	dorms *service.DormService
}

// NewDormHandler constructs handler.
func NewDormHandler(dorms *service.DormService) *DormHandler {
	return &DormHandler{dorms: dorms}
}

// Dormitories godoc
// @Summary List dormitories
// @Tags Dorms
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dormitories [get]
func (h *DormHandler) Dormitories(c *gin.Context) {
	dorms, err := h.dorms.Dormitories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dorms, nil)
}

// Hallways godoc
// @Summary List hallways
// @Tags Dorms
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hallways [get]
func (h *DormHandler) Hallways(c *gin.Context) {
	hallways, err := h.dorms.Hallways(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, hallways, nil)
}

// Rooms godoc
// @Summary Rooms of one hallway
// @Tags Dorms
// @Produce json
// @Param id path int true "Hallway ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /hallways/{id}/rooms [get]
func (h *DormHandler) Rooms(c *gin.Context) {
	hallwayID, err := strconv.Atoi(c.Param("id"))
	if err != nil || hallwayID <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hallway id must be a positive integer"))
		return
	}
	rooms, err := h.dorms.Rooms(c.Request.Context(), hallwayID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rooms, nil)
}

// Occupancy godoc
// @Summary Room occupancy grouped by hallway
// @Tags Dorms
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dormitories/occupancy [get]
func (h *DormHandler) Occupancy(c *gin.Context) {
	occupancy, err := h.dorms.Occupancy(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}
