package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// CleanlinessHandler exposes room inspection endpoints.
type CleanlinessHandler struct {
	cleanliness *service.CleanlinessService
}

// NewCleanlinessHandler constructs handler.
func NewCleanlinessHandler(cleanliness *service.CleanlinessService) *CleanlinessHandler {
	return &CleanlinessHandler{cleanliness: cleanliness}
}

// Criteria godoc
// @Summary Inspection criteria catalog
// @Tags Cleanliness
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/criteria [get]
func (h *CleanlinessHandler) Criteria(c *gin.Context) {
	criteria, err := h.cleanliness.Criteria(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, criteria, nil)
}

// CreateReview godoc
// @Summary Record a scored room inspection
// @Tags Cleanliness
// @Accept json
// @Produce json
// @Param payload body service.CreateReviewRequest true "Review"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/reviews [post]
func (h *CleanlinessHandler) CreateReview(c *gin.Context) {
	var req service.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	review, err := h.cleanliness.CreateReview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, review)
}

func roomIDParam(c *gin.Context) (int, error) {
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil || roomID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "room id must be a positive integer")
	}
	return roomID, nil
}

// LatestReview godoc
// @Summary Most recent inspection of a room
// @Tags Cleanliness
// @Produce json
// @Param roomId path int true "Room ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/rooms/{roomId}/latest [get]
func (h *CleanlinessHandler) LatestReview(c *gin.Context) {
	roomID, err := roomIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	detail, err := h.cleanliness.LatestReview(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// History godoc
// @Summary All inspections of a room
// @Tags Cleanliness
// @Produce json
// @Param roomId path int true "Room ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/rooms/{roomId}/history [get]
func (h *CleanlinessHandler) History(c *gin.Context) {
	roomID, err := roomIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.cleanliness.History(c.Request.Context(), roomID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// RoomScores godoc
// @Summary Latest score per room
// @Tags Cleanliness
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/rooms [get]
func (h *CleanlinessHandler) RoomScores(c *gin.Context) {
	rows, err := h.cleanliness.RoomScores(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Stats godoc
// @Summary Hallway averages for the running and published windows
// @Tags Cleanliness
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/stats [get]
func (h *CleanlinessHandler) Stats(c *gin.Context) {
	stats, err := h.cleanliness.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Cutoff godoc
// @Summary Mark a statistics cutoff
// @Tags Cleanliness
// @Produce json
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /cleanliness/cutoffs [post]
func (h *CleanlinessHandler) Cutoff(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	cutoff, err := h.cleanliness.Cutoff(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cutoff)
}
