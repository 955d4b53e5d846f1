package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// ReprimandHandler exposes reprimand endpoints.
type ReprimandHandler struct {
	reprimands *service.ReprimandService
}

// NewReprimandHandler constructs handler.
func NewReprimandHandler(reprimands *service.ReprimandService) *ReprimandHandler {
	return &ReprimandHandler{reprimands: reprimands}
}

// Register godoc
// @Summary Issue a reprimand manually
// @Tags Reprimands
// @Accept json
// @Produce json
// @Param payload body service.RegisterReprimandRequest true "Reprimand"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /reprimands [post]
func (h *ReprimandHandler) Register(c *gin.Context) {
	var req service.RegisterReprimandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	rep, err := h.reprimands.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rep)
}

// List godoc
// @Summary List all reprimands
// @Tags Reprimands
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reprimands [get]
func (h *ReprimandHandler) List(c *gin.Context) {
	reprimands, err := h.reprimands.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reprimands, nil)
}

// ListByStudent godoc
// @Summary One student's reprimand history
// @Tags Reprimands
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/reprimands [get]
func (h *ReprimandHandler) ListByStudent(c *gin.Context) {
	reprimands, err := h.reprimands.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reprimands, nil)
}

// Levels godoc
// @Summary Reprimand severity catalog
// @Tags Reprimands
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reprimands/levels [get]
func (h *ReprimandHandler) Levels(c *gin.Context) {
	levels, err := h.reprimands.Levels(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, levels, nil)
}

// Sign godoc
// @Summary Capture the student's signature on a reprimand
// @Tags Reprimands
// @Accept json
// @Produce json
// @Param id path string true "Reprimand ID"
// @Param payload body signatureRequest true "Signature"
// @Success 204
// @Security BearerAuth
// @Router /reprimands/{id}/signature [put]
func (h *ReprimandHandler) Sign(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.reprimands.AttachSignature(c.Request.Context(), c.Param("id"), req.Signature); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Slip godoc
// @Summary Download the printable reprimand slip
// @Tags Reprimands
// @Produce application/pdf
// @Param id path string true "Reprimand ID"
// @Success 200 {string} string "PDF payload"
// @Security BearerAuth
// @Router /reprimands/{id}/slip [get]
func (h *ReprimandHandler) Slip(c *gin.Context) {
	payload, filename, err := h.reprimands.Slip(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", payload)
}
