package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/service"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// ExportHandler exposes archived document downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// SlipLink godoc
// @Summary Mint a signed download link for a reprimand slip
// @Tags Reprimands
// @Produce json
// @Param id path string true "Reprimand ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reprimands/{id}/slip-link [get]
func (h *ExportHandler) SlipLink(c *gin.Context) {
	link, err := h.exports.SlipLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Fetch an archived document through a signed link
// @Tags Reprimands
// @Produce application/pdf
// @Param token path string true "Download token"
// @Success 200 {string} string "File payload"
// @Router /downloads/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, filename, err := h.exports.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
