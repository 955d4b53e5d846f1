package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/export"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// ReportHandler exposes report submission and lifecycle endpoints.
type ReportHandler struct {
	reports *service.ReportService
	csv     *export.CSVExporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, csv *export.CSVExporter) *ReportHandler {
	return &ReportHandler{reports: reports, csv: csv}
}

// Submit godoc
// @Summary Submit a report against a student
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body service.SubmitReportRequest true "Report"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) Submit(c *gin.Context) {
	var req service.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.reports.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List reports
// @Tags Reports
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param search query string false "Match student name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	filter := models.ReportFilter{
		StudentID: c.Query("student_id"),
		Search:    c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	reports, pagination, err := h.reports.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, pagination)
}

// ListByStudent godoc
// @Summary One student's report history
// @Tags Reports
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /students/{id}/reports [get]
func (h *ReportHandler) ListByStudent(c *gin.Context) {
	reports, err := h.reports.ListByStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reports, nil)
}

// Approve godoc
// @Summary Approve a pending report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 204
// @Security BearerAuth
// @Router /reports/{id}/approve [put]
func (h *ReportHandler) Approve(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.reports.Approve(c.Request.Context(), c.Param("id"), claims.UserID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reject godoc
// @Summary Reject a pending report
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 204
// @Security BearerAuth
// @Router /reports/{id}/reject [put]
func (h *ReportHandler) Reject(c *gin.Context) {
	if err := h.reports.Reject(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

type signatureRequest struct {
	Signature string `json:"signature"`
}

// Sign godoc
// @Summary Capture the student's signature on a report
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body signatureRequest true "Signature"
// @Success 204
// @Security BearerAuth
// @Router /reports/{id}/signature [put]
func (h *ReportHandler) Sign(c *gin.Context) {
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if err := h.reports.AttachSignature(c.Request.Context(), c.Param("id"), req.Signature); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Download the filtered report list as CSV
// @Tags Reports
// @Produce text/csv
// @Param student_id query string false "Filter by student"
// @Success 200 {string} string "CSV payload"
// @Security BearerAuth
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	filter := models.ReportFilter{StudentID: c.Query("student_id")}
	reports, err := h.reports.Export(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"Student", "Category", "Reason", "Status", "Reported By", "Reported At"},
	}
	for _, report := range reports {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Student":     report.StudentName,
			"Category":    report.Category.DisplayName(),
			"Reason":      report.Reason,
			"Status":      string(report.Status),
			"Reported By": report.ReporterName,
			"Reported At": report.ReportedAt.Format("2006-01-02 15:04"),
		})
	}

	payload, err := h.csv.Render(dataset)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "reports.csv"))
	c.Data(http.StatusOK, "text/csv", payload)
}
