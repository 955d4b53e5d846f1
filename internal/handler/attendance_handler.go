package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dormi-app/dormi-api/internal/service"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/response"
)

// AttendanceHandler exposes roll-call and bulk absence endpoints.
type AttendanceHandler struct {
	worship  *service.WorshipService
	absences *service.AbsenceService
}

// NewAttendanceHandler constructs handler.
func NewAttendanceHandler(worship *service.WorshipService, absences *service.AbsenceService) *AttendanceHandler {
	return &AttendanceHandler{worship: worship, absences: absences}
}

// Services godoc
// @Summary Worship service catalog
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /services [get]
func (h *AttendanceHandler) Services(c *gin.Context) {
	services, err := h.worship.Services(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, services, nil)
}

// Register godoc
// @Summary Mark a student present at a service
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RegisterAttendanceRequest true "Attendance"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance [post]
func (h *AttendanceHandler) Register(c *gin.Context) {
	var req service.RegisterAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	att, err := h.worship.RegisterAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, att)
}

func rollCallParams(c *gin.Context) (int, time.Time, error) {
	serviceID, err := strconv.Atoi(c.Query("service_id"))
	if err != nil || serviceID <= 0 {
		return 0, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "service_id is required")
	}
	date := time.Now().UTC()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return 0, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		date = parsed
	}
	return serviceID, date, nil
}

// Attendees godoc
// @Summary Students present at a service on a date
// @Tags Attendance
// @Produce json
// @Param service_id query int true "Service ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/attendees [get]
func (h *AttendanceHandler) Attendees(c *gin.Context) {
	serviceID, date, err := rollCallParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.worship.Attendees(c.Request.Context(), serviceID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Absentees godoc
// @Summary Students missing from a service on a date
// @Tags Attendance
// @Produce json
// @Param service_id query int true "Service ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/absentees [get]
func (h *AttendanceHandler) Absentees(c *gin.Context) {
	serviceID, date, err := rollCallParams(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.worship.Absentees(c.Request.Context(), serviceID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ReportAbsences godoc
// @Summary File absence reports for every listed student in one transaction
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.ReportAbsencesRequest true "Absence batch"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/absences [post]
func (h *AttendanceHandler) ReportAbsences(c *gin.Context) {
	var req service.ReportAbsencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	result, err := h.absences.ReportAbsences(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
