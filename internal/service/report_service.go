package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/escalation"
	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/notify"
	"github.com/dormi-app/dormi-api/internal/repository"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type reportStore interface {
	CreateWithEscalation(ctx context.Context, report *models.Report, check repository.EscalationCheck) (*repository.SubmitResult, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, int, error)
	ListAll(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ReportDetail, error)
	Approve(ctx context.Context, reportID, approverID string) (bool, error)
	Reject(ctx context.Context, reportID string) (bool, error)
	AttachSignature(ctx context.Context, reportID, signature string) (bool, error)
}

type dispatcher interface {
	Send(msg notify.Message)
}

// ReportService owns the report lifecycle: submission with escalation,
// listing, the approval decision, and signature capture.
type ReportService struct {
	repo      reportStore
	policy    escalation.Policy
	notifier  dispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(repo reportStore, policy escalation.Policy, notifier dispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{repo: repo, policy: policy, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// SubmitReportRequest is the payload for filing a single report.
type SubmitReportRequest struct {
	StudentID  string     `json:"student_id" validate:"required"`
	ReportedBy string     `json:"reported_by" validate:"required"`
	AuthorRole string     `json:"author_role" validate:"required,oneof=Monitor Preceptor"`
	Category   string     `json:"category" validate:"required"`
	Reason     string     `json:"reason" validate:"required"`
	ReportedAt *time.Time `json:"reported_at"`
	// ServiceName refines the threshold for service absence reports.
	ServiceName string `json:"service_name"`
}

// SubmitReportResult reports what the submission produced.
type SubmitReportResult struct {
	Report    *models.Report    `json:"report"`
	Reprimand *models.Reprimand `json:"reprimand,omitempty"`
}

// Submit validates and persists a report. The repository runs the insert,
// the in-window recount, and the escalation decision in one transaction;
// notifications go out only after it commits.
func (s *ReportService) Submit(ctx context.Context, req SubmitReportRequest) (*SubmitReportResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	category := models.ReportCategory(req.Category)
	if !category.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown report category %q", req.Category))
	}

	reportedAt := time.Now().UTC()
	if req.ReportedAt != nil {
		reportedAt = req.ReportedAt.UTC()
	}

	report := &models.Report{
		StudentID:  req.StudentID,
		ReportedBy: req.ReportedBy,
		AuthorRole: models.AuthorRole(req.AuthorRole),
		Category:   category,
		Reason:     req.Reason,
		Status:     models.ReportStatusPending,
		ReportedAt: reportedAt,
	}
	if report.AuthorRole == models.RolePreceptor {
		report.Status = models.ReportStatusApproved
		report.ApprovedBy = &req.ReportedBy
		approvedAt := time.Now().UTC()
		report.ApprovedAt = &approvedAt
	}

	started := time.Now()
	result, err := s.repo.CreateWithEscalation(ctx, report, func(count int) escalation.Decision {
		return s.policy.Decide(category, req.ServiceName, count, reportedAt)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveEscalation(time.Since(started))
	s.metrics.RecordReport(string(category))

	s.notifyOutcome(result)

	return &SubmitReportResult{Report: result.Report, Reprimand: result.Reprimand}, nil
}

// List returns reports matching the filter with pagination.
func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	reports, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list reports")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return reports, pagination, nil
}

// Export returns every report matching the filter, unpaged, for file exports.
func (s *ReportService) Export(ctx context.Context, filter models.ReportFilter) ([]models.ReportDetail, error) {
	reports, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to export reports")
	}
	return reports, nil
}

// ListByStudent returns the full report history for one student.
func (s *ReportService) ListByStudent(ctx context.Context, studentID string) ([]models.ReportDetail, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	reports, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list student reports")
	}
	return reports, nil
}

// Approve moves a pending report to Approved.
func (s *ReportService) Approve(ctx context.Context, reportID, approverID string) error {
	if reportID == "" || approverID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "report id and approver id are required")
	}
	ok, err := s.repo.Approve(ctx, reportID, approverID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to approve report")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "report not found or not pending")
	}
	return nil
}

// Reject moves a pending report to Rejected.
func (s *ReportService) Reject(ctx context.Context, reportID string) error {
	if reportID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "report id is required")
	}
	ok, err := s.repo.Reject(ctx, reportID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to reject report")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "report not found or not pending")
	}
	return nil
}

// AttachSignature stores the student's acknowledgement signature.
func (s *ReportService) AttachSignature(ctx context.Context, reportID, signature string) error {
	if reportID == "" || signature == "" {
		return appErrors.Clone(appErrors.ErrValidation, "report id and signature are required")
	}
	ok, err := s.repo.AttachSignature(ctx, reportID, signature)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to attach signature")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	return nil
}

func (s *ReportService) notifyOutcome(result *repository.SubmitResult) {
	if s.notifier == nil || result == nil {
		return
	}
	s.notifier.Send(notify.Message{
		UserID: result.Report.StudentID,
		Title:  "New report on your record",
		Body:   fmt.Sprintf("%s: %s", result.Report.Category.DisplayName(), result.Report.Reason),
	})
	if result.Reprimand != nil {
		s.metrics.RecordReprimand("automatic")
		s.notifier.Send(notify.Message{
			UserID: result.Reprimand.StudentID,
			Title:  "Reprimand issued",
			Body:   result.Reprimand.Reason,
		})
	}
}
