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

type absenceReportStore interface {
	CreateBatchWithEscalation(ctx context.Context, reports []*models.Report, check repository.EscalationCheck) ([]repository.SubmitResult, error)
}

type absenceServiceCatalog interface {
	FindService(ctx context.Context, id int) (*models.WorshipService, error)
}

// AbsenceService turns a roll-call absentee list into one all-or-nothing
// batch of service absence reports.
type AbsenceService struct {
	reports   absenceReportStore
	catalog   absenceServiceCatalog
	policy    escalation.Policy
	notifier  dispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs the service.
func NewAbsenceService(reports absenceReportStore, catalog absenceServiceCatalog, policy escalation.Policy, notifier dispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{reports: reports, catalog: catalog, policy: policy, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// ReportAbsencesRequest lists the students absent from one service on a date.
type ReportAbsencesRequest struct {
	ServiceID    int        `json:"service_id" validate:"required"`
	RegisteredBy string     `json:"registered_by" validate:"required"`
	Date         *time.Time `json:"date"`
	StudentIDs   []string   `json:"student_ids" validate:"required,min=1,dive,required"`
}

// ReportAbsencesResult summarises a committed batch.
type ReportAbsencesResult struct {
	Processed  int                       `json:"processed"`
	Reprimands int                       `json:"reprimands"`
	Results    []repository.SubmitResult `json:"results"`
}

// ReportAbsences files one report per absent student inside a single
// transaction. Either every absence lands or none does. Each student's
// escalation threshold is evaluated independently against their own count.
func (s *AbsenceService) ReportAbsences(ctx context.Context, req ReportAbsencesRequest) (*ReportAbsencesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence batch payload")
	}

	svc, err := s.catalog.FindService(ctx, req.ServiceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to resolve service")
	}
	if svc == nil {
		return nil, appErrors.Clone(appErrors.ErrReference, "referenced service does not exist")
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}

	reason := fmt.Sprintf("Unexcused absence from: %s", svc.Name)
	approvedAt := time.Now().UTC()
	reports := make([]*models.Report, 0, len(req.StudentIDs))
	for _, studentID := range req.StudentIDs {
		registeredBy := req.RegisteredBy
		reports = append(reports, &models.Report{
			StudentID:  studentID,
			ReportedBy: registeredBy,
			AuthorRole: models.RoleMonitor,
			Category:   models.CategoryServiceAbsence,
			Reason:     reason,
			Status:     models.ReportStatusApproved,
			ApprovedBy: &registeredBy,
			ApprovedAt: &approvedAt,
			ReportedAt: date,
		})
	}

	started := time.Now()
	results, err := s.reports.CreateBatchWithEscalation(ctx, reports, func(count int) escalation.Decision {
		return s.policy.Decide(models.CategoryServiceAbsence, svc.Name, count, date)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveEscalation(time.Since(started))

	out := &ReportAbsencesResult{Processed: len(results), Results: results}
	for i := range results {
		s.metrics.RecordReport(string(models.CategoryServiceAbsence))
		if s.notifier != nil {
			s.notifier.Send(notify.Message{
				UserID: results[i].Report.StudentID,
				Title:  "Service absence recorded",
				Body:   reason,
			})
		}
		if results[i].Reprimand != nil {
			out.Reprimands++
			s.metrics.RecordReprimand("automatic")
			if s.notifier != nil {
				s.notifier.Send(notify.Message{
					UserID: results[i].Reprimand.StudentID,
					Title:  "Reprimand issued",
					Body:   results[i].Reprimand.Reason,
				})
			}
		}
	}
	return out, nil
}
