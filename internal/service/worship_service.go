package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type worshipStore interface {
	Services(ctx context.Context) ([]models.WorshipService, error)
	FindService(ctx context.Context, id int) (*models.WorshipService, error)
	RegisterAttendance(ctx context.Context, att *models.Attendance) error
	Attendees(ctx context.Context, serviceID int, date time.Time) ([]models.AttendanceRow, error)
	Absentees(ctx context.Context, serviceID int, date time.Time) ([]models.AbsenteeRow, error)
}

// WorshipService covers the service catalog and roll-call attendance.
type WorshipService struct {
	repo      worshipStore
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewWorshipService constructs the service.
func NewWorshipService(repo worshipStore, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *WorshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorshipService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

// Services lists the worship service catalog, cached.
func (s *WorshipService) Services(ctx context.Context) ([]models.WorshipService, error) {
	const key = "catalog:worship_services"
	var services []models.WorshipService
	hit, _ := s.cache.Get(ctx, key, &services)
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return services, nil
	}

	services, err := s.repo.Services(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load worship services")
	}
	if err := s.cache.Set(ctx, key, services, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache worship services", zap.Error(err))
	}
	return services, nil
}

// RegisterAttendanceRequest marks one student present at a service.
type RegisterAttendanceRequest struct {
	StudentID    string     `json:"student_id" validate:"required"`
	ServiceID    int        `json:"service_id" validate:"required"`
	RegisteredBy string     `json:"registered_by" validate:"required"`
	Date         *time.Time `json:"date"`
}

// RegisterAttendance persists a presence record.
func (s *WorshipService) RegisterAttendance(ctx context.Context, req RegisterAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	att := &models.Attendance{
		StudentID:    req.StudentID,
		ServiceID:    req.ServiceID,
		Date:         date,
		RegisteredBy: req.RegisteredBy,
	}
	if err := s.repo.RegisterAttendance(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

// Attendees lists students marked present for a service on a date.
func (s *WorshipService) Attendees(ctx context.Context, serviceID int, date time.Time) ([]models.AttendanceRow, error) {
	if serviceID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service id is required")
	}
	rows, err := s.repo.Attendees(ctx, serviceID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list attendees")
	}
	return rows, nil
}

// Absentees lists students with no presence record for a service on a date,
// the input for the bulk absence batch.
func (s *WorshipService) Absentees(ctx context.Context, serviceID int, date time.Time) ([]models.AbsenteeRow, error) {
	if serviceID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "service id is required")
	}
	svc, err := s.repo.FindService(ctx, serviceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to resolve service")
	}
	if svc == nil {
		return nil, appErrors.Clone(appErrors.ErrReference, "referenced service does not exist")
	}
	rows, err := s.repo.Absentees(ctx, serviceID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list absentees")
	}
	return rows, nil
}
