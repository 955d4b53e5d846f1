package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	"github.com/dormi-app/dormi-api/internal/notify"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
	"github.com/dormi-app/dormi-api/pkg/export"
)

type reprimandStore interface {
	Create(ctx context.Context, rep *models.Reprimand) error
	List(ctx context.Context) ([]models.ReprimandDetail, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ReprimandDetail, error)
	Get(ctx context.Context, id string) (*models.ReprimandDetail, error)
	Levels(ctx context.Context) ([]models.ReprimandLevel, error)
	AttachSignature(ctx context.Context, id, signature string) (bool, error)
}

type slipRenderer interface {
	RenderSlip(slip export.Slip) ([]byte, error)
}

// ReprimandService covers manually issued reprimands, listings, the severity
// catalog, signature capture, and the printable slip.
type ReprimandService struct {
	repo      reprimandStore
	cache     *CacheService
	cacheTTL  time.Duration
	exporter  slipRenderer
	notifier  dispatcher
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReprimandService constructs the service.
func NewReprimandService(repo reprimandStore, cache *CacheService, cacheTTL time.Duration, exporter slipRenderer, notifier dispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *ReprimandService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReprimandService{repo: repo, cache: cache, cacheTTL: cacheTTL, exporter: exporter, notifier: notifier, metrics: metrics, validator: validate, logger: logger}
}

// RegisterReprimandRequest is the payload for a manual reprimand.
type RegisterReprimandRequest struct {
	StudentID string     `json:"student_id" validate:"required"`
	IssuedBy  string     `json:"issued_by" validate:"required"`
	Severity  int        `json:"severity" validate:"required,min=1"`
	Reason    string     `json:"reason" validate:"required"`
	IssuedAt  *time.Time `json:"issued_at"`
}

// Register creates a reprimand issued directly by a preceptor, outside the
// automatic escalation path.
func (s *ReprimandService) Register(ctx context.Context, req RegisterReprimandRequest) (*models.Reprimand, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reprimand payload")
	}

	issuedAt := time.Now().UTC()
	if req.IssuedAt != nil {
		issuedAt = req.IssuedAt.UTC()
	}
	rep := &models.Reprimand{
		StudentID: req.StudentID,
		IssuedBy:  req.IssuedBy,
		Severity:  req.Severity,
		Reason:    req.Reason,
		IssuedAt:  issuedAt,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		return nil, err
	}

	s.metrics.RecordReprimand("manual")
	if s.notifier != nil {
		s.notifier.Send(notify.Message{
			UserID: rep.StudentID,
			Title:  "Reprimand issued",
			Body:   rep.Reason,
		})
	}
	return rep, nil
}

// List returns all reprimands with resolved names.
func (s *ReprimandService) List(ctx context.Context) ([]models.ReprimandDetail, error) {
	reprimands, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list reprimands")
	}
	return reprimands, nil
}

// ListByStudent returns one student's reprimand history.
func (s *ReprimandService) ListByStudent(ctx context.Context, studentID string) ([]models.ReprimandDetail, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	reprimands, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list student reprimands")
	}
	return reprimands, nil
}

// Levels returns the severity catalog, cached since it rarely changes.
func (s *ReprimandService) Levels(ctx context.Context) ([]models.ReprimandLevel, error) {
	const key = "catalog:reprimand_levels"
	var levels []models.ReprimandLevel
	hit, _ := s.cache.Get(ctx, key, &levels)
	s.metrics.RecordCacheLookup(hit)
	if hit {
		return levels, nil
	}

	levels, err := s.repo.Levels(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load reprimand levels")
	}
	if err := s.cache.Set(ctx, key, levels, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache reprimand levels", zap.Error(err))
	}
	return levels, nil
}

// AttachSignature records the student's acknowledgement.
func (s *ReprimandService) AttachSignature(ctx context.Context, id, signature string) error {
	if id == "" || signature == "" {
		return appErrors.Clone(appErrors.ErrValidation, "reprimand id and signature are required")
	}
	ok, err := s.repo.AttachSignature(ctx, id, signature)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to attach signature")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "reprimand not found")
	}
	return nil
}

// Slip renders the printable PDF for one reprimand.
func (s *ReprimandService) Slip(ctx context.Context, id string) ([]byte, string, error) {
	if id == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "reprimand id is required")
	}
	detail, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load reprimand")
	}
	if detail == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "reprimand not found")
	}

	payload, err := s.exporter.RenderSlip(export.Slip{
		ReprimandID: detail.ID,
		StudentName: detail.StudentName,
		StudentID:   detail.StudentID,
		LevelName:   detail.LevelName,
		Reason:      detail.Reason,
		IssuerName:  detail.IssuerName,
		IssuedAt:    detail.IssuedAt,
		Signed:      detail.Signature != nil,
	})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render reprimand slip")
	}
	filename := fmt.Sprintf("reprimand-%s.pdf", detail.ID)
	return payload, filename, nil
}
