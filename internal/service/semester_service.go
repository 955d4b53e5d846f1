package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type semesterStore interface {
	Active(ctx context.Context) (*models.Semester, error)
	List(ctx context.Context) ([]models.Semester, error)
	Close(ctx context.Context, newName string) error
}

// SemesterService manages academic periods. Closing the active semester
// opens the next one and clears every student's room assignment.
type SemesterService struct {
	repo   semesterStore
	logger *zap.Logger
}

// NewSemesterService constructs the service.
func NewSemesterService(repo semesterStore, logger *zap.Logger) *SemesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{repo: repo, logger: logger}
}

// Active returns the current semester.
func (s *SemesterService) Active(ctx context.Context) (*models.Semester, error) {
	semester, err := s.repo.Active(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load active semester")
	}
	if semester == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
	}
	return semester, nil
}

// List returns all semesters, newest first.
func (s *SemesterService) List(ctx context.Context) ([]models.Semester, error) {
	semesters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list semesters")
	}
	return semesters, nil
}

// Close ends the active semester and opens a new one with the given name.
func (s *SemesterService) Close(ctx context.Context, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return appErrors.Clone(appErrors.ErrValidation, "new semester name is required")
	}
	if err := s.repo.Close(ctx, newName); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to close semester")
	}
	s.logger.Info("semester closed", zap.String("next", newName))
	return nil
}
