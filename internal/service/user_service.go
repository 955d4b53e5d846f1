package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type userAdminStore interface {
	Profile(ctx context.Context, id string) (*models.Profile, error)
	Monitors(ctx context.Context) ([]models.MonitorRow, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
}

// UserService covers account administration: profiles, the monitor roster,
// and promotions between student and monitor.
type UserService struct {
	repo   userAdminStore
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userAdminStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// Profile returns the combined account and person data.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	profile, err := s.repo.Profile(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load profile")
	}
	if profile == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return profile, nil
}

// Monitors lists monitor accounts.
func (s *UserService) Monitors(ctx context.Context) ([]models.MonitorRow, error) {
	monitors, err := s.repo.Monitors(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list monitors")
	}
	return monitors, nil
}

// UpdateRole promotes a student to monitor or demotes a monitor back.
// Preceptor accounts are not touched through this path.
func (s *UserService) UpdateRole(ctx context.Context, userID string, role models.UserRole) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user id is required")
	}
	if role != models.UserRoleMonitor && role != models.UserRoleStudent {
		return appErrors.Clone(appErrors.ErrValidation, "role must be monitor or student")
	}
	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}
	s.logger.Info("user role updated", zap.String("user_id", userID), zap.Int("role", int(role)))
	return nil
}
