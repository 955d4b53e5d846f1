package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

type studentStore interface {
	List(ctx context.Context) ([]models.StudentDetail, error)
	Find(ctx context.Context, id string) (*models.StudentDetail, error)
	Update(ctx context.Context, id, fullName, career string, roomID *int) error
	AssignRoom(ctx context.Context, a models.RoomAssignment) error
}

type studentReportSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ReportDetail, error)
}

type studentReprimandSource interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ReprimandDetail, error)
}

// StudentService covers resident profiles and room assignments.
type StudentService struct {
	repo       studentStore
	reports    studentReportSource
	reprimands studentReprimandSource
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewStudentService constructs the service.
func NewStudentService(repo studentStore, reports studentReportSource, reprimands studentReprimandSource, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, reports: reports, reprimands: reprimands, validator: validate, logger: logger}
}

// List returns every resident with their room number.
func (s *StudentService) List(ctx context.Context) ([]models.StudentDetail, error) {
	students, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to list students")
	}
	return students, nil
}

// StudentRecord bundles a resident with their disciplinary history.
type StudentRecord struct {
	Student    models.StudentDetail     `json:"student"`
	Reports    []models.ReportDetail    `json:"reports"`
	Reprimands []models.ReprimandDetail `json:"reprimands"`
}

// Record returns a resident's profile with reports and reprimands.
func (s *StudentService) Record(ctx context.Context, studentID string) (*StudentRecord, error) {
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	student, err := s.repo.Find(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load student")
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}

	reports, err := s.reports.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load student reports")
	}
	reprimands, err := s.reprimands.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "failed to load student reprimands")
	}

	return &StudentRecord{Student: *student, Reports: reports, Reprimands: reprimands}, nil
}

// UpdateStudentRequest edits a resident profile.
type UpdateStudentRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Career   string `json:"career" validate:"required"`
	RoomID   *int   `json:"room_id"`
}

// Update edits a resident's profile fields.
func (s *StudentService) Update(ctx context.Context, studentID string, req UpdateStudentRequest) error {
	if studentID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.repo.Update(ctx, studentID, req.FullName, req.Career, req.RoomID); err != nil {
		return err
	}
	return nil
}

// AssignRoomRequest places a resident in a room.
type AssignRoomRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	DormitoryID int    `json:"dormitory_id" validate:"required"`
	HallwayID   int    `json:"hallway_id" validate:"required"`
	RoomID      int    `json:"room_id" validate:"required"`
}

// AssignRoom places a resident in a dormitory/hallway/room triple.
func (s *StudentService) AssignRoom(ctx context.Context, req AssignRoomRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room assignment payload")
	}
	if err := s.repo.AssignRoom(ctx, models.RoomAssignment{
		StudentID:   req.StudentID,
		DormitoryID: req.DormitoryID,
		HallwayID:   req.HallwayID,
		RoomID:      req.RoomID,
	}); err != nil {
		return err
	}
	return nil
}
