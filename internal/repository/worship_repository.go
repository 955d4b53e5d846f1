package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/models"
)

// WorshipRepository persists service attendance and the service-type catalog.
type WorshipRepository struct {
	db *sqlx.DB
}

// NewWorshipRepository constructs the repository.
func NewWorshipRepository(db *sqlx.DB) *WorshipRepository {
	return &WorshipRepository{db: db}
}

// Services returns the service-type catalog ordered by name.
func (r *WorshipRepository) Services(ctx context.Context) ([]models.WorshipService, error) {
	var rows []models.WorshipService
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, name FROM worship_services ORDER BY name ASC"); err != nil {
		return nil, fmt.Errorf("list worship services: %w", err)
	}
	return rows, nil
}

// FindService resolves a service type by ID. Returns nil when absent.
func (r *WorshipRepository) FindService(ctx context.Context, id int) (*models.WorshipService, error) {
	var svc models.WorshipService
	if err := r.db.GetContext(ctx, &svc, "SELECT id, name FROM worship_services WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find worship service: %w", err)
	}
	return &svc, nil
}

// FindServiceByName resolves a service type by exact display name.
func (r *WorshipRepository) FindServiceByName(ctx context.Context, name string) (*models.WorshipService, error) {
	var svc models.WorshipService
	if err := r.db.GetContext(ctx, &svc, "SELECT id, name FROM worship_services WHERE name = $1", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find worship service by name: %w", err)
	}
	return &svc, nil
}

// RegisterAttendance records a student's presence at a service.
func (r *WorshipRepository) RegisterAttendance(ctx context.Context, att *models.Attendance) error {
	if att.ID == "" {
		att.ID = uuid.NewString()
	}
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO worship_attendance (id, student_id, service_id, date, registered_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`,
		att.ID, att.StudentID, att.ServiceID, att.Date, att.RegisteredBy, att.CreatedAt,
	); err != nil {
		return mapWriteError(err, "insert attendance")
	}
	return nil
}

// Attendees lists students present at a service on a date.
func (r *WorshipRepository) Attendees(ctx context.Context, serviceID int, date time.Time) ([]models.AttendanceRow, error) {
	query := `SELECT a.id, a.student_id, s.full_name AS student_name
FROM worship_attendance a
JOIN students s ON s.id = a.student_id
WHERE a.service_id = $1 AND a.date = $2
ORDER BY s.full_name`
	var rows []models.AttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, serviceID, date); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return rows, nil
}

// Absentees lists students with no attendance row for a service on a date.
func (r *WorshipRepository) Absentees(ctx context.Context, serviceID int, date time.Time) ([]models.AbsenteeRow, error) {
	query := `SELECT s.id AS student_id, s.full_name AS student_name, s.career
FROM students s
WHERE s.id NOT IN (
	SELECT student_id FROM worship_attendance WHERE service_id = $1 AND date = $2
)
ORDER BY s.full_name`
	var rows []models.AbsenteeRow
	if err := r.db.SelectContext(ctx, &rows, query, serviceID, date); err != nil {
		return nil, fmt.Errorf("list absentees: %w", err)
	}
	return rows, nil
}
