package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

// SemesterRepository manages academic periods and the close-semester job.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Active returns the active semester, or nil when none is open.
func (r *SemesterRepository) Active(ctx context.Context) (*models.Semester, error) {
	var sem models.Semester
	if err := r.db.GetContext(ctx, &sem,
		"SELECT id, name, started_at, ended_at, active FROM semesters WHERE active = TRUE LIMIT 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("active semester: %w", err)
	}
	return &sem, nil
}

// Find returns a semester by ID, or nil when absent.
func (r *SemesterRepository) Find(ctx context.Context, id int) (*models.Semester, error) {
	var sem models.Semester
	if err := r.db.GetContext(ctx, &sem,
		"SELECT id, name, started_at, ended_at, active FROM semesters WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find semester: %w", err)
	}
	return &sem, nil
}

// List returns all semesters, newest first.
func (r *SemesterRepository) List(ctx context.Context) ([]models.Semester, error) {
	var rows []models.Semester
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT id, name, started_at, ended_at, active FROM semesters ORDER BY id DESC"); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return rows, nil
}

// Close ends the active semester, opens a new one, and clears all room
// assignments, atomically.
func (r *SemesterRepository) Close(ctx context.Context, newName string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin close-semester transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		"UPDATE semesters SET active = FALSE, ended_at = $1 WHERE active = TRUE", now); err != nil {
		return mapWriteError(err, "close active semester")
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO semesters (name, started_at, active) VALUES ($1, $2, TRUE)", newName, now); err != nil {
		return mapWriteError(err, "open new semester")
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE students SET room_id = NULL, hallway_id = NULL, dormitory_id = NULL"); err != nil {
		return mapWriteError(err, "clear room assignments")
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit close-semester transaction")
	}
	committed = true
	return nil
}
