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

// ReprimandRepository persists formal reprimands and the severity catalog.
type ReprimandRepository struct {
	db *sqlx.DB
}

// NewReprimandRepository constructs the repository.
func NewReprimandRepository(db *sqlx.DB) *ReprimandRepository {
	return &ReprimandRepository{db: db}
}

// Create inserts a manually issued reprimand.
func (r *ReprimandRepository) Create(ctx context.Context, rep *models.Reprimand) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rep.IssuedAt.IsZero() {
		rep.IssuedAt = now
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = now
	}
	if _, err := r.db.ExecContext(ctx, insertReprimandQuery,
		rep.ID, rep.StudentID, rep.IssuedBy, rep.Severity, rep.Reason,
		rep.IssuedAt, rep.TriggerReportID, rep.CreatedAt,
	); err != nil {
		return mapWriteError(err, "insert reprimand")
	}
	return nil
}

const reprimandSelect = `SELECT p.id, p.student_id, p.issued_by, p.severity, p.reason, p.issued_at,
	p.trigger_report_id, p.signature, p.signed_at, p.created_at,
	s.full_name AS student_name, st.full_name AS issuer_name, l.name AS level_name
FROM reprimands p
JOIN students s ON s.id = p.student_id
JOIN staff st ON st.id = p.issued_by
JOIN reprimand_levels l ON l.severity = p.severity`

// List returns all reprimands, newest first.
func (r *ReprimandRepository) List(ctx context.Context) ([]models.ReprimandDetail, error) {
	var rows []models.ReprimandDetail
	if err := r.db.SelectContext(ctx, &rows, reprimandSelect+" ORDER BY p.issued_at DESC"); err != nil {
		return nil, fmt.Errorf("list reprimands: %w", err)
	}
	return rows, nil
}

// ListByStudent returns a student's reprimands, newest first.
func (r *ReprimandRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ReprimandDetail, error) {
	var rows []models.ReprimandDetail
	if err := r.db.SelectContext(ctx, &rows, reprimandSelect+" WHERE p.student_id = $1 ORDER BY p.issued_at DESC", studentID); err != nil {
		return nil, fmt.Errorf("list reprimands by student: %w", err)
	}
	return rows, nil
}

// Get fetches one reprimand with its catalog names. Returns nil when absent.
func (r *ReprimandRepository) Get(ctx context.Context, id string) (*models.ReprimandDetail, error) {
	var row models.ReprimandDetail
	if err := r.db.GetContext(ctx, &row, reprimandSelect+" WHERE p.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reprimand: %w", err)
	}
	return &row, nil
}

// Levels returns the severity catalog ordered least to most severe.
func (r *ReprimandRepository) Levels(ctx context.Context) ([]models.ReprimandLevel, error) {
	var rows []models.ReprimandLevel
	if err := r.db.SelectContext(ctx, &rows, "SELECT severity, name FROM reprimand_levels ORDER BY severity ASC"); err != nil {
		return nil, fmt.Errorf("list reprimand levels: %w", err)
	}
	return rows, nil
}

// AttachSignature stores a captured signature on a reprimand.
func (r *ReprimandRepository) AttachSignature(ctx context.Context, id, signature string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reprimands SET signature = $1, signed_at = $2 WHERE id = $3`,
		signature, time.Now().UTC(), id)
	if err != nil {
		return false, mapWriteError(err, "sign reprimand")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sign reprimand rows affected: %w", err)
	}
	return affected > 0, nil
}

// EnsureSystemIssuer asserts the reserved system staff row exists so the
// escalation path never hits a foreign-key failure at trigger time.
func (r *ReprimandRepository) EnsureSystemIssuer(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO staff (id, full_name, email, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`,
		models.SystemIssuerID, "System", "", time.Now().UTC()); err != nil {
		return mapWriteError(err, "ensure system issuer")
	}
	return nil
}
