package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/models"
)

// StudentRepository manages residents and their room assignments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentSelect = `SELECT s.id, s.full_name, s.career, s.email, s.dormitory_id, s.hallway_id, s.room_id, s.created_at,
	rm.number AS room_number
FROM students s
LEFT JOIN rooms rm ON rm.id = s.room_id`

// List returns all residents ordered by name.
func (r *StudentRepository) List(ctx context.Context) ([]models.StudentDetail, error) {
	var rows []models.StudentDetail
	if err := r.db.SelectContext(ctx, &rows, studentSelect+" ORDER BY s.full_name ASC"); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return rows, nil
}

// Find returns one resident, or nil when absent.
func (r *StudentRepository) Find(ctx context.Context, id string) (*models.StudentDetail, error) {
	var row models.StudentDetail
	if err := r.db.GetContext(ctx, &row, studentSelect+" WHERE s.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &row, nil
}

// Update rewrites a resident's basic fields.
func (r *StudentRepository) Update(ctx context.Context, id, fullName, career string, roomID *int) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE students SET full_name = $1, career = $2, room_id = $3 WHERE id = $4`,
		fullName, career, roomID, id); err != nil {
		return mapWriteError(err, "update student")
	}
	return nil
}

// AssignRoom places a student in a dormitory/hallway/room triple.
func (r *StudentRepository) AssignRoom(ctx context.Context, a models.RoomAssignment) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE students SET dormitory_id = $1, hallway_id = $2, room_id = $3 WHERE id = $4`,
		a.DormitoryID, a.HallwayID, a.RoomID, a.StudentID); err != nil {
		return mapWriteError(err, "assign room")
	}
	return nil
}
