package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/models"
)

// DormRepository reads the building/hallway/room inventory.
type DormRepository struct {
	db *sqlx.DB
}

// NewDormRepository constructs the repository.
func NewDormRepository(db *sqlx.DB) *DormRepository {
	return &DormRepository{db: db}
}

// Dormitories returns all residence buildings.
func (r *DormRepository) Dormitories(ctx context.Context) ([]models.Dormitory, error) {
	var rows []models.Dormitory
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, name FROM dormitories ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list dormitories: %w", err)
	}
	return rows, nil
}

// Hallways returns all hallways.
func (r *DormRepository) Hallways(ctx context.Context) ([]models.Hallway, error) {
	var rows []models.Hallway
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, dormitory_id, name FROM hallways ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list hallways: %w", err)
	}
	return rows, nil
}

// Rooms returns the rooms of one hallway.
func (r *DormRepository) Rooms(ctx context.Context, hallwayID int) ([]models.Room, error) {
	var rows []models.Room
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT id, hallway_id, number, capacity FROM rooms WHERE hallway_id = $1 ORDER BY number", hallwayID); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rows, nil
}

// Occupancy returns the flat (room, occupant) map grouped by the caller.
func (r *DormRepository) Occupancy(ctx context.Context) ([]models.OccupancyRow, error) {
	query := `SELECT h.name AS hallway_name, rm.id AS room_id, rm.number AS room_number, rm.capacity,
	s.full_name AS student_name
FROM hallways h
JOIN rooms rm ON rm.hallway_id = h.id
LEFT JOIN students s ON s.room_id = rm.id
ORDER BY h.name, rm.number`
	var rows []models.OccupancyRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("occupancy map: %w", err)
	}
	return rows, nil
}
