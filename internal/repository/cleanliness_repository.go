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
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

// CleanlinessRepository persists room reviews, criteria, cutoffs, and the
// windowed hallway statistics.
type CleanlinessRepository struct {
	db *sqlx.DB
}

// NewCleanlinessRepository constructs the repository.
func NewCleanlinessRepository(db *sqlx.DB) *CleanlinessRepository {
	return &CleanlinessRepository{db: db}
}

// Criteria returns the scored-aspect catalog.
func (r *CleanlinessRepository) Criteria(ctx context.Context) ([]models.CleanlinessCriterion, error) {
	var rows []models.CleanlinessCriterion
	if err := r.db.SelectContext(ctx, &rows, "SELECT id, description FROM cleanliness_criteria ORDER BY id"); err != nil {
		return nil, fmt.Errorf("list cleanliness criteria: %w", err)
	}
	return rows, nil
}

// CreateReview inserts a review header and its per-criterion items in one
// transaction; a failing item rolls back the header.
func (r *CleanlinessRepository) CreateReview(ctx context.Context, review *models.CleanlinessReview, items []models.CleanlinessReviewItem) error {
	if review.ID == "" {
		review.ID = uuid.NewString()
	}
	if review.ReviewedAt.IsZero() {
		review.ReviewedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin review transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cleanliness_reviews (id, room_id, reviewed_by, reviewed_at, general_order, discipline, total, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		review.ID, review.RoomID, review.ReviewedBy, review.ReviewedAt,
		review.GeneralOrder, review.Discipline, review.Total, review.Notes,
	); err != nil {
		return mapWriteError(err, "insert cleanliness review")
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cleanliness_review_items (review_id, criterion_id, score) VALUES ($1, $2, $3)`,
			review.ID, item.CriterionID, item.Score,
		); err != nil {
			return mapWriteError(err, "insert review item")
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit review transaction")
	}
	committed = true
	return nil
}

// LatestReview returns the most recent review of a room with its item
// breakdown, or nil when the room has none.
func (r *CleanlinessRepository) LatestReview(ctx context.Context, roomID int) (*models.ReviewDetail, error) {
	headQuery := `SELECT cr.id, cr.room_id, cr.reviewed_by, cr.reviewed_at, cr.general_order, cr.discipline, cr.total, cr.notes,
	COALESCE(s.full_name, '') AS reviewer_name, rm.number AS room_number,
	(SELECT COALESCE(SUM(score), 0) FROM cleanliness_review_items WHERE review_id = cr.id) AS subtotal
FROM cleanliness_reviews cr
LEFT JOIN students s ON s.id = cr.reviewed_by
JOIN rooms rm ON rm.id = cr.room_id
WHERE cr.room_id = $1
ORDER BY cr.reviewed_at DESC, cr.id DESC
LIMIT 1`
	var detail models.ReviewDetail
	if err := r.db.GetContext(ctx, &detail, headQuery, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest review: %w", err)
	}

	itemsQuery := `SELECT c.description AS criterion, i.score
FROM cleanliness_review_items i
JOIN cleanliness_criteria c ON c.id = i.criterion_id
WHERE i.review_id = $1
ORDER BY c.id`
	if err := r.db.SelectContext(ctx, &detail.Items, itemsQuery, detail.ID); err != nil {
		return nil, fmt.Errorf("review items: %w", err)
	}
	return &detail, nil
}

// History returns all reviews of a room, newest first.
func (r *CleanlinessRepository) History(ctx context.Context, roomID int) ([]models.ReviewHistoryRow, error) {
	query := `SELECT cr.id, cr.reviewed_at, cr.total, COALESCE(s.full_name, '') AS reviewer_name
FROM cleanliness_reviews cr
LEFT JOIN students s ON s.id = cr.reviewed_by
WHERE cr.room_id = $1
ORDER BY cr.reviewed_at DESC, cr.id DESC`
	var rows []models.ReviewHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("review history: %w", err)
	}
	return rows, nil
}

// RoomScores pairs every room with its most recent total.
func (r *CleanlinessRepository) RoomScores(ctx context.Context) ([]models.RoomScoreRow, error) {
	query := `WITH latest AS (
	SELECT room_id, total, ROW_NUMBER() OVER (PARTITION BY room_id ORDER BY reviewed_at DESC, id DESC) AS rn
	FROM cleanliness_reviews
)
SELECT rm.id AS room_id, rm.number AS room_number, rm.hallway_id, l.total AS latest_score
FROM rooms rm
LEFT JOIN latest l ON l.room_id = rm.id AND l.rn = 1
ORDER BY rm.hallway_id, rm.number`
	var rows []models.RoomScoreRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("room scores: %w", err)
	}
	return rows, nil
}

// HallwayAverages aggregates review totals per hallway over (from, to],
// excluding Saturdays.
func (r *CleanlinessRepository) HallwayAverages(ctx context.Context, from, to time.Time) ([]models.HallwayAverage, error) {
	query := `SELECT COALESCE(h.name, 'Unassigned') AS hallway, AVG(cr.total::FLOAT) AS average
FROM cleanliness_reviews cr
JOIN rooms rm ON rm.id = cr.room_id
LEFT JOIN hallways h ON h.id = rm.hallway_id
WHERE cr.reviewed_at > $1 AND cr.reviewed_at <= $2
AND EXTRACT(DOW FROM cr.reviewed_at) <> 6
GROUP BY h.name
ORDER BY average DESC`
	var rows []models.HallwayAverage
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("hallway averages: %w", err)
	}
	return rows, nil
}

// RecentCutoffs returns up to limit manual cutoffs since a boundary, newest
// first.
func (r *CleanlinessRepository) RecentCutoffs(ctx context.Context, since time.Time, limit int) ([]models.CleanlinessCutoff, error) {
	if limit <= 0 {
		limit = 2
	}
	query := fmt.Sprintf(`SELECT id, cut_at, cut_by, created_at FROM cleanliness_cutoffs
WHERE cut_at >= $1 ORDER BY cut_at DESC LIMIT %d`, limit)
	var rows []models.CleanlinessCutoff
	if err := r.db.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, fmt.Errorf("recent cutoffs: %w", err)
	}
	return rows, nil
}

// CreateCutoff records a manual statistics reset point.
func (r *CleanlinessRepository) CreateCutoff(ctx context.Context, cutBy string) (*models.CleanlinessCutoff, error) {
	cutoff := &models.CleanlinessCutoff{
		ID:        uuid.NewString(),
		CutAt:     time.Now().UTC(),
		CutBy:     cutBy,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO cleanliness_cutoffs (id, cut_at, cut_by, created_at) VALUES ($1, $2, $3, $4)`,
		cutoff.ID, cutoff.CutAt, cutoff.CutBy, cutoff.CreatedAt,
	); err != nil {
		return nil, mapWriteError(err, "insert cutoff")
	}
	return cutoff, nil
}
