package models

import "time"

// CleanlinessCriterion is a catalog row for a scored cleanliness aspect.
type CleanlinessCriterion struct {
	ID          int    `db:"id" json:"id"`
	Description string `db:"description" json:"description"`
}

// CleanlinessReview is one scored inspection of a room. Total is the item
// subtotal plus the general-order and discipline scores.
type CleanlinessReview struct {
	ID           string    `db:"id" json:"id"`
	RoomID       int       `db:"room_id" json:"room_id"`
	ReviewedBy   string    `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt   time.Time `db:"reviewed_at" json:"reviewed_at"`
	GeneralOrder int       `db:"general_order" json:"general_order"`
	Discipline   int       `db:"discipline" json:"discipline"`
	Total        int       `db:"total" json:"total"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
}

// CleanlinessReviewItem is a per-criterion score within a review.
type CleanlinessReviewItem struct {
	ReviewID    string `db:"review_id" json:"review_id"`
	CriterionID int    `db:"criterion_id" json:"criterion_id"`
	Score       int    `db:"score" json:"score"`
}

// ReviewItemDetail carries the criterion description for detail views.
type ReviewItemDetail struct {
	Criterion string `db:"criterion" json:"criterion"`
	Score     int    `db:"score" json:"score"`
}

// ReviewDetail is the latest review of a room with its item breakdown.
type ReviewDetail struct {
	CleanlinessReview
	ReviewerName string             `db:"reviewer_name" json:"reviewer_name"`
	RoomNumber   string             `db:"room_number" json:"room_number"`
	Subtotal     int                `db:"subtotal" json:"subtotal"`
	Items        []ReviewItemDetail `json:"items"`
}

// ReviewHistoryRow is one historical review of a room.
type ReviewHistoryRow struct {
	ID           string    `db:"id" json:"id"`
	ReviewedAt   time.Time `db:"reviewed_at" json:"reviewed_at"`
	Total        int       `db:"total" json:"total"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name"`
}

// RoomScoreRow pairs a room with its most recent total.
type RoomScoreRow struct {
	RoomID      int    `db:"room_id" json:"room_id"`
	RoomNumber  string `db:"room_number" json:"room_number"`
	HallwayID   int    `db:"hallway_id" json:"hallway_id"`
	LatestScore *int   `db:"latest_score" json:"latest_score,omitempty"`
}

// HallwayAverage aggregates review totals per hallway over a window.
type HallwayAverage struct {
	Hallway string  `db:"hallway" json:"hallway"`
	Average float64 `db:"average" json:"average"`
}

// CleanlinessStats is the two-window statistics payload: the running window
// since the last manual cutoff, and the published window between the two most
// recent cutoffs.
type CleanlinessStats struct {
	Current    []HallwayAverage `json:"current"`
	Published  []HallwayAverage `json:"published"`
	LastCutoff time.Time        `json:"last_cutoff"`
}

// CleanlinessCutoff marks a manual statistics reset point.
type CleanlinessCutoff struct {
	ID        string    `db:"id" json:"id"`
	CutAt     time.Time `db:"cut_at" json:"cut_at"`
	CutBy     string    `db:"cut_by" json:"cut_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
