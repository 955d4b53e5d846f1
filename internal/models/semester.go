package models

import "time"

// Semester is an academic period; exactly one is active at a time.
type Semester struct {
	ID        int        `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndedAt   *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	Active    bool       `db:"active" json:"active"`
}
