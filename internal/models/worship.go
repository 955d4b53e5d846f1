package models

import "time"

// WorshipService is a catalog entry for a religious service type. The display
// name participates in divisor resolution for absence escalation.
type WorshipService struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Attendance records that a student was present at a service on a date.
type Attendance struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	ServiceID    int       `db:"service_id" json:"service_id"`
	Date         time.Time `db:"date" json:"date"`
	RegisteredBy string    `db:"registered_by" json:"registered_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AttendanceRow joins the student name for roll-call views.
type AttendanceRow struct {
	ID          string `db:"id" json:"id"`
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
}

// AbsenteeRow is a student missing from a service's attendance list.
type AbsenteeRow struct {
	StudentID   string `db:"student_id" json:"student_id"`
	StudentName string `db:"student_name" json:"student_name"`
	Career      string `db:"career" json:"career"`
}
