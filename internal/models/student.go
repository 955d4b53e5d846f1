package models

import "time"

// Student is a dormitory resident, keyed by enrollment number.
type Student struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Career      string    `db:"career" json:"career"`
	Email       string    `db:"email" json:"email"`
	DormitoryID *int      `db:"dormitory_id" json:"dormitory_id,omitempty"`
	HallwayID   *int      `db:"hallway_id" json:"hallway_id,omitempty"`
	RoomID      *int      `db:"room_id" json:"room_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// StudentDetail includes the resolved room number for list views.
type StudentDetail struct {
	Student
	RoomNumber *string `db:"room_number" json:"room_number,omitempty"`
}

// RoomAssignment places a student in a dormitory/hallway/room triple.
type RoomAssignment struct {
	StudentID   string `json:"student_id"`
	DormitoryID int    `json:"dormitory_id"`
	HallwayID   int    `json:"hallway_id"`
	RoomID      int    `json:"room_id"`
}

// Staff is a dormitory preceptor or the reserved system actor.
type Staff struct {
	ID          string    `db:"id" json:"id"`
	FullName    string    `db:"full_name" json:"full_name"`
	Email       string    `db:"email" json:"email"`
	DormitoryID *int      `db:"dormitory_id" json:"dormitory_id,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
