package models

// Dormitory is a residence building.
type Dormitory struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Hallway groups rooms inside a dormitory.
type Hallway struct {
	ID          int    `db:"id" json:"id"`
	DormitoryID int    `db:"dormitory_id" json:"dormitory_id"`
	Name        string `db:"name" json:"name"`
}

// Room is an assignable dormitory room.
type Room struct {
	ID        int    `db:"id" json:"id"`
	HallwayID int    `db:"hallway_id" json:"hallway_id"`
	Number    string `db:"number" json:"number"`
	Capacity  int    `db:"capacity" json:"capacity"`
}

// OccupancyRow is one (room, occupant) pair of the occupancy map; rooms with
// no occupants appear once with a null student name.
type OccupancyRow struct {
	HallwayName string  `db:"hallway_name" json:"hallway_name"`
	RoomID      int     `db:"room_id" json:"room_id"`
	RoomNumber  string  `db:"room_number" json:"room_number"`
	Capacity    int     `db:"capacity" json:"capacity"`
	StudentName *string `db:"student_name" json:"student_name,omitempty"`
}
