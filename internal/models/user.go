package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole is the application-level role of an account.
type UserRole int

const (
	UserRolePreceptor UserRole = 1
	UserRoleMonitor   UserRole = 2
	UserRoleStudent   UserRole = 3
)

// Valid reports whether the role is a known value.
func (r UserRole) Valid() bool {
	switch r {
	case UserRolePreceptor, UserRoleMonitor, UserRoleStudent:
		return true
	default:
		return false
	}
}

// User is an account row; the ID equals the student enrollment number or the
// staff employee key it belongs to.
type User struct {
	ID           string    `db:"id" json:"id"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FCMToken     *string   `db:"fcm_token" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile is the login payload combining account and person data.
type Profile struct {
	UserID      string   `db:"user_id" json:"user_id"`
	Role        UserRole `db:"role" json:"role"`
	FullName    string   `db:"full_name" json:"full_name"`
	Email       string   `db:"email" json:"email"`
	Career      *string  `db:"career" json:"career,omitempty"`
	DormitoryID *int     `db:"dormitory_id" json:"dormitory_id,omitempty"`
	HallwayID   *int     `db:"hallway_id" json:"hallway_id,omitempty"`
	RoomID      *int     `db:"room_id" json:"room_id,omitempty"`
}

// MonitorRow lists a monitor account with its student name.
type MonitorRow struct {
	UserID   string `db:"user_id" json:"user_id"`
	FullName string `db:"full_name" json:"full_name"`
}

// JWTClaims are the token claims carried by authenticated requests.
type JWTClaims struct {
	UserID string   `json:"uid"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}
