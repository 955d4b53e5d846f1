package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dormi-app/dormi-api/internal/models"
	appErrors "github.com/dormi-app/dormi-api/pkg/errors"
)

// UserRepository manages accounts, credentials, and FCM tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Find returns an account, or nil when absent.
func (r *UserRepository) Find(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user,
		"SELECT id, password_hash, role, fcm_token, created_at FROM users WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

// Profile joins the account with its student or staff person row.
func (r *UserRepository) Profile(ctx context.Context, id string) (*models.Profile, error) {
	query := `SELECT u.id AS user_id, u.role,
	COALESCE(s.full_name, st.full_name, '') AS full_name,
	COALESCE(s.email, st.email, '') AS email,
	s.career, s.dormitory_id, s.hallway_id, s.room_id
FROM users u
LEFT JOIN students s ON s.id = u.id
LEFT JOIN staff st ON st.id = u.id
WHERE u.id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return &profile, nil
}

// Register creates the account and its person row in one transaction.
func (r *UserRepository) Register(ctx context.Context, user *models.User, fullName, career, email string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin register transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (id, password_hash, role, created_at) VALUES ($1, $2, $3, $4)`,
		user.ID, user.PasswordHash, user.Role, user.CreatedAt); err != nil {
		return mapWriteError(err, "insert user")
	}

	switch user.Role {
	case models.UserRoleStudent, models.UserRoleMonitor:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO students (id, full_name, career, email, created_at) VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`,
			user.ID, fullName, career, email, user.CreatedAt); err != nil {
			return mapWriteError(err, "insert student")
		}
	case models.UserRolePreceptor:
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO staff (id, full_name, email, created_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`,
			user.ID, fullName, email, user.CreatedAt); err != nil {
			return mapWriteError(err, "insert staff")
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit register transaction")
	}
	committed = true
	return nil
}

// FindIDByEmail resolves an account ID from a student or staff email.
func (r *UserRepository) FindIDByEmail(ctx context.Context, email string) (string, error) {
	query := `SELECT id FROM students WHERE TRIM(email) = $1
UNION
SELECT id FROM staff WHERE TRIM(email) = $1
LIMIT 1`
	var id string
	if err := r.db.GetContext(ctx, &id, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}
	return id, nil
}

// UpdatePassword rewrites an account's credential hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, id); err != nil {
		return mapWriteError(err, "update password")
	}
	return nil
}

// UpdateFCMToken stores the push token for an account.
func (r *UserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE users SET fcm_token = $1 WHERE id = $2", token, id); err != nil {
		return mapWriteError(err, "update fcm token")
	}
	return nil
}

// FCMToken returns the push token for an account; empty when unset.
func (r *UserRepository) FCMToken(ctx context.Context, id string) (string, error) {
	var token sql.NullString
	if err := r.db.GetContext(ctx, &token, "SELECT fcm_token FROM users WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load fcm token: %w", err)
	}
	if !token.Valid {
		return "", nil
	}
	return token.String, nil
}

// Monitors lists monitor accounts with their student names.
func (r *UserRepository) Monitors(ctx context.Context) ([]models.MonitorRow, error) {
	query := `SELECT u.id AS user_id, s.full_name
FROM users u
JOIN students s ON s.id = u.id
WHERE u.role = $1
ORDER BY s.full_name ASC`
	var rows []models.MonitorRow
	if err := r.db.SelectContext(ctx, &rows, query, models.UserRoleMonitor); err != nil {
		return nil, fmt.Errorf("list monitors: %w", err)
	}
	return rows, nil
}

// UpdateRole switches an account between monitor and student. Demotion
// clears any hallway/dormitory oversight fields on the student row.
func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.UserRole) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "begin role transaction")
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, "UPDATE users SET role = $1 WHERE id = $2", role, id); err != nil {
		return mapWriteError(err, "update role")
	}
	if role == models.UserRoleStudent {
		if _, err := tx.ExecContext(ctx,
			"UPDATE students SET hallway_id = NULL, dormitory_id = NULL WHERE id = $1", id); err != nil {
			return mapWriteError(err, "clear monitor assignment")
		}
	}

	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(err, appErrors.ErrDataAccess.Code, appErrors.ErrDataAccess.Status, "commit role transaction")
	}
	committed = true
	return nil
}
