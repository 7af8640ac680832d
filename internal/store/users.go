package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/models"
)

type CreateUserRequest struct {
	Name         string
	Email        string
	PasswordHash string
	Role         models.Role
	Phone        string
	Address      string
	Pincode      string
	City         string
	State        string
	OTP          string
	OTPExpires   time.Time
}

const userColumns = `id, name, email, password_hash, role, status, phone, address, pincode, city, state,
	 COALESCE(otp, ''), otp_expires, is_verified, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...interface{}) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.Phone,
		&user.Address,
		&user.Pincode,
		&user.City,
		&user.State,
		&user.OTP,
		&user.OTPExpires,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(ctx context.Context, db *sql.DB, req CreateUserRequest) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, status, phone, address, pincode, city, state,
		                   otp, otp_expires, is_verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'active', $5, $6, $7, $8, $9, $10, $11, FALSE, NOW(), NOW())
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query,
		req.Name, req.Email, req.PasswordHash, req.Role,
		req.Phone, req.Address, req.Pincode, req.City, req.State,
		req.OTP, req.OTPExpires))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// MarkUserVerified flips the verification flag and clears the OTP fields.
func MarkUserVerified(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users
		 SET is_verified = TRUE, otp = NULL, otp_expires = NULL, updated_at = NOW()
		 WHERE id = $1`,
		id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

func SetUserOTP(ctx context.Context, db *sql.DB, id int64, otp string, expires time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET otp = $1, otp_expires = $2, updated_at = NOW() WHERE id = $3`,
		otp, expires, id)
	if err != nil {
		return fmt.Errorf("set user otp: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

// UpdateUserStatus toggles a user between active and blocked. A blocked
// user's token stops working on their next request.
func UpdateUserStatus(ctx context.Context, db *sql.DB, id int64, status models.UserStatus) (*models.User, error) {
	query := `
		UPDATE users SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user status: %w", err)
	}

	return user, nil
}

func ListUsers(ctx context.Context, db *sql.DB) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}

func CountUsersByRole(ctx context.Context, db *sql.DB, role models.Role) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return count, nil
}

func CountUsers(ctx context.Context, db *sql.DB) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

func CountUsersCreatedBetween(ctx context.Context, db *sql.DB, from, to time.Time) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE created_at >= $1 AND created_at < $2`,
		from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count users created between: %w", err)
	}
	return count, nil
}

func ListRecentUsers(ctx context.Context, db *sql.DB, since time.Time, limit int) ([]models.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE created_at >= $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := db.QueryContext(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return users, nil
}
