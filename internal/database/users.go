package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zapis/internal/models"
)

const userColumns = `id, name, phone, COALESCE(email, ''), bonus_points, total_visits, created_at, updated_at`

// UpsertUserByPhone creates a user or refreshes name/email for an existing
// phone number, matching the registration flow of the client.
func (db *DB) UpsertUserByPhone(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (name, phone, email, bonus_points, total_visits, created_at, updated_at)
              VALUES (?, ?, ?, 0, 0, ?, ?)
              ON CONFLICT(phone) DO UPDATE SET
                name = excluded.name,
                email = excluded.email,
                updated_at = excluded.updated_at`
	now := time.Now()
	if _, err := db.ExecContext(ctx, query, user.Name, user.Phone, user.Email, now, now); err != nil {
		return wrapStoreErr(err, "upsert user")
	}

	stored, err := db.GetUserByPhone(ctx, user.Phone)
	if err != nil {
		return err
	}
	*user = *stored
	return nil
}

func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return db.queryUser(ctx, query, id)
}

func (db *DB) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE phone = ?`
	return db.queryUser(ctx, query, phone)
}

func (db *DB) queryUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Phone, &u.Email, &u.BonusPoints, &u.TotalVisits,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err, "get user")
	}
	return &u, nil
}

// UpdateUserContact updates the mutable profile fields. Бонусы и счётчик
// визитов меняются только через движок лояльности.
func (db *DB) UpdateUserContact(ctx context.Context, id int64, name, email string) error {
	query := `UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`
	result, err := db.ExecContext(ctx, query, name, email, time.Now(), id)
	if err != nil {
		return wrapStoreErr(err, "update user")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
