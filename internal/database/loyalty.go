package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zapis/internal/models"
)

// AppendLoyaltyEvent appends one immutable ledger event and applies its delta
// to the user's balance in the same transaction, so User.BonusPoints always
// equals the sum of the user's deltas. incVisit дополнительно увеличивает
// счётчик визитов (начисление за завершённую запись).
//
// The balance update is conditional: a delta that would take the balance below
// zero leaves both the ledger and the user untouched and returns
// ErrNegativeBalance.
func (db *DB) AppendLoyaltyEvent(ctx context.Context, event *models.LoyaltyEvent, incVisit bool) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr(err, "begin loyalty tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := applyLoyaltyTx(ctx, tx, event, incVisit); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr(err, "commit loyalty tx")
	}
	return nil
}

// applyLoyaltyTx applies one ledger event inside an open transaction: the
// conditional balance update plus the event insert.
func applyLoyaltyTx(ctx context.Context, tx *sql.Tx, event *models.LoyaltyEvent, incVisit bool) error {
	if event.PointsDelta == 0 && !incVisit {
		return fmt.Errorf("loyalty event must carry a delta")
	}
	if !models.ValidReason(event.Reason) {
		return fmt.Errorf("unknown loyalty reason %q", event.Reason)
	}

	visitInc := 0
	if incVisit {
		visitInc = 1
	}

	now := event.OccurredAt
	if now.IsZero() {
		now = time.Now()
	}

	// Условное обновление баланса: уход в минус отклоняется атомарно.
	queryUpdate := `UPDATE users
              SET bonus_points = bonus_points + ?,
                  total_visits = total_visits + ?,
                  updated_at = ?
              WHERE id = ? AND bonus_points + ? >= 0`
	result, err := tx.ExecContext(ctx, queryUpdate,
		event.PointsDelta, visitInc, now, event.UserID, event.PointsDelta)
	if err != nil {
		return wrapStoreErr(err, "apply loyalty delta")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var exists int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = ?`, event.UserID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return wrapStoreErr(err, "check user for loyalty delta")
		}
		return ErrNegativeBalance
	}

	queryInsert := `INSERT INTO loyalty_events (user_id, booking_id, points_delta, reason, description, occurred_at)
              VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, queryInsert,
		event.UserID, event.BookingID, event.PointsDelta, event.Reason, event.Description, now)
	if err != nil {
		return wrapStoreErr(err, "insert loyalty event")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	event.ID = id
	event.OccurredAt = now
	return nil
}

// CompleteBooking flips an upcoming booking to completed and credits the
// visit bonus in the same transaction: either both land or neither does.
func (db *DB) CompleteBooking(ctx context.Context, id, fromVersion int64, event *models.LoyaltyEvent) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr(err, "begin complete tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	queryStatus := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ? AND status = ?`
	result, err := tx.ExecContext(ctx, queryStatus,
		models.StatusCompleted, time.Now(), id, fromVersion, models.StatusUpcoming)
	if err != nil {
		return wrapStoreErr(err, "complete booking")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var status string
		err := tx.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = ?`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return wrapStoreErr(err, "check booking status")
		}
		if status != models.StatusUpcoming {
			return ErrAlreadyTerminal
		}
		return ErrConcurrentModification
	}

	if err := applyLoyaltyTx(ctx, tx, event, true); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr(err, "commit complete tx")
	}
	return nil
}

// BonusHistory returns a user's loyalty events, newest first.
func (db *DB) BonusHistory(ctx context.Context, userID int64, limit int) ([]*models.LoyaltyEvent, error) {
	if limit <= 0 {
		limit = models.DefaultBonusHistoryLimit
	}
	query := `SELECT id, user_id, booking_id, points_delta, reason, COALESCE(description, ''), occurred_at
              FROM loyalty_events
              WHERE user_id = ?
              ORDER BY occurred_at DESC, id DESC
              LIMIT ?`
	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, wrapStoreErr(err, "get bonus history")
	}
	defer rows.Close()

	var events []*models.LoyaltyEvent
	for rows.Next() {
		var e models.LoyaltyEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookingID, &e.PointsDelta, &e.Reason, &e.Description, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan loyalty event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// BalanceOf folds the ledger for one user. In normal operation it matches
// users.bonus_points; the invariant is checked in tests.
func (db *DB) BalanceOf(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COALESCE(SUM(points_delta), 0) FROM loyalty_events WHERE user_id = ?`
	var balance int64
	if err := db.QueryRowContext(ctx, query, userID).Scan(&balance); err != nil {
		return 0, wrapStoreErr(err, "fold loyalty balance")
	}
	return balance, nil
}

// BookingEvents lists the events linked to one booking, oldest first. Used by
// the clawback path on cancellation.
func (db *DB) BookingEvents(ctx context.Context, bookingID int64) ([]*models.LoyaltyEvent, error) {
	query := `SELECT id, user_id, booking_id, points_delta, reason, COALESCE(description, ''), occurred_at
              FROM loyalty_events
              WHERE booking_id = ?
              ORDER BY occurred_at, id`
	rows, err := db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, wrapStoreErr(err, "get booking events")
	}
	defer rows.Close()

	var events []*models.LoyaltyEvent
	for rows.Next() {
		var e models.LoyaltyEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.BookingID, &e.PointsDelta, &e.Reason, &e.Description, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan loyalty event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
