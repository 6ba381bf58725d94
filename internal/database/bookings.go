package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"zapis/internal/models"
	"zapis/internal/schedule"
)

const bookingColumns = `id, user_id, salon_id, master_id, service_id,
       booking_date, time_slot, duration, status, total_price,
       created_at, updated_at, version`

// OccupiedIntervals derives the busy intervals of a master for one date from
// upcoming bookings. Пересчитывается на каждый запрос, без кэша.
func (db *DB) OccupiedIntervals(ctx context.Context, masterID int64, date string) ([]schedule.Interval, error) {
	query := `SELECT time_slot, duration FROM bookings
              WHERE master_id = ? AND booking_date = ? AND status = ?`
	rows, err := db.QueryContext(ctx, query, masterID, date, models.StatusUpcoming)
	if err != nil {
		return nil, wrapStoreErr(err, "get occupied intervals")
	}
	defer rows.Close()

	return scanIntervals(rows)
}

func scanIntervals(rows *sql.Rows) ([]schedule.Interval, error) {
	var intervals []schedule.Interval
	for rows.Next() {
		var slot string
		var duration int
		if err := rows.Scan(&slot, &duration); err != nil {
			return nil, fmt.Errorf("failed to scan interval: %w", err)
		}
		iv, err := schedule.NewInterval(slot, duration)
		if err != nil {
			return nil, fmt.Errorf("stored booking has invalid slot: %w", err)
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

// CreateBookingSlot inserts a booking only if its interval does not overlap an
// upcoming booking of the same master on the same date. The availability check
// and the insert run in one transaction, so two concurrent requests for
// overlapping intervals cannot both succeed.
func (db *DB) CreateBookingSlot(ctx context.Context, booking *models.Booking) error {
	requested, err := schedule.NewInterval(booking.TimeSlot, booking.DurationMin)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr(err, "begin booking tx")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 1. Занятые интервалы мастера внутри транзакции
	queryBusy := `SELECT time_slot, duration FROM bookings
                  WHERE master_id = ? AND booking_date = ? AND status = ?`
	rows, err := tx.QueryContext(ctx, queryBusy, booking.MasterID, booking.Date, models.StatusUpcoming)
	if err != nil {
		return wrapStoreErr(err, "check availability in tx")
	}
	occupied, err := scanIntervals(rows)
	rows.Close()
	if err != nil {
		return err
	}

	if schedule.Conflicts(requested, occupied) {
		return ErrSlotConflict
	}

	// 2. Вставка записи
	queryInsert := `INSERT INTO bookings (
                user_id, salon_id, master_id, service_id, booking_date,
                time_slot, duration, status, total_price, created_at, updated_at, version
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	result, err := tx.ExecContext(ctx, queryInsert,
		booking.UserID,
		booking.SalonID,
		booking.MasterID,
		booking.ServiceID,
		booking.Date,
		booking.TimeSlot,
		booking.DurationMin,
		models.StatusUpcoming,
		booking.TotalPrice,
		now,
		now,
		1,
	)
	if err != nil {
		return wrapStoreErr(err, "insert booking in tx")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr(err, "commit booking tx")
	}

	booking.ID = id
	booking.Status = models.StatusUpcoming
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrapStoreErr(err, "get booking")
	}
	return b, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.SalonID, &b.MasterID, &b.ServiceID,
		&b.Date, &b.TimeSlot, &b.DurationMin, &b.Status, &b.TotalPrice,
		&b.CreatedAt, &b.UpdatedAt, &b.Version,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (db *DB) ListBookingsByUser(ctx context.Context, userID int64) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE user_id = ?
              ORDER BY booking_date DESC, time_slot DESC`
	return db.queryBookings(ctx, query, userID)
}

// ListBookings returns the newest bookings across all users, for operators.
func (db *DB) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	if limit <= 0 {
		limit = models.DefaultOperatorListLimit
	}
	query := `SELECT ` + bookingColumns + ` FROM bookings
              ORDER BY booking_date DESC, time_slot DESC
              LIMIT ?`
	return db.queryBookings(ctx, query, limit)
}

// ListDueBookings returns upcoming bookings whose interval has fully passed,
// candidates for the completion sweep.
func (db *DB) ListDueBookings(ctx context.Context, now time.Time) ([]*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
              WHERE status = ? AND booking_date <= ?
              ORDER BY booking_date, time_slot`
	candidates, err := db.queryBookings(ctx, query, models.StatusUpcoming, now.Format(models.DateFormat))
	if err != nil {
		return nil, err
	}

	// Граница по времени окончания вычисляется тут: SQLite хранит слот строкой.
	due := make([]*models.Booking, 0, len(candidates))
	for _, b := range candidates {
		end, err := b.EndTime(now.Location())
		if err != nil {
			db.logger.Warn().Int64("booking_id", b.ID).Err(err).Msg("skipping booking with invalid slot")
			continue
		}
		if !end.After(now) {
			due = append(due, b)
		}
	}
	return due, nil
}

func (db *DB) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*models.Booking, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr(err, "query bookings")
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateBookingStatusWithVersion flips the status of an upcoming booking using
// optimistic locking. Terminal bookings are immutable.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error {
	query := `UPDATE bookings SET status = ?, version = version + 1, updated_at = ?
              WHERE id = ? AND version = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, status, time.Now(), id, fromVersion, models.StatusUpcoming)
	if err != nil {
		return wrapStoreErr(err, "update booking status")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		current, err := db.GetBooking(ctx, id)
		if err != nil {
			return err
		}
		if current.IsTerminal() {
			return ErrAlreadyTerminal
		}
		return ErrConcurrentModification
	}
	return nil
}
