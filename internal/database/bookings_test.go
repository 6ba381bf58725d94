package database

import (
	"context"
	"testing"
	"time"

	"zapis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(userID int64, date, slot string, durationMin int) *models.Booking {
	return &models.Booking{
		UserID:      userID,
		SalonID:     1,
		MasterID:    1,
		ServiceID:   1,
		Date:        date,
		TimeSlot:    slot,
		DurationMin: durationMin,
		TotalPrice:  1200,
	}
}

func TestCreateBookingSlot(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	b := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, b))

	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusUpcoming, b.Status)
	assert.Equal(t, int64(1), b.Version)

	stored, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "14:00", stored.TimeSlot)
	assert.Equal(t, 45, stored.DurationMin)
	assert.Equal(t, float64(1200), stored.TotalPrice)
}

func TestCreateBookingSlotConflict(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:00", 45)))

	// 14:20-15:05 пересекается с 14:00-14:45
	err := db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:20", 45))
	assert.ErrorIs(t, err, ErrSlotConflict)

	// встык — свободно
	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:45", 45)))

	// другой мастер в то же время — свободно
	other := newBooking(user.ID, "2026-01-15", "14:20", 45)
	other.MasterID = 2
	require.NoError(t, db.CreateBookingSlot(ctx, other))

	// другой день — свободно
	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-16", "14:20", 45)))
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	b := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, b))

	err := db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:00", 45))
	require.ErrorIs(t, err, ErrSlotConflict)

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, b.Version, models.StatusCancelled))

	// слот освободился сразу после отмены
	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:00", 45)))
}

func TestUpdateBookingStatusWithVersion(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	b := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, b))

	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, b.ID, 1, models.StatusCompleted))

	// terminal booking is immutable
	err := db.UpdateBookingStatusWithVersion(ctx, b.ID, 2, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrAlreadyTerminal)

	err = db.UpdateBookingStatusWithVersion(ctx, 9999, 1, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingStatusVersionConflict(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	b := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, b))

	err := db.UpdateBookingStatusWithVersion(ctx, b.ID, 42, models.StatusCancelled)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestOccupiedIntervals(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:00", 45)))
	cancelled := newBooking(user.ID, "2026-01-15", "16:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, cancelled))
	require.NoError(t, db.UpdateBookingStatusWithVersion(ctx, cancelled.ID, 1, models.StatusCancelled))

	intervals, err := db.OccupiedIntervals(ctx, 1, "2026-01-15")
	require.NoError(t, err)
	// отменённые записи не занимают интервал
	require.Len(t, intervals, 1)
	assert.Equal(t, 840, intervals[0].Start)
	assert.Equal(t, 885, intervals[0].End)
}

func TestListBookingsByUser(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	other := seedUser(t, db, "+7 900 222-22-22")
	ctx := context.Background()

	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-15", "14:00", 45)))
	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(user.ID, "2026-01-16", "10:00", 45)))
	require.NoError(t, db.CreateBookingSlot(ctx, newBooking(other.ID, "2026-01-17", "12:00", 45)))

	mine, err := db.ListBookingsByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// новые сверху
	assert.Equal(t, "2026-01-16", mine[0].Date)
	assert.Equal(t, "2026-01-15", mine[1].Date)

	all, err := db.ListBookings(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListDueBookings(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	past := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, past))
	sameDayLater := newBooking(user.ID, "2026-01-15", "18:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, sameDayLater))
	future := newBooking(user.ID, "2026-01-20", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, future))

	now := time.Date(2026, 1, 15, 15, 0, 0, 0, time.UTC)
	due, err := db.ListDueBookings(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, past.ID, due[0].ID)

	// ровно в момент окончания интервал уже прошёл
	now = time.Date(2026, 1, 15, 18, 45, 0, 0, time.UTC)
	due, err = db.ListDueBookings(ctx, now)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestGetBookingNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetBooking(context.Background(), 123)
	assert.ErrorIs(t, err, ErrNotFound)
}
