package database

import (
	"context"
	"testing"

	"zapis/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	salons, err := db.ListSalons(ctx)
	require.NoError(t, err)
	require.Len(t, salons, 1)
	assert.Equal(t, "10:00-22:00", salons[0].WorkingHours)

	salon, err := db.GetSalon(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Барбершоп на Арбате", salon.Name)

	_, err = db.GetSalon(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListMasters(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	all, err := db.ListMasters(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// сортировка по рейтингу
	assert.Equal(t, "Алексей", all[0].Name)

	require.NoError(t, db.UpsertSalon(ctx, &models.Salon{ID: 2, Name: "Второй", WorkingHours: "09:00-21:00"}))
	require.NoError(t, db.UpsertMaster(ctx, &models.Master{ID: 3, SalonID: 2, Name: "Олег", Rating: 5.0}))

	filtered, err := db.ListMasters(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	filtered, err = db.ListMasters(ctx, 2)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Олег", filtered[0].Name)
}

func TestGetService(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	svc, err := db.GetService(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Haircut", svc.Name)
	assert.Equal(t, float64(1200), svc.Price)
	assert.Equal(t, 45, svc.DurationMin)

	_, err = db.GetService(ctx, 99)
	assert.ErrorIs(t, err, ErrUnknownService)

	services, err := db.ListServices(ctx)
	require.NoError(t, err)
	assert.Len(t, services, 2)
}

func TestUpsertServiceKeepsBookingSnapshot(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	user := seedUser(t, db, "+7 900 111-11-11")
	ctx := context.Background()

	b := newBooking(user.ID, "2026-01-15", "14:00", 45)
	require.NoError(t, db.CreateBookingSlot(ctx, b))

	// подорожание услуги не трогает зафиксированную цену записи
	require.NoError(t, db.UpsertService(ctx, &models.Service{ID: 1, Name: "Haircut", Price: 1500, DurationMin: 60}))

	stored, err := db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(1200), stored.TotalPrice)
	assert.Equal(t, 45, stored.DurationMin)
}
