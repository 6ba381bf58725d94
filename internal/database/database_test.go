package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"zapis/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedCatalog(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, db.UpsertSalon(ctx, &models.Salon{
		ID: 1, Name: "Барбершоп на Арбате", Address: "Арбат, 1", Phone: "+7 900 000-00-01",
		WorkingHours: "10:00-22:00",
	}))
	require.NoError(t, db.UpsertMaster(ctx, &models.Master{
		ID: 1, SalonID: 1, Name: "Алексей", Specialization: "Барбер", Rating: 4.9,
	}))
	require.NoError(t, db.UpsertMaster(ctx, &models.Master{
		ID: 2, SalonID: 1, Name: "Марина", Specialization: "Колорист", Rating: 4.7,
	}))
	require.NoError(t, db.UpsertService(ctx, &models.Service{
		ID: 1, Name: "Haircut", Price: 1200, DurationMin: 45,
	}))
	require.NoError(t, db.UpsertService(ctx, &models.Service{
		ID: 2, Name: "Coloring", Price: 3500, DurationMin: 90,
	}))
}

func seedUser(t *testing.T, db *DB, phone string) *models.User {
	t.Helper()
	user := &models.User{Name: "Иван", Phone: phone}
	require.NoError(t, db.UpsertUserByPhone(context.Background(), user))
	return user
}

// Параллельные чтения гоняют пул соединений. Без ограничения пула каждое
// новое соединение к :memory: открывало бы свежую базу без схемы.
func TestMemoryDBSharedAcrossPool(t *testing.T) {
	db := setupTestDB(t)
	seedCatalog(t, db)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			salons, err := db.ListSalons(ctx)
			if err != nil {
				errs <- err
				return
			}
			if len(salons) != 1 {
				errs <- fmt.Errorf("expected 1 salon, got %d", len(salons))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
