package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"zapis/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCache struct {
	calls int
}

func (b *brokenCache) fail() error {
	b.calls++
	return errors.New("redis: connection refused")
}

func (b *brokenCache) GetSalons(ctx context.Context) ([]models.Salon, error) {
	return nil, b.fail()
}
func (b *brokenCache) SetSalons(ctx context.Context, s []models.Salon) error { return b.fail() }
func (b *brokenCache) GetMasters(ctx context.Context, id int64) ([]models.Master, error) {
	return nil, b.fail()
}
func (b *brokenCache) SetMasters(ctx context.Context, id int64, m []models.Master) error {
	return b.fail()
}
func (b *brokenCache) GetServices(ctx context.Context) ([]models.Service, error) {
	return nil, b.fail()
}
func (b *brokenCache) SetServices(ctx context.Context, s []models.Service) error { return b.fail() }
func (b *brokenCache) Invalidate(ctx context.Context) error                      { return b.fail() }

func TestFailoverFallsBackToMemory(t *testing.T) {
	logger := zerolog.Nop()
	primary := &brokenCache{}
	fallback := NewMemoryCatalogCache(time.Hour)
	cache := NewFailoverCatalogCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetSalons(ctx, []models.Salon{{ID: 1, Name: "Барбершоп"}}))

	got, err := cache.GetSalons(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Барбершоп", got[0].Name)
}

func TestFailoverSticksToFallbackWhileDown(t *testing.T) {
	logger := zerolog.Nop()
	primary := &brokenCache{}
	fallback := NewMemoryCatalogCache(time.Hour)
	cache := NewFailoverCatalogCache(primary, fallback, &logger)
	ctx := context.Background()

	_, _ = cache.GetSalons(ctx) // помечает примари как упавший
	callsAfterFirst := primary.calls

	_, _ = cache.GetSalons(ctx)
	_, _ = cache.GetServices(ctx)

	// пока не истёк минутный интервал, примари не трогаем
	assert.Equal(t, callsAfterFirst, primary.calls)
}

func TestFailoverPrefersHealthyPrimary(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryCatalogCache(time.Hour)
	fallback := NewMemoryCatalogCache(time.Hour)
	cache := NewFailoverCatalogCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetServices(ctx, []models.Service{{ID: 1, Name: "Haircut"}}))

	// значение ушло в примари, фолбэк пуст
	fromPrimary, err := primary.GetServices(ctx)
	require.NoError(t, err)
	assert.Len(t, fromPrimary, 1)

	fromFallback, err := fallback.GetServices(ctx)
	require.NoError(t, err)
	assert.Nil(t, fromFallback)
}

func TestFailoverInvalidateClearsBoth(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryCatalogCache(time.Hour)
	fallback := NewMemoryCatalogCache(time.Hour)
	cache := NewFailoverCatalogCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, primary.SetSalons(ctx, []models.Salon{{ID: 1}}))
	require.NoError(t, fallback.SetSalons(ctx, []models.Salon{{ID: 1}}))

	require.NoError(t, cache.Invalidate(ctx))

	p, _ := primary.GetSalons(ctx)
	f, _ := fallback.GetSalons(ctx)
	assert.Nil(t, p)
	assert.Nil(t, f)
}
