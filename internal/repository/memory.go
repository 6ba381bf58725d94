package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zapis/internal/models"
)

type memoryEntry struct {
	value     interface{}
	expiresAt time.Time
}

// MemoryCatalogCache is the in-process fallback used when redis is absent or
// down.
type MemoryCatalogCache struct {
	entries sync.Map
	ttl     time.Duration
}

func NewMemoryCatalogCache(ttl time.Duration) *MemoryCatalogCache {
	if ttl <= 0 {
		ttl = models.CatalogCacheTTL * time.Second
	}
	return &MemoryCatalogCache{ttl: ttl}
}

func (r *MemoryCatalogCache) load(key string) (interface{}, bool) {
	val, ok := r.entries.Load(key)
	if !ok {
		return nil, false
	}
	entry := val.(memoryEntry)
	if time.Now().After(entry.expiresAt) {
		r.entries.Delete(key)
		return nil, false
	}
	return entry.value, true
}

func (r *MemoryCatalogCache) store(key string, value interface{}) {
	r.entries.Store(key, memoryEntry{value: value, expiresAt: time.Now().Add(r.ttl)})
}

func (r *MemoryCatalogCache) GetSalons(ctx context.Context) ([]models.Salon, error) {
	if val, ok := r.load(keySalons); ok {
		return val.([]models.Salon), nil
	}
	return nil, nil
}

func (r *MemoryCatalogCache) SetSalons(ctx context.Context, salons []models.Salon) error {
	r.store(keySalons, salons)
	return nil
}

func (r *MemoryCatalogCache) GetMasters(ctx context.Context, salonID int64) ([]models.Master, error) {
	if val, ok := r.load(fmt.Sprintf(keyMasters, salonID)); ok {
		return val.([]models.Master), nil
	}
	return nil, nil
}

func (r *MemoryCatalogCache) SetMasters(ctx context.Context, salonID int64, masters []models.Master) error {
	r.store(fmt.Sprintf(keyMasters, salonID), masters)
	return nil
}

func (r *MemoryCatalogCache) GetServices(ctx context.Context) ([]models.Service, error) {
	if val, ok := r.load(keyServices); ok {
		return val.([]models.Service), nil
	}
	return nil, nil
}

func (r *MemoryCatalogCache) SetServices(ctx context.Context, services []models.Service) error {
	r.store(keyServices, services)
	return nil
}

func (r *MemoryCatalogCache) Invalidate(ctx context.Context) error {
	r.entries.Range(func(key, _ interface{}) bool {
		r.entries.Delete(key)
		return true
	})
	return nil
}
