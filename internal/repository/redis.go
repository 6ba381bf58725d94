// Package repository implements the read-through catalog cache: redis as the
// primary backend, an in-memory map as fallback, and a failover wrapper that
// switches between them. Only catalog payloads live here; slot availability is
// always recomputed from the store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"zapis/internal/config"
	"zapis/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keySalons   = "catalog:salons"
	keyServices = "catalog:services"
	keyMasters  = "catalog:masters:%d" // salonID, 0 = все салоны
)

type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = models.CatalogCacheTTL * time.Second
	}
	return &RedisCatalogCache{client: client, ttl: ttl}
}

func (r *RedisCatalogCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (r *RedisCatalogCache) set(ctx context.Context, key string, value interface{}) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisCatalogCache) GetSalons(ctx context.Context) ([]models.Salon, error) {
	var salons []models.Salon
	ok, err := r.get(ctx, keySalons, &salons)
	if err != nil || !ok {
		return nil, err
	}
	return salons, nil
}

func (r *RedisCatalogCache) SetSalons(ctx context.Context, salons []models.Salon) error {
	return r.set(ctx, keySalons, salons)
}

func (r *RedisCatalogCache) GetMasters(ctx context.Context, salonID int64) ([]models.Master, error) {
	var masters []models.Master
	ok, err := r.get(ctx, fmt.Sprintf(keyMasters, salonID), &masters)
	if err != nil || !ok {
		return nil, err
	}
	return masters, nil
}

func (r *RedisCatalogCache) SetMasters(ctx context.Context, salonID int64, masters []models.Master) error {
	return r.set(ctx, fmt.Sprintf(keyMasters, salonID), masters)
}

func (r *RedisCatalogCache) GetServices(ctx context.Context) ([]models.Service, error) {
	var services []models.Service
	ok, err := r.get(ctx, keyServices, &services)
	if err != nil || !ok {
		return nil, err
	}
	return services, nil
}

func (r *RedisCatalogCache) SetServices(ctx context.Context, services []models.Service) error {
	return r.set(ctx, keyServices, services)
}

// Invalidate drops every catalog key. Вызывается синхронно при обновлении
// справочников.
func (r *RedisCatalogCache) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	keys, err := r.client.Keys(ctx, "catalog:*").Result()
	if err != nil {
		return fmt.Errorf("failed to list catalog keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog keys: %w", err)
	}
	return nil
}
