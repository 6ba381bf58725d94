package repository

import (
	"context"
	"sync/atomic"
	"time"

	"zapis/internal/domain"
	"zapis/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCatalogCache prefers the primary cache and silently falls back to
// the secondary when the primary errors. После минуты простоя примари
// пробуется снова.
type FailoverCatalogCache struct {
	primary   domain.CatalogCache
	fallback  domain.CatalogCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix seconds
}

func NewFailoverCatalogCache(primary, fallback domain.CatalogCache, logger *zerolog.Logger) *FailoverCatalogCache {
	return &FailoverCatalogCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCatalogCache) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	if time.Since(time.Unix(r.lastCheck.Load(), 0)) > time.Minute {
		// даём примари второй шанс
		r.isDown.Store(false)
		return true
	}
	return false
}

func (r *FailoverCatalogCache) markDown(err error) {
	r.logger.Error().Err(err).Msg("primary catalog cache failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}

func (r *FailoverCatalogCache) GetSalons(ctx context.Context) ([]models.Salon, error) {
	if r.primaryUsable() {
		salons, err := r.primary.GetSalons(ctx)
		if err == nil {
			return salons, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetSalons(ctx)
}

func (r *FailoverCatalogCache) SetSalons(ctx context.Context, salons []models.Salon) error {
	if r.primaryUsable() {
		if err := r.primary.SetSalons(ctx, salons); err != nil {
			r.markDown(err)
		} else {
			return nil
		}
	}
	return r.fallback.SetSalons(ctx, salons)
}

func (r *FailoverCatalogCache) GetMasters(ctx context.Context, salonID int64) ([]models.Master, error) {
	if r.primaryUsable() {
		masters, err := r.primary.GetMasters(ctx, salonID)
		if err == nil {
			return masters, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetMasters(ctx, salonID)
}

func (r *FailoverCatalogCache) SetMasters(ctx context.Context, salonID int64, masters []models.Master) error {
	if r.primaryUsable() {
		if err := r.primary.SetMasters(ctx, salonID, masters); err != nil {
			r.markDown(err)
		} else {
			return nil
		}
	}
	return r.fallback.SetMasters(ctx, salonID, masters)
}

func (r *FailoverCatalogCache) GetServices(ctx context.Context) ([]models.Service, error) {
	if r.primaryUsable() {
		services, err := r.primary.GetServices(ctx)
		if err == nil {
			return services, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetServices(ctx)
}

func (r *FailoverCatalogCache) SetServices(ctx context.Context, services []models.Service) error {
	if r.primaryUsable() {
		if err := r.primary.SetServices(ctx, services); err != nil {
			r.markDown(err)
		} else {
			return nil
		}
	}
	return r.fallback.SetServices(ctx, services)
}

// Invalidate must clear both backends: a stale survivor would resurrect old
// catalog rows after a failover flip.
func (r *FailoverCatalogCache) Invalidate(ctx context.Context) error {
	var primaryErr error
	if r.primaryUsable() {
		if primaryErr = r.primary.Invalidate(ctx); primaryErr != nil {
			r.markDown(primaryErr)
		}
	}
	if err := r.fallback.Invalidate(ctx); err != nil {
		return err
	}
	return primaryErr
}
