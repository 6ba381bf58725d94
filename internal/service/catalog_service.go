package service

import (
	"context"

	"zapis/internal/domain"
	"zapis/internal/models"

	"github.com/rs/zerolog"
)

// CatalogService serves salon, master and service listings through an
// explicit read-through cache. Точечные чтения идут мимо кэша: они дешёвые
// и нужны свежими для проверок при создании записи.
type CatalogService struct {
	store  domain.Store
	cache  domain.CatalogCache
	logger *zerolog.Logger
}

func NewCatalogService(store domain.Store, cache domain.CatalogCache, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

func (s *CatalogService) Salons(ctx context.Context) ([]models.Salon, error) {
	if cached, err := s.cache.GetSalons(ctx); err == nil && cached != nil {
		return cached, nil
	}

	salons, err := s.store.ListSalons(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetSalons(ctx, salons); err != nil {
		s.logger.Warn().Err(err).Msg("cache salons")
	}
	return salons, nil
}

func (s *CatalogService) Masters(ctx context.Context, salonID int64) ([]models.Master, error) {
	if cached, err := s.cache.GetMasters(ctx, salonID); err == nil && cached != nil {
		return cached, nil
	}

	masters, err := s.store.ListMasters(ctx, salonID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMasters(ctx, salonID, masters); err != nil {
		s.logger.Warn().Err(err).Int64("salon_id", salonID).Msg("cache masters")
	}
	return masters, nil
}

func (s *CatalogService) Services(ctx context.Context) ([]models.Service, error) {
	if cached, err := s.cache.GetServices(ctx); err == nil && cached != nil {
		return cached, nil
	}

	services, err := s.store.ListServices(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetServices(ctx, services); err != nil {
		s.logger.Warn().Err(err).Msg("cache services")
	}
	return services, nil
}

func (s *CatalogService) Salon(ctx context.Context, id int64) (*models.Salon, error) {
	return s.store.GetSalon(ctx, id)
}

func (s *CatalogService) Master(ctx context.Context, id int64) (*models.Master, error) {
	return s.store.GetMaster(ctx, id)
}

func (s *CatalogService) Service(ctx context.Context, id int64) (*models.Service, error) {
	return s.store.GetService(ctx, id)
}

// Seed upserts the configured catalog into the store and drops any cached
// listings so the next read sees the fresh rows.
func (s *CatalogService) Seed(ctx context.Context, salons []models.Salon, masters []models.Master, services []models.Service) error {
	for i := range salons {
		if err := s.store.UpsertSalon(ctx, &salons[i]); err != nil {
			return err
		}
	}
	for i := range masters {
		if err := s.store.UpsertMaster(ctx, &masters[i]); err != nil {
			return err
		}
	}
	for i := range services {
		if err := s.store.UpsertService(ctx, &services[i]); err != nil {
			return err
		}
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("invalidate catalog cache")
	}

	s.logger.Info().
		Int("salons", len(salons)).
		Int("masters", len(masters)).
		Int("services", len(services)).
		Msg("catalog seeded")
	return nil
}

// Refresh drops the cached listings.
func (s *CatalogService) Refresh(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}
