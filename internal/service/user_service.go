package service

import (
	"context"
	"fmt"
	"strings"

	"zapis/internal/domain"
	"zapis/internal/models"

	"github.com/rs/zerolog"
)

type UserService struct {
	store  domain.Store
	logger *zerolog.Logger
}

func NewUserService(store domain.Store, logger *zerolog.Logger) *UserService {
	return &UserService{store: store, logger: logger}
}

// Register upserts a client keyed by phone: an existing client keeps their
// bonus balance and visit counter, only the contact fields are refreshed.
func (s *UserService) Register(ctx context.Context, name, phone, email string) (*models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("phone is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}

	user := &models.User{
		Name:  strings.TrimSpace(name),
		Phone: phone,
		Email: strings.TrimSpace(email),
	}
	if err := s.store.UpsertUserByPhone(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *UserService) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	return s.store.GetUserByPhone(ctx, phone)
}

func (s *UserService) UpdateContact(ctx context.Context, id int64, name, email string) (*models.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.store.UpdateUserContact(ctx, id, strings.TrimSpace(name), strings.TrimSpace(email)); err != nil {
		return nil, err
	}
	return s.store.GetUser(ctx, id)
}
