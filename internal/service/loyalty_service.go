package service

import (
	"context"
	"fmt"

	"zapis/internal/domain"
	"zapis/internal/events"
	"zapis/internal/models"

	"github.com/rs/zerolog"
)

type LoyaltyService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewLoyaltyService(store domain.Store, eventBus domain.EventPublisher, logger *zerolog.Logger) *LoyaltyService {
	return &LoyaltyService{
		store:    store,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Redeem burns points from the user's balance. The store rejects the event
// atomically when the balance would go negative.
func (s *LoyaltyService) Redeem(ctx context.Context, userID, points int64, description string) (*models.LoyaltyEvent, error) {
	if points <= 0 {
		return nil, fmt.Errorf("redeem amount must be positive, got %d", points)
	}

	event := &models.LoyaltyEvent{
		UserID:      userID,
		PointsDelta: -points,
		Reason:      models.ReasonRedemption,
		Description: description,
	}
	if err := s.store.AppendLoyaltyEvent(ctx, event, false); err != nil {
		return nil, err
	}

	s.publishPoints(events.EventPointsRedeemed, event)

	s.logger.Info().Int64("user_id", userID).Int64("points", points).Msg("points redeemed")
	return event, nil
}

// Adjust credits points from a marketing source: referral or review bonuses.
// Other reasons are produced by the booking lifecycle, not by operators.
func (s *LoyaltyService) Adjust(ctx context.Context, userID, points int64, reason, description string) (*models.LoyaltyEvent, error) {
	if points <= 0 {
		return nil, fmt.Errorf("adjustment must be positive, got %d", points)
	}
	if reason != models.ReasonReferralBonus && reason != models.ReasonReviewBonus {
		return nil, fmt.Errorf("reason %q is not operator-adjustable", reason)
	}

	event := &models.LoyaltyEvent{
		UserID:      userID,
		PointsDelta: points,
		Reason:      reason,
		Description: description,
	}
	if err := s.store.AppendLoyaltyEvent(ctx, event, false); err != nil {
		return nil, err
	}

	s.publishPoints(events.EventPointsAwarded, event)

	s.logger.Info().Int64("user_id", userID).Int64("points", points).Str("reason", reason).Msg("points adjusted")
	return event, nil
}

// Balance returns the materialized balance from the user row. The ledger fold
// gives the same number; tests assert the two stay in sync.
func (s *LoyaltyService) Balance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.BonusPoints, nil
}

func (s *LoyaltyService) History(ctx context.Context, userID int64, limit int) ([]*models.LoyaltyEvent, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.BonusHistory(ctx, userID, limit)
}

func (s *LoyaltyService) publishPoints(eventType string, event *models.LoyaltyEvent) {
	if s.eventBus == nil {
		return
	}

	payload := events.PointsEventPayload{
		UserID:      event.UserID,
		PointsDelta: event.PointsDelta,
		Reason:      event.Reason,
	}
	if event.BookingID != nil {
		payload.BookingID = *event.BookingID
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("user_id", event.UserID).Msg("publish event error")
	}
}
