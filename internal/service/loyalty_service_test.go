package service

import (
	"context"
	"io"
	"testing"

	"zapis/internal/database"
	"zapis/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLoyaltyService(store *mockStore, bus *mockEventBus) *LoyaltyService {
	logger := zerolog.New(io.Discard)
	return NewLoyaltyService(store, bus, &logger)
}

func TestLoyaltyServiceRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("redeem writes negative delta", func(t *testing.T) {
		store := new(mockStore)
		bus := new(mockEventBus)
		svc := newLoyaltyService(store, bus)

		store.On("AppendLoyaltyEvent", ctx, mock.MatchedBy(func(ev *models.LoyaltyEvent) bool {
			return ev.PointsDelta == -30 && ev.Reason == models.ReasonRedemption
		}), false).Return(nil).Once()
		bus.On("PublishJSON", "points_redeemed", mock.Anything).Return(nil).Once()

		event, err := svc.Redeem(ctx, 7, 30, "discount on visit")
		require.NoError(t, err)
		assert.Equal(t, int64(-30), event.PointsDelta)
		store.AssertExpectations(t)
	})

	t.Run("non-positive amount rejected", func(t *testing.T) {
		svc := newLoyaltyService(new(mockStore), new(mockEventBus))

		_, err := svc.Redeem(ctx, 7, 0, "")
		assert.Error(t, err)
		_, err = svc.Redeem(ctx, 7, -5, "")
		assert.Error(t, err)
	})

	t.Run("insufficient balance surfaces", func(t *testing.T) {
		store := new(mockStore)
		svc := newLoyaltyService(store, new(mockEventBus))

		store.On("AppendLoyaltyEvent", ctx, mock.Anything, false).
			Return(database.ErrNegativeBalance).Once()

		_, err := svc.Redeem(ctx, 7, 1000, "")
		assert.ErrorIs(t, err, database.ErrNegativeBalance)
	})
}

func TestLoyaltyServiceAdjust(t *testing.T) {
	ctx := context.Background()

	t.Run("referral bonus allowed", func(t *testing.T) {
		store := new(mockStore)
		bus := new(mockEventBus)
		svc := newLoyaltyService(store, bus)

		store.On("AppendLoyaltyEvent", ctx, mock.MatchedBy(func(ev *models.LoyaltyEvent) bool {
			return ev.PointsDelta == 50 && ev.Reason == models.ReasonReferralBonus
		}), false).Return(nil).Once()
		bus.On("PublishJSON", "points_awarded", mock.Anything).Return(nil).Once()

		_, err := svc.Adjust(ctx, 7, 50, models.ReasonReferralBonus, "brought a friend")
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("lifecycle reasons are not adjustable", func(t *testing.T) {
		svc := newLoyaltyService(new(mockStore), new(mockEventBus))

		_, err := svc.Adjust(ctx, 7, 50, models.ReasonVisitBonus, "")
		assert.Error(t, err)
		_, err = svc.Adjust(ctx, 7, 50, models.ReasonRedemption, "")
		assert.Error(t, err)
	})
}

func TestLoyaltyServiceBalanceAndHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("balance comes from user row", func(t *testing.T) {
		store := new(mockStore)
		svc := newLoyaltyService(store, new(mockEventBus))

		store.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7, BonusPoints: 42}, nil).Once()

		balance, err := svc.Balance(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, int64(42), balance)
	})

	t.Run("history for unknown user", func(t *testing.T) {
		store := new(mockStore)
		svc := newLoyaltyService(store, new(mockEventBus))

		store.On("GetUser", ctx, int64(99)).Return(nil, database.ErrNotFound).Once()

		_, err := svc.History(ctx, 99, 50)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})

	t.Run("history passes limit through", func(t *testing.T) {
		store := new(mockStore)
		svc := newLoyaltyService(store, new(mockEventBus))

		events := []*models.LoyaltyEvent{{ID: 2, PointsDelta: -10}, {ID: 1, PointsDelta: 12}}
		store.On("GetUser", ctx, int64(7)).Return(&models.User{ID: 7}, nil).Once()
		store.On("BonusHistory", ctx, int64(7), 10).Return(events, nil).Once()

		got, err := svc.History(ctx, 7, 10)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
