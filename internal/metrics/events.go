package metrics

import (
	"encoding/json"

	"zapis/internal/events"

	"github.com/rs/zerolog"
)

// ObserveBus subscribes the prometheus counters to booking lifecycle and
// loyalty events. Счётчики живут на подписчике шины, а не внутри сервисов:
// одна точка учёта на процесс.
func ObserveBus(bus *events.EventBus, logger *zerolog.Logger) {
	if bus == nil {
		return
	}

	countBooking := func(outcome string) events.EventHandler {
		return func(*events.Event) error {
			IncBooking(outcome)
			return nil
		}
	}

	countPoints := func(ev *events.Event) error {
		var payload events.PointsEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			logger.Error().Err(err).Str("event", ev.Type).Msg("event bus: decode points payload")
			return nil
		}
		AddLoyaltyPoints(payload.Reason, payload.PointsDelta)
		return nil
	}

	bus.Subscribe(events.EventBookingCreated, countBooking("created"))
	bus.Subscribe(events.EventBookingCancelled, countBooking("cancelled"))
	bus.Subscribe(events.EventBookingCompleted, countBooking("completed"))
	bus.Subscribe(events.EventPointsAwarded, countPoints)
	bus.Subscribe(events.EventPointsRedeemed, countPoints)
	bus.Subscribe(events.EventPointsRevoked, countPoints)
}
