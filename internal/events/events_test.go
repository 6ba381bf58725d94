package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBusPublishSubscribe(t *testing.T) {
	bus := NewEventBus()

	var got []*Event
	bus.Subscribe(EventBookingCreated, func(e *Event) error {
		got = append(got, e)
		return nil
	})

	payload := BookingEventPayload{BookingID: 7, UserID: 1, Status: "upcoming"}
	require.NoError(t, bus.PublishJSON(EventBookingCreated, payload))

	require.Len(t, got, 1)
	assert.Equal(t, EventBookingCreated, got[0].Type)
	assert.False(t, got[0].CreatedAt.IsZero())

	var decoded BookingEventPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &decoded))
	assert.Equal(t, int64(7), decoded.BookingID)
}

func TestEventBusIgnoresOtherTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingCompleted, PointsEventPayload{UserID: 1}))
	assert.Zero(t, calls)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	bus := NewEventBus()

	first, second := 0, 0
	bus.Subscribe(EventPointsAwarded, func(e *Event) error { first++; return nil })
	bus.Subscribe(EventPointsAwarded, func(e *Event) error { second++; return nil })

	require.NoError(t, bus.PublishJSON(EventPointsAwarded, PointsEventPayload{UserID: 2, PointsDelta: 12}))
	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestNilBusPublishJSON(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCreated, nil))
}
