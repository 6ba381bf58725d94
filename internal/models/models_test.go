package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStartEndTime(t *testing.T) {
	b := &Booking{
		Date:        "2026-01-15",
		TimeSlot:    "14:00",
		DurationMin: 45,
	}

	start, err := b.StartTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC), start)

	end, err := b.EndTime(time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 14, 45, 0, 0, time.UTC), end)
}

func TestBookingStartTimeInvalid(t *testing.T) {
	b := &Booking{Date: "not-a-date", TimeSlot: "14:00"}
	_, err := b.StartTime(time.UTC)
	assert.Error(t, err)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, (&Booking{Status: StatusUpcoming}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusCompleted}).IsTerminal())
	assert.True(t, (&Booking{Status: StatusCancelled}).IsTerminal())
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusUpcoming))
	assert.True(t, ValidStatus(StatusCancelled))
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
}

func TestValidReason(t *testing.T) {
	assert.True(t, ValidReason(ReasonVisitBonus))
	assert.True(t, ValidReason(ReasonRedemption))
	assert.False(t, ValidReason("cashback"))
}
