package models

import "time"

// LoyaltyEvent is an immutable record of a bonus balance change. Events are
// append-only; a user's balance is always the sum of their deltas.
type LoyaltyEvent struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	BookingID   *int64    `json:"booking_id,omitempty"` // nil for non-booking adjustments
	PointsDelta int64     `json:"points_delta"`
	Reason      string    `json:"reason"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
