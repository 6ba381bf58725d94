package models

import "time"

type Booking struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	SalonID     int64     `json:"salon_id"`
	MasterID    int64     `json:"master_id"`
	ServiceID   int64     `json:"service_id"`
	Date        string    `json:"booking_date"` // "2006-01-02"
	TimeSlot    string    `json:"time_slot"`    // "15:04"
	DurationMin int       `json:"duration"`     // snapshot at booking time
	Status      string    `json:"status"`       // upcoming, completed, cancelled
	TotalPrice  float64   `json:"total_price"`  // snapshot at booking time
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Version     int64     `json:"version"`
}

// StartTime resolves the booking's calendar date and slot into a wall-clock
// instant in the given location.
func (b *Booking) StartTime(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateFormat+" "+SlotFormat, b.Date+" "+b.TimeSlot, loc)
}

// EndTime is StartTime plus the snapshotted duration.
func (b *Booking) EndTime(loc *time.Location) (time.Time, error) {
	start, err := b.StartTime(loc)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(b.DurationMin) * time.Minute), nil
}

func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled
}
