// Package schedule implements the slot arithmetic behind availability checks:
// parsing "HH:MM" slots and "HH:MM-HH:MM" working-hour windows into minutes
// from midnight, and overlap tests on half-open intervals.
package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"zapis/internal/models"
)

// Interval is a half-open range [Start, End) in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && other.Start < i.End
}

// ParseSlot converts a "HH:MM" slot into minutes from midnight.
func ParseSlot(slot string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(slot), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time slot %q", slot)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time slot %q", slot)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time slot %q", slot)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time slot %q out of range", slot)
	}
	return h*60 + m, nil
}

// FormatSlot renders minutes from midnight back into "HH:MM".
func FormatSlot(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseWindow parses a working-hours string like "10:00-22:00".
func ParseWindow(hours string) (Interval, error) {
	parts := strings.SplitN(strings.TrimSpace(hours), "-", 2)
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("invalid working hours %q", hours)
	}
	open, err := ParseSlot(parts[0])
	if err != nil {
		return Interval{}, err
	}
	closing, err := ParseSlot(parts[1])
	if err != nil {
		return Interval{}, err
	}
	if closing <= open {
		return Interval{}, fmt.Errorf("working hours %q close before they open", hours)
	}
	return Interval{Start: open, End: closing}, nil
}

// NewInterval builds the occupied interval for a slot and duration.
func NewInterval(slot string, durationMin int) (Interval, error) {
	start, err := ParseSlot(slot)
	if err != nil {
		return Interval{}, err
	}
	if durationMin <= 0 {
		return Interval{}, fmt.Errorf("duration must be positive, got %d", durationMin)
	}
	return Interval{Start: start, End: start + durationMin}, nil
}

// Conflicts reports whether the requested interval intersects any occupied one.
func Conflicts(requested Interval, occupied []Interval) bool {
	for _, o := range occupied {
		if requested.Overlaps(o) {
			return true
		}
	}
	return false
}

// FitsWindow reports whether the interval lies fully inside the working hours.
func FitsWindow(interval, window Interval) bool {
	return interval.Start >= window.Start && interval.End <= window.End
}

// FreeSlots lists every grid-aligned start slot inside the window where a
// service of the given duration would not touch an occupied interval.
// Slots are returned in chronological order.
func FreeSlots(window Interval, durationMin int, occupied []Interval) []string {
	if durationMin <= 0 {
		return nil
	}
	slots := make([]string, 0)
	for start := window.Start; start+durationMin <= window.End; start += models.SlotStepMinutes {
		candidate := Interval{Start: start, End: start + durationMin}
		if !Conflicts(candidate, occupied) {
			slots = append(slots, FormatSlot(start))
		}
	}
	return slots
}
