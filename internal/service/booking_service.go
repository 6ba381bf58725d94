package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zapis/internal/database"
	"zapis/internal/domain"
	"zapis/internal/events"
	"zapis/internal/metrics"
	"zapis/internal/models"
	"zapis/internal/schedule"

	"github.com/rs/zerolog"
)

// BookingPolicy groups the knobs of the booking lifecycle.
type BookingPolicy struct {
	MaxBookingDays int
	PointsDivisor  int64
	RevokeOnCancel bool
}

type BookingService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	policy   BookingPolicy
	loc      *time.Location
	now      func() time.Time
	logger   *zerolog.Logger
}

func NewBookingService(store domain.Store, eventBus domain.EventPublisher, policy BookingPolicy, loc *time.Location, logger *zerolog.Logger) *BookingService {
	if policy.MaxBookingDays <= 0 {
		policy.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if policy.PointsDivisor <= 0 {
		policy.PointsDivisor = models.DefaultPointsDivisor
	}
	if loc == nil {
		loc = time.Local
	}
	return &BookingService{
		store:    store,
		eventBus: eventBus,
		policy:   policy,
		loc:      loc,
		now:      time.Now,
		logger:   logger,
	}
}

type CreateBookingRequest struct {
	UserID    int64  `json:"user_id"`
	SalonID   int64  `json:"salon_id"`
	MasterID  int64  `json:"master_id"`
	ServiceID int64  `json:"service_id"`
	Date      string `json:"booking_date"`
	TimeSlot  string `json:"time_slot"`
}

// CreateBooking validates the request and reserves the slot. Referential
// checks run first, then time checks, then the catalog snapshot, and only
// then the transactional conflict check inside the store.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	// Клиент должен существовать до любых остальных проверок, иначе ошибка
	// всплывёт из sqlite как нарушение внешнего ключа.
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, database.ErrInvalidReference
		}
		return nil, err
	}

	master, err := s.store.GetMaster(ctx, req.MasterID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, database.ErrInvalidReference
		}
		return nil, err
	}
	if master.SalonID != req.SalonID {
		return nil, database.ErrInvalidReference
	}

	salon, err := s.store.GetSalon(ctx, req.SalonID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, database.ErrInvalidReference
		}
		return nil, err
	}

	startMin, err := schedule.ParseSlot(req.TimeSlot)
	if err != nil {
		return nil, database.ErrInvalidSlot
	}
	if startMin%models.SlotStepMinutes != 0 {
		return nil, database.ErrInvalidSlot
	}

	start, err := time.ParseInLocation(models.DateFormat+" "+models.SlotFormat, req.Date+" "+req.TimeSlot, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid booking date %q: %w", req.Date, database.ErrInvalidSlot)
	}

	now := s.now()
	if !start.After(now) {
		return nil, database.ErrPastSlot
	}
	if start.After(now.AddDate(0, 0, s.policy.MaxBookingDays)) {
		return nil, database.ErrDateTooFar
	}

	svc, err := s.store.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	window, err := schedule.ParseWindow(salon.WorkingHours)
	if err != nil {
		return nil, fmt.Errorf("salon %d has invalid working hours: %w", salon.ID, err)
	}
	requested := schedule.Interval{Start: startMin, End: startMin + svc.DurationMin}
	if !schedule.FitsWindow(requested, window) {
		return nil, database.ErrOutsideWorkingHours
	}

	booking := &models.Booking{
		UserID:      req.UserID,
		SalonID:     req.SalonID,
		MasterID:    req.MasterID,
		ServiceID:   req.ServiceID,
		Date:        req.Date,
		TimeSlot:    req.TimeSlot,
		DurationMin: svc.DurationMin, // снимок на момент записи
		TotalPrice:  svc.Price,
	}

	if err := s.store.CreateBookingSlot(ctx, booking); err != nil {
		if errors.Is(err, database.ErrSlotConflict) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	s.publishBookingEvent(events.EventBookingCreated, booking)

	s.logger.Info().
		Int64("booking_id", booking.ID).
		Int64("master_id", booking.MasterID).
		Str("date", booking.Date).
		Str("slot", booking.TimeSlot).
		Msg("booking created")

	return booking, nil
}

// CancelBooking drops an upcoming booking, freeing its slot. When the
// revoke-on-cancel policy is on, every ledger event attached to the booking
// is compensated with a reversal.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.IsTerminal() {
		return nil, database.ErrAlreadyTerminal
	}

	if err := s.store.UpdateBookingStatusWithVersion(ctx, id, booking.Version, models.StatusCancelled); err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled
	booking.Version++

	if s.policy.RevokeOnCancel {
		s.revokeBookingPoints(ctx, booking)
	}

	s.publishBookingEvent(events.EventBookingCancelled, booking)

	s.logger.Info().Int64("booking_id", id).Msg("booking cancelled")
	return booking, nil
}

// CompleteBooking marks the visit as done and credits the visit bonus:
// floor(total_price / divisor) points plus a visit counter increment, both in
// the same transaction as the status flip.
func (s *BookingService) CompleteBooking(ctx context.Context, id int64) (*models.Booking, int64, error) {
	booking, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if booking.IsTerminal() {
		return nil, 0, database.ErrAlreadyTerminal
	}

	points := int64(booking.TotalPrice) / s.policy.PointsDivisor
	event := &models.LoyaltyEvent{
		UserID:      booking.UserID,
		BookingID:   &booking.ID,
		PointsDelta: points,
		Reason:      models.ReasonVisitBonus,
		Description: fmt.Sprintf("visit bonus for booking %d", booking.ID),
	}

	if err := s.store.CompleteBooking(ctx, id, booking.Version, event); err != nil {
		return nil, 0, err
	}
	booking.Status = models.StatusCompleted
	booking.Version++

	s.publishBookingEvent(events.EventBookingCompleted, booking)
	s.publishPointsEvent(events.EventPointsAwarded, event)

	s.logger.Info().
		Int64("booking_id", id).
		Int64("points", points).
		Msg("booking completed")

	return booking, points, nil
}

// Availability lists every free grid slot for a master on a date, taking the
// service duration into account. For today's date slots that already started
// are dropped.
func (s *BookingService) Availability(ctx context.Context, masterID int64, date string, serviceID int64) ([]string, error) {
	master, err := s.store.GetMaster(ctx, masterID)
	if err != nil {
		return nil, err
	}
	salon, err := s.store.GetSalon(ctx, master.SalonID)
	if err != nil {
		return nil, err
	}
	svc, err := s.store.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	if _, err := time.ParseInLocation(models.DateFormat, date, s.loc); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, database.ErrInvalidSlot)
	}

	window, err := schedule.ParseWindow(salon.WorkingHours)
	if err != nil {
		return nil, fmt.Errorf("salon %d has invalid working hours: %w", salon.ID, err)
	}

	occupied, err := s.store.OccupiedIntervals(ctx, masterID, date)
	if err != nil {
		return nil, err
	}

	slots := schedule.FreeSlots(window, svc.DurationMin, occupied)

	now := s.now()
	if date == now.In(s.loc).Format(models.DateFormat) {
		cutoff := now.In(s.loc).Hour()*60 + now.In(s.loc).Minute()
		filtered := slots[:0]
		for _, slot := range slots {
			startMin, _ := schedule.ParseSlot(slot)
			if startMin > cutoff {
				filtered = append(filtered, slot)
			}
		}
		slots = filtered
	}

	return slots, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) UserBookings(ctx context.Context, userID int64) ([]*models.Booking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

func (s *BookingService) ListBookings(ctx context.Context, limit int) ([]*models.Booking, error) {
	return s.store.ListBookings(ctx, limit)
}

// DueBookings lists upcoming bookings whose end time has already passed.
func (s *BookingService) DueBookings(ctx context.Context) ([]*models.Booking, error) {
	return s.store.ListDueBookings(ctx, s.now())
}

// revokeBookingPoints compensates the booking's ledger events with reversals.
// Best effort: once the user has spent the points the balance guard rejects
// the reversal, which is logged and skipped.
func (s *BookingService) revokeBookingPoints(ctx context.Context, booking *models.Booking) {
	bookingEvents, err := s.store.BookingEvents(ctx, booking.ID)
	if err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("revoke: load booking events")
		return
	}

	for _, ev := range bookingEvents {
		if ev.PointsDelta == 0 || ev.Reason == models.ReasonReversal {
			continue
		}
		reversal := &models.LoyaltyEvent{
			UserID:      ev.UserID,
			BookingID:   &booking.ID,
			PointsDelta: -ev.PointsDelta,
			Reason:      models.ReasonReversal,
			Description: fmt.Sprintf("reversal of event %d after cancellation", ev.ID),
		}
		if err := s.store.AppendLoyaltyEvent(ctx, reversal, false); err != nil {
			s.logger.Warn().Err(err).
				Int64("booking_id", booking.ID).
				Int64("event_id", ev.ID).
				Msg("revoke: reversal rejected")
			continue
		}
		s.publishPointsEvent(events.EventPointsRevoked, reversal)
	}
}

func (s *BookingService) publishBookingEvent(eventType string, booking *models.Booking) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		SalonID:    booking.SalonID,
		MasterID:   booking.MasterID,
		ServiceID:  booking.ServiceID,
		Date:       booking.Date,
		TimeSlot:   booking.TimeSlot,
		Status:     booking.Status,
		TotalPrice: booking.TotalPrice,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) publishPointsEvent(eventType string, event *models.LoyaltyEvent) {
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
