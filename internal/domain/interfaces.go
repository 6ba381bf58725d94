package domain

import (
	"context"
	"time"

	"zapis/internal/models"
	"zapis/internal/schedule"
)

// Store is the persistence gateway the services talk through. The sqlite
// implementation lives in internal/database; tests substitute mocks.
type Store interface {
	// catalog
	UpsertSalon(ctx context.Context, salon *models.Salon) error
	UpsertMaster(ctx context.Context, master *models.Master) error
	UpsertService(ctx context.Context, service *models.Service) error
	ListSalons(ctx context.Context) ([]models.Salon, error)
	GetSalon(ctx context.Context, id int64) (*models.Salon, error)
	ListMasters(ctx context.Context, salonID int64) ([]models.Master, error)
	GetMaster(ctx context.Context, id int64) (*models.Master, error)
	ListServices(ctx context.Context) ([]models.Service, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)

	// bookings
	CreateBookingSlot(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]*models.Booking, error)
	ListBookings(ctx context.Context, limit int) ([]*models.Booking, error)
	ListDueBookings(ctx context.Context, now time.Time) ([]*models.Booking, error)
	UpdateBookingStatusWithVersion(ctx context.Context, id, fromVersion int64, status string) error
	CompleteBooking(ctx context.Context, id, fromVersion int64, event *models.LoyaltyEvent) error
	OccupiedIntervals(ctx context.Context, masterID int64, date string) ([]schedule.Interval, error)

	// users
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
	UpsertUserByPhone(ctx context.Context, user *models.User) error
	UpdateUserContact(ctx context.Context, id int64, name, email string) error

	// loyalty ledger
	AppendLoyaltyEvent(ctx context.Context, event *models.LoyaltyEvent, incVisit bool) error
	BonusHistory(ctx context.Context, userID int64, limit int) ([]*models.LoyaltyEvent, error)
	BalanceOf(ctx context.Context, userID int64) (int64, error)
	BookingEvents(ctx context.Context, bookingID int64) ([]*models.LoyaltyEvent, error)
}

// CatalogCache holds serialized catalog payloads between requests. Slot
// availability is never stored here: it is derived from the store on every
// request.
type CatalogCache interface {
	GetSalons(ctx context.Context) ([]models.Salon, error)
	SetSalons(ctx context.Context, salons []models.Salon) error
	GetMasters(ctx context.Context, salonID int64) ([]models.Master, error)
	SetMasters(ctx context.Context, salonID int64, masters []models.Master) error
	GetServices(ctx context.Context) ([]models.Service, error)
	SetServices(ctx context.Context, services []models.Service) error
	Invalidate(ctx context.Context) error
}

// EventPublisher fans domain events out to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
