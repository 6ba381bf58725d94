package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"zapis/internal/database"
	"zapis/internal/models"
)

// Completer is the slice of the booking service the sweep needs.
type Completer interface {
	DueBookings(ctx context.Context) ([]*models.Booking, error)
	CompleteBooking(ctx context.Context, id int64) (*models.Booking, int64, error)
}

// SweepWorker периодически закрывает просроченные записи: запись, у которой
// время окончания прошло, переводится в completed с начислением бонусов.
// Проход идемпотентен: запись, закрытая оператором между выборкой и
// обновлением, просто пропускается.
type SweepWorker struct {
	bookings Completer
	interval time.Duration
	retry    RetryPolicy
	logger   *log.Logger
}

// NewSweepWorker builds a worker with sane defaults.
func NewSweepWorker(bookings Completer, interval time.Duration, retry RetryPolicy, logger *log.Logger) *SweepWorker {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	if retry.MaxAttempts == 0 {
		retry.MaxAttempts = 3
	}
	if retry.BaseDelay == 0 {
		retry.BaseDelay = 2 * time.Second
	}
	if retry.MaxDelay == 0 {
		retry.MaxDelay = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}

	return &SweepWorker{
		bookings: bookings,
		interval: interval,
		retry:    retry,
		logger:   logger,
	}
}

// Start launches the sweep loop; stops when ctx is done.
func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Printf("sweep_worker: started, interval %s", w.interval)
	defer w.logger.Printf("sweep_worker: stopped")

	// Первый проход сразу после старта
	w.Sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep completes every booking whose end time has passed and returns how
// many were closed.
func (w *SweepWorker) Sweep(ctx context.Context) int {
	due, err := w.fetchDue(ctx)
	if err != nil {
		w.logger.Printf("sweep_worker: fetch due bookings: %v", err)
		return 0
	}

	completed := 0
	for _, booking := range due {
		_, points, err := w.bookings.CompleteBooking(ctx, booking.ID)
		if err != nil {
			// Запись успели закрыть или отменить параллельно
			if errors.Is(err, database.ErrAlreadyTerminal) ||
				errors.Is(err, database.ErrConcurrentModification) ||
				errors.Is(err, database.ErrNotFound) {
				continue
			}
			w.logger.Printf("sweep_worker: complete booking %d: %v", booking.ID, err)
			continue
		}
		w.logger.Printf("sweep_worker: booking %d completed, %d points awarded", booking.ID, points)
		completed++
	}
	return completed
}

// fetchDue retries transient store failures with backoff.
func (w *SweepWorker) fetchDue(ctx context.Context) ([]*models.Booking, error) {
	var lastErr error
	for attempt := 1; attempt <= w.retry.MaxAttempts; attempt++ {
		due, err := w.bookings.DueBookings(ctx)
		if err == nil {
			return due, nil
		}
		lastErr = err
		if !errors.Is(err, database.ErrStoreUnavailable) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.retry.NextDelay(attempt)):
		}
	}
	return nil, lastErr
}
