package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapis",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapis",
			Name:      "bookings_total",
			Help:      "Booking lifecycle transitions by outcome.",
		},
		[]string{"outcome"},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "zapis",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)

	loyaltyPoints = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "zapis",
			Name:      "loyalty_points_total",
			Help:      "Absolute loyalty points moved, by reason.",
		},
		[]string{"reason"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, slotConflicts, loyaltyPoints)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking counts a lifecycle transition: created, cancelled, completed.
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// IncSlotConflict counts a rejected create.
func IncSlotConflict() {
	slotConflicts.Inc()
}

// AddLoyaltyPoints accumulates moved points by reason.
func AddLoyaltyPoints(reason string, points int64) {
	if points < 0 {
		points = -points
	}
	loyaltyPoints.WithLabelValues(reason).Add(float64(points))
}
