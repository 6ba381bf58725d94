package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"zapis/internal/config"
	"zapis/internal/database"
	"zapis/internal/metrics"
	"zapis/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Pinger reports whether the storage behind the API is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HTTPServer exposes the booking API over JSON.
type HTTPServer struct {
	cfg      config.APIConfig
	catalog  *service.CatalogService
	bookings *service.BookingService
	loyalty  *service.LoyaltyService
	users    *service.UserService
	health   Pinger
	auth     *HTTPAuth
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	catalog *service.CatalogService,
	bookings *service.BookingService,
	loyalty *service.LoyaltyService,
	users *service.UserService,
	health Pinger,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:      cfg,
		catalog:  catalog,
		bookings: bookings,
		loyalty:  loyalty,
		users:    users,
		health:   health,
		logger:   logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.loggingMiddleware(srv.auth.Wrap(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      timeout,
	}

	return srv
}

func (s *HTTPServer) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	mux.HandleFunc("GET /api/v1/salons", s.handleListSalons)
	mux.HandleFunc("GET /api/v1/masters", s.handleListMasters)
	mux.HandleFunc("GET /api/v1/services", s.handleListServices)
	mux.HandleFunc("GET /api/v1/availability", s.handleAvailability)

	mux.HandleFunc("POST /api/v1/bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /api/v1/bookings", s.handleListBookings)
	mux.HandleFunc("GET /api/v1/bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", s.handleCancelBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/cancel", s.handleCancelBooking)
	mux.HandleFunc("POST /api/v1/bookings/{id}/complete", s.handleCompleteBooking)

	mux.HandleFunc("POST /api/v1/users", s.handleRegisterUser)
	mux.HandleFunc("GET /api/v1/users/{id}", s.handleGetUser)
	mux.HandleFunc("PUT /api/v1/users/{id}", s.handleUpdateUser)
	mux.HandleFunc("GET /api/v1/users/{id}/bookings", s.handleUserBookings)
	mux.HandleFunc("GET /api/v1/users/{id}/bonus", s.handleBonusBalance)
	mux.HandleFunc("GET /api/v1/users/{id}/bonus-history", s.handleBonusHistory)
	mux.HandleFunc("POST /api/v1/users/{id}/redeem", s.handleRedeem)
	mux.HandleFunc("POST /api/v1/users/{id}/bonus", s.handleAdjustBonus)

	mux.HandleFunc("GET /api/v1/export/bookings.xlsx", s.handleExportBookings)
}

// Handler returns the full middleware chain, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps storage sentinels onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, database.ErrUnknownService):
		return http.StatusNotFound
	case errors.Is(err, database.ErrInvalidReference),
		errors.Is(err, database.ErrPastSlot),
		errors.Is(err, database.ErrDateTooFar),
		errors.Is(err, database.ErrInvalidSlot),
		errors.Is(err, database.ErrOutsideWorkingHours):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrSlotConflict),
		errors.Is(err, database.ErrAlreadyTerminal),
		errors.Is(err, database.ErrConcurrentModification),
		errors.Is(err, database.ErrNegativeBalance):
		return http.StatusConflict
	case errors.Is(err, database.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
