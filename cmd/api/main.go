package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zapis/internal/api"
	"zapis/internal/config"
	"zapis/internal/database"
	"zapis/internal/domain"
	"zapis/internal/events"
	"zapis/internal/logging"
	"zapis/internal/metrics"
	"zapis/internal/models"
	"zapis/internal/repository"
	"zapis/internal/service"
	"zapis/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.App.Timezone, err)
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if !cfg.API.Enabled {
		logger.Warn().Msg("API is disabled in config, but starting API application. Check your config.")
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := buildCatalogCache(redisClient, &logger)

	bus := events.NewEventBus()
	metrics.ObserveBus(bus, &logger)

	catalogService := service.NewCatalogService(db, cache, &logger)
	bookingService := service.NewBookingService(db, bus, service.BookingPolicy{
		MaxBookingDays: cfg.Booking.MaxBookingDays,
		PointsDivisor:  cfg.Loyalty.PointsDivisor,
		RevokeOnCancel: cfg.Loyalty.RevokeOnCancel,
	}, loc, &logger)
	loyaltyService := service.NewLoyaltyService(db, bus, &logger)
	userService := service.NewUserService(db, &logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedCatalog(ctx, catalogService, cfg); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	if cfg.Sweep.Enabled {
		sweep := worker.NewSweepWorker(
			bookingService,
			time.Duration(cfg.Sweep.IntervalMinutes)*time.Minute,
			worker.RetryPolicy{},
			log.Default(),
		)
		go sweep.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)

	httpServer := api.NewHTTPServer(cfg.API, catalogService, bookingService, loyaltyService, userService, db, &logger)
	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if !cfg.Redis.Enabled || cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildCatalogCache: redis с памятью в запасе, либо только память.
func buildCatalogCache(redisClient *redis.Client, logger *zerolog.Logger) domain.CatalogCache {
	ttl := models.CatalogCacheTTL * time.Second
	memory := repository.NewMemoryCatalogCache(ttl)
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverCatalogCache(
		repository.NewRedisCatalogCache(redisClient, ttl),
		memory,
		logger,
	)
}

func seedCatalog(ctx context.Context, catalog *service.CatalogService, cfg *config.Config) error {
	if len(cfg.Salons) == 0 && len(cfg.Masters) == 0 && len(cfg.Services) == 0 {
		return nil
	}
	return catalog.Seed(ctx, cfg.Salons, cfg.Masters, cfg.Services)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
