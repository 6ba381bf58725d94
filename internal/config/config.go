package config

import (
	"errors"
	"fmt"
	"os"

	"zapis/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Loyalty    LoyaltyConfig    `yaml:"loyalty"`
	Sweep      SweepConfig      `yaml:"sweep"`

	// Справочники заводятся из конфигурации при старте.
	Salons   []models.Salon   `yaml:"salons"`
	Masters  []models.Master  `yaml:"masters"`
	Services []models.Service `yaml:"services"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Timezone    string `yaml:"timezone"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port           int `yaml:"port"`
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type BookingConfig struct {
	MaxBookingDays int `yaml:"max_booking_days"`
}

type LoyaltyConfig struct {
	PointsDivisor  int64 `yaml:"points_divisor"`
	RevokeOnCancel bool  `yaml:"revoke_on_cancel"`
}

type SweepConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalMinutes int  `yaml:"interval_minutes"`
}

func Load(configPath string) (*Config, error) {
	// .env не обязателен: переменные могут прийти из окружения
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Loyalty.PointsDivisor <= 0 {
		return errors.New("loyalty points divisor must be positive")
	}
	if err := ValidateCatalog(c.Salons, c.Masters, c.Services); err != nil {
		return err
	}
	return nil
}

// ValidateCatalog checks referential integrity of the seeded catalog.
func ValidateCatalog(salons []models.Salon, masters []models.Master, services []models.Service) error {
	salonIDs := make(map[int64]bool, len(salons))
	for _, s := range salons {
		if s.ID == 0 {
			return fmt.Errorf("salon %q has invalid ID 0", s.Name)
		}
		if salonIDs[s.ID] {
			return fmt.Errorf("duplicate salon ID found: %d", s.ID)
		}
		salonIDs[s.ID] = true
	}

	masterIDs := make(map[int64]bool, len(masters))
	for _, m := range masters {
		if m.ID == 0 {
			return fmt.Errorf("master %q has invalid ID 0", m.Name)
		}
		if masterIDs[m.ID] {
			return fmt.Errorf("duplicate master ID found: %d", m.ID)
		}
		masterIDs[m.ID] = true
		if !salonIDs[m.SalonID] {
			return fmt.Errorf("master %q references unknown salon %d", m.Name, m.SalonID)
		}
		if m.Rating < 0 || m.Rating > 5 {
			return fmt.Errorf("master %q has rating %.1f outside 0..5", m.Name, m.Rating)
		}
	}

	serviceIDs := make(map[int64]bool, len(services))
	for _, s := range services {
		if s.ID == 0 {
			return fmt.Errorf("service %q has invalid ID 0", s.Name)
		}
		if serviceIDs[s.ID] {
			return fmt.Errorf("duplicate service ID found: %d", s.ID)
		}
		serviceIDs[s.ID] = true
		if s.Price < 0 {
			return fmt.Errorf("service %q has negative price", s.Name)
		}
		if s.DurationMin <= 0 {
			return fmt.Errorf("service %q must have a positive duration", s.Name)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "zapis"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Local"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.TimeoutSeconds == 0 {
		c.API.HTTP.TimeoutSeconds = 15
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}
	if c.Loyalty.PointsDivisor == 0 {
		c.Loyalty.PointsDivisor = models.DefaultPointsDivisor
	}
	if c.Sweep.IntervalMinutes == 0 {
		c.Sweep.IntervalMinutes = 10
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
}
