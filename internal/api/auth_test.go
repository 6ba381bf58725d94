package api

import (
	"net/http"
	"testing"

	"zapis/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func securedAPIConfig() config.APIConfig {
	return config.APIConfig{
		HTTP: config.APIHTTPConfig{TimeoutSeconds: 5},
		Auth: config.APIAuthConfig{
			Enabled:      true,
			HeaderAPIKey: "x-api-key",
			APIKeys: []config.APIClientKey{
				{Key: "full-access", Name: "crm"},
				{Key: "catalog-only", Name: "widget", Permissions: []string{"read:catalog"}},
			},
		},
	}
}

func TestAPIKeyAuth(t *testing.T) {
	env := newTestEnv(t, securedAPIConfig())

	t.Run("missing key", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/salons", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid key", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/salons", nil, map[string]string{"x-api-key": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("key without permission list sees everything", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/bookings", nil, map[string]string{"x-api-key": "full-access"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("scoped key reads catalog", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/salons", nil, map[string]string{"x-api-key": "catalog-only"})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("scoped key denied elsewhere", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/bookings", nil, map[string]string{"x-api-key": "catalog-only"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("healthz needs no key", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/healthz", nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	cfg := openAPIConfig()
	cfg.RateLimit = config.APIRateLimitConfig{RPS: 1, Burst: 1}
	env := newTestEnv(t, cfg)

	first := env.do(t, http.MethodGet, "/api/v1/salons", nil, nil)
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodGet, "/api/v1/salons", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
