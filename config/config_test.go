package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "pastryjoy-api", cfg.AppName)
	assert.Equal(t, 30*time.Minute, cfg.AccessTTL)
	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, 100, cfg.DefaultPageLimit)
	assert.Equal(t, 1000, cfg.MaxPageLimit)
	assert.Empty(t, cfg.ESAddrs())
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("DEFAULT_CURRENCY", "eur")
	t.Setenv("JWT_ACCESS_TTL", "15m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("MIN_UNIT_PRICE", "0.50")
	t.Setenv("DEFAULT_PAGE_LIMIT", "not-a-number")

	cfg := Load()

	assert.Equal(t, "EUR", cfg.DefaultCurrency)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.True(t, cfg.MinUnitPrice.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, 100, cfg.DefaultPageLimit)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"dev secret in production", func(c *Config) { c.Env = "production" }, false},
		{"real secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = "s3cr3t" }, true},
		{"bad currency", func(c *Config) { c.DefaultCurrency = "DOLLAR" }, false},
		{"limits inverted", func(c *Config) { c.MaxPageLimit = 10 }, false},
		{"zero ttl", func(c *Config) { c.AccessTTL = 0 }, false},
		{"negative min price", func(c *Config) { c.MinUnitPrice = decimal.NewFromInt(-1) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
