package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, 10*time.Second, cfg.SourceTimeout)
	assert.Equal(t, []string{"BIL", "TRA", "EMI", "FOO"}, cfg.NeedsCategories)
	assert.Equal(t, []string{"ENT", "OTH"}, cfg.WantsCategories)
	assert.True(t, decimal.RequireFromString("2.15").Equal(cfg.SpreadHome))
	assert.Equal(t, 15, cfg.TermCoverMultiplier)
	assert.False(t, cfg.SMTPEnabled())
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("SOURCE_TIMEOUT", "3s")
	t.Setenv("WANTS_CATEGORIES", " ent , oth,  ")
	t.Setenv("BENCHMARK_SPREAD_CAR", "3.1")
	t.Setenv("SMTP_HOST", "smtp.local")
	t.Setenv("REMINDER_EMAIL", "me@example.com")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 3*time.Second, cfg.SourceTimeout)
	assert.Equal(t, []string{"ENT", "OTH"}, cfg.WantsCategories)
	assert.True(t, decimal.RequireFromString("3.1").Equal(cfg.SpreadCar))
	assert.True(t, cfg.SMTPEnabled())
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"STORAGE":               "mongo",
		"SOURCE_TIMEOUT":        "soon",
		"BENCHMARK_SPREAD_HOME": "abc",
		"BROKER_RATE_LIMIT":     "fast",
		"JWT_SECRET":            "",
		"NEEDS_CATEGORIES":      " , ",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
