package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Russia", cfg.Destination)
	assert.Equal(t, 7, cfg.StayNights)
	assert.Equal(t, 1, cfg.PartySize)
	assert.Equal(t, "http", cfg.FetchMode)
	assert.Equal(t, "ceil", cfg.PageRounding)
	assert.Equal(t, "skip", cfg.FirstPage)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, 4, cfg.RetryAttempts(), "first attempt plus MAX_RETRIES retries")
	assert.Equal(t, "Charts", cfg.ChartsDir)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, 2*time.Second, cfg.RetryBaseDelay())
	assert.False(t, cfg.StoreEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DESTINATION", "Georgia")
	t.Setenv("PAGE_ROUNDING", "round")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_DSN", "file:hotels.db")
	t.Setenv("FIRST_PAGE", "reuse")
	t.Setenv("MAX_RETRIES", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Georgia", cfg.Destination)
	assert.Equal(t, "round", cfg.PageRounding)
	assert.Equal(t, "reuse", cfg.FirstPage)
	assert.Equal(t, 1, cfg.RetryAttempts())
	assert.True(t, cfg.StoreEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FETCH_MODE", "carrier-pigeon"},
		{"PAGE_ROUNDING", "floor"},
		{"DB_DRIVER", "mysql"},
		{"PARTY_SIZE", "0"},
		{"FIRST_PAGE", "last"},
		{"MAX_RETRIES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
