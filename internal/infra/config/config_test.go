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
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, "memory", cfg.StorageMode)
	assert.Equal(t, 168*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("PRICING_CURRENCY", "eur")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BOOKING_LOCK_TIMEOUT", "10s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.LockTimeout)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad currency", func(t *testing.T) {
		t.Setenv("PRICING_CURRENCY", "DOLLARS")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("mongo mode needs a uri", func(t *testing.T) {
		t.Setenv("STORAGE_MODE", "mongo")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("unknown storage mode", func(t *testing.T) {
		t.Setenv("STORAGE_MODE", "postgres")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("OUTBOX_POLL_INTERVAL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
