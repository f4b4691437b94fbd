package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	HTTPAddr           string
	Currency           string
	StorageMode        string
	MongoURI           string
	MongoDB            string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	FixturesPath       string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	LockRetryInterval  time.Duration
	LockTimeout        time.Duration
}

// Load parses configuration from the current environment. A .env file in the
// working directory is picked up when present, without overriding real env vars.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:              getEnv("APP_ENV", "dev"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		Currency:         strings.ToUpper(getEnv("PRICING_CURRENCY", "USD")),
		StorageMode:      strings.ToLower(getEnv("STORAGE_MODE", "memory")),
		MongoURI:         os.Getenv("MONGO_URI"),
		MongoDB:          getEnv("MONGO_DB", "homestay"),
		KafkaTopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", ""),
		FixturesPath:     os.Getenv("FIXTURES_PATH"),
	}
	if brokers := getEnv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	idempotencyTTL, err := parseDurationEnv("IDEMP_TTL", 168*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.IdempotencyTTL = idempotencyTTL

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.OutboxPollInterval = poll

	lockRetry, err := parseDurationEnv("BOOKING_LOCK_RETRY", 25*time.Millisecond)
	if err != nil {
		return Config{}, err
	}
	cfg.LockRetryInterval = lockRetry

	lockTimeout, err := parseDurationEnv("BOOKING_LOCK_TIMEOUT", 3*time.Second)
	if err != nil {
		return Config{}, err
	}
	cfg.LockTimeout = lockTimeout

	if len(cfg.Currency) != 3 {
		return Config{}, fmt.Errorf("invalid PRICING_CURRENCY %q", cfg.Currency)
	}
	switch cfg.StorageMode {
	case "memory":
	case "mongo":
		if cfg.MongoURI == "" {
			return Config{}, fmt.Errorf("MONGO_URI is required when STORAGE_MODE=mongo")
		}
	default:
		return Config{}, fmt.Errorf("invalid STORAGE_MODE %q", cfg.StorageMode)
	}
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s duration: %w", key, err)
	}
	return d, nil
}
