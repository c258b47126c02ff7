package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "STORAGE_DRIVER", "MONGO_URI", "MONGO_DB", "POSTGRES_DSN",
		"KAFKA_BROKERS", "KAFKA_TOPIC_PREFIX", "IDEMPOTENCY_DRIVER", "REDIS_ADDR", "IDEMP_TTL",
		"OUTBOX_POLL_INTERVAL", "RETRY_BACKOFF", "S3_ENDPOINT", "S3_USE_SSL", "CURRENCY",
		"FIXTURES_PATH", "SESSION_TTL", "OTEL_EXPORTER_OTLP_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Equal(t, DriverMemory, cfg.IdempotencyDriver)
	assert.Equal(t, "RUB", cfg.Currency)
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.True(t, cfg.Development())
}

func TestLoadParsesBrokersAndDurations(t *testing.T) {
	isolate(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("OUTBOX_POLL_INTERVAL", "2s")
	t.Setenv("RETRY_BACKOFF", "100ms, 1s")
	t.Setenv("APP_ENV", "prod")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, time.Second}, cfg.RetryBackoff)
	assert.False(t, cfg.Development())
}

func TestLoadRequiresDriverSettings(t *testing.T) {
	cases := map[string]map[string]string{
		"mongo storage":     {"STORAGE_DRIVER": "mongo"},
		"postgres storage":  {"STORAGE_DRIVER": "postgres"},
		"redis idempotency": {"IDEMPOTENCY_DRIVER": "redis"},
		"unknown storage":   {"STORAGE_DRIVER": "sqlite"},
		"bad duration":      {"IDEMP_TTL": "soon"},
		"bad bool":          {"S3_USE_SSL": "maybe"},
		"bad currency":      {"CURRENCY": "RUBLE"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FIXTURES_PATH=/tmp/fixtures.json\nHTTP_ADDR=:9999\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("HTTP_ADDR", ":7000")
	require.NoError(t, os.Unsetenv("FIXTURES_PATH"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/fixtures.json", cfg.FixturesPath)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
}
