package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config aggregates application configuration values loaded from environment variables.
type Config struct {
	Env                string
	LogLevel           string
	HTTPAddr           string
	StorageDriver      string
	MongoURI           string
	MongoDB            string
	PostgresDSN        string
	KafkaBrokers       []string
	KafkaTopicPrefix   string
	IdempotencyDriver  string
	RedisAddr          string
	IdempotencyTTL     time.Duration
	OutboxPollInterval time.Duration
	RetryBackoff       []time.Duration
	S3Endpoint         string
	S3PublicEndpoint   string
	S3AccessKey        string
	S3SecretKey        string
	S3Bucket           string
	S3UseSSL           bool
	OTLPEndpoint       string
	Currency           string
	FixturesPath       string
	SessionTTL         time.Duration
}

// Load reads an optional .env file (ENV_FILE overrides the path) and then
// parses configuration from the environment. Variables already set in the
// environment win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		LogLevel:          os.Getenv("LOG_LEVEL"),
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		StorageDriver:     strings.ToLower(getEnv("STORAGE_DRIVER", DriverMemory)),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           getEnv("MONGO_DB", "dwelling"),
		PostgresDSN:       os.Getenv("POSTGRES_DSN"),
		KafkaTopicPrefix:  getEnv("KAFKA_TOPIC_PREFIX", ""),
		IdempotencyDriver: strings.ToLower(getEnv("IDEMPOTENCY_DRIVER", DriverMemory)),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3PublicEndpoint:  getEnv("S3_PUBLIC_ENDPOINT", ""),
		S3AccessKey:       getEnv("S3_ACCESS_KEY", "minioadmin"),
		S3SecretKey:       getEnv("S3_SECRET_KEY", "minioadmin"),
		S3Bucket:          getEnv("S3_BUCKET", "listing-images"),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Currency:          strings.ToUpper(getEnv("CURRENCY", "RUB")),
		FixturesPath:      os.Getenv("FIXTURES_PATH"),
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	var err error
	if cfg.IdempotencyTTL, err = parseDurationEnv("IDEMP_TTL", 168*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.OutboxPollInterval, err = parseDurationEnv("OUTBOX_POLL_INTERVAL", 500*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = parseDurationEnv("SESSION_TTL", 30*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.RetryBackoff, err = parseDurationList("RETRY_BACKOFF", "1s,5s,30s"); err != nil {
		return Config{}, err
	}
	if cfg.S3UseSSL, err = parseBoolEnv("S3_USE_SSL", false); err != nil {
		return Config{}, err
	}
	if cfg.S3PublicEndpoint == "" {
		cfg.S3PublicEndpoint = cfg.S3Endpoint
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for STORAGE_DRIVER=%s", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.IdempotencyDriver {
	case DriverMemory:
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for IDEMPOTENCY_DRIVER=%s", c.IdempotencyDriver)
		}
	case DriverRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for IDEMPOTENCY_DRIVER=%s", c.IdempotencyDriver)
		}
	default:
		return fmt.Errorf("unknown IDEMPOTENCY_DRIVER %q", c.IdempotencyDriver)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("invalid CURRENCY %q", c.Currency)
	}
	return nil
}

// Development reports whether human readable logs are wanted.
func (c Config) Development() bool {
	switch strings.ToLower(c.Env) {
	case "dev", "local", "development":
		return true
	}
	return false
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
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

func parseDurationList(key, def string) ([]time.Duration, error) {
	var out []time.Duration
	for _, raw := range strings.Split(getEnv(key, def), ",") {
		val := strings.TrimSpace(raw)
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("invalid %s component %q: %w", key, raw, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "yes", "y", "on":
		return true, nil
	case "0", "f", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid %s boolean: %q", key, raw)
	}
}
