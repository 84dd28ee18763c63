package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // market clocks need zone data on minimal images

	"matka/database"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Event sink names accepted by EVENT_SINK.
const (
	EventSinkNone  = "none"
	EventSinkNATS  = "nats"
	EventSinkKafka = "kafka"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL    string
	LedgerTimeout  time.Duration // deadline applied to each ledger operation
	DeclareTimeout time.Duration // deadline for declaring a result and settling the day
	LockTimeout    time.Duration // Postgres lock_timeout per transaction

	// HTTP configuration
	HTTPAddr      string
	MetricsPort   string
	OperatorToken string // required on result declaration routes

	// Ledger configuration
	StartingBalance    decimal.Decimal
	DefaultHistorySize int
	MaxHistorySize     int

	// Market schedule
	MarketSchedulePath string
	MarketTimezone     *time.Location

	// Redis (optional); empty address disables the outcome cache and declaration lock
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	OutcomeCacheTTL time.Duration
	DeclareLockTTL  time.Duration

	// Event export
	EventSink    string
	NATSURL      string
	NATSStream   string
	KafkaBrokers string
	KafkaTopic   string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

// Load reads a .env file when present, then environment variables over the defaults.
func Load() (*Config, error) {
	// Missing .env is fine; deployed environments set real variables.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		HTTPAddr:           getEnvWithDefault("HTTP_ADDR", ":8080"),
		MetricsPort:        getEnvWithDefault("METRICS_PORT", "9090"),
		OperatorToken:      os.Getenv("OPERATOR_TOKEN"),
		StartingBalance:    decimal.NewFromInt(1000),
		DefaultHistorySize: 10,
		MaxHistorySize:     100,
		MarketSchedulePath: os.Getenv("MARKET_SCHEDULE_PATH"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		EventSink:          strings.ToLower(getEnvWithDefault("EVENT_SINK", EventSinkNone)),
		NATSURL:            getEnvWithDefault("NATS_URL", "nats://localhost:4222"),
		NATSStream:         getEnvWithDefault("NATS_STREAM", "matka_events"),
		KafkaBrokers:       getEnvWithDefault("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:         getEnvWithDefault("KAFKA_TOPIC", "matka.ledger"),
		LogLevel:           getEnvWithDefault("LOG_LEVEL", "info"),
		Environment:        getEnvWithDefault("ENVIRONMENT", "development"),
	}

	if name := os.Getenv("DATABASE_NAME"); name != "" && cfg.DatabaseURL != "" {
		cfg.DatabaseURL = database.ConstructDatabaseURL(cfg.DatabaseURL, name)
	}

	var err error
	if cfg.LedgerTimeout, err = getDuration("LEDGER_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.DeclareTimeout, err = getDuration("DECLARE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}
	if cfg.LockTimeout, err = getDuration("LOCK_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.OutcomeCacheTTL, err = getDuration("OUTCOME_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DeclareLockTTL, err = getDuration("DECLARE_LOCK_TTL", 90*time.Second); err != nil {
		return nil, err
	}

	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		parsed, err := decimal.NewFromString(balance)
		if err != nil || parsed.IsNegative() {
			return nil, fmt.Errorf("STARTING_BALANCE must be a non-negative amount, got %q", balance)
		}
		cfg.StartingBalance = parsed
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		if cfg.RedisDB, err = strconv.Atoi(db); err != nil {
			return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
	}

	tz := getEnvWithDefault("MARKET_TIMEZONE", "Asia/Kolkata")
	if cfg.MarketTimezone, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid MARKET_TIMEZONE %q: %w", tz, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings for the current environment.
func (c *Config) Validate() error {
	switch c.EventSink {
	case EventSinkNone, EventSinkNATS, EventSinkKafka:
	default:
		return fmt.Errorf("EVENT_SINK must be one of none, nats, kafka; got %q", c.EventSink)
	}

	if c.Environment == "test" {
		return nil
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && c.OperatorToken == "" {
		return fmt.Errorf("OPERATOR_TOKEN is required in production")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, value)
	}
	return d, nil
}
