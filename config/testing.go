package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// NewTestConfig returns a configuration suitable for tests: no external services,
// short timeouts, and the default starting balance.
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:           ":0",
		MetricsPort:        "0",
		OperatorToken:      "test-operator-token",
		LedgerTimeout:      5 * time.Second,
		DeclareTimeout:     10 * time.Second,
		LockTimeout:        2 * time.Second,
		StartingBalance:    decimal.NewFromInt(1000),
		DefaultHistorySize: 10,
		MaxHistorySize:     100,
		MarketTimezone:     time.UTC,
		OutcomeCacheTTL:    time.Minute,
		DeclareLockTTL:     10 * time.Second,
		EventSink:          EventSinkNone,
		LogLevel:           "debug",
		Environment:        "test",
	}
}
