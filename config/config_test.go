package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("STARTING_BALANCE", "")
	t.Setenv("EVENT_SINK", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.StartingBalance.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 10, cfg.DefaultHistorySize)
	assert.Equal(t, 5*time.Second, cfg.LedgerTimeout)
	assert.Equal(t, time.Minute, cfg.DeclareTimeout)
	assert.Equal(t, 90*time.Second, cfg.DeclareLockTTL)
	assert.Equal(t, 2*time.Second, cfg.LockTimeout)
	assert.Equal(t, EventSinkNone, cfg.EventSink)
	assert.Equal(t, "Asia/Kolkata", cfg.MarketTimezone.String())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	t.Setenv("DATABASE_NAME", "matka")
	t.Setenv("STARTING_BALANCE", "2500.50")
	t.Setenv("LEDGER_TIMEOUT", "750ms")
	t.Setenv("DECLARE_TIMEOUT", "3m")
	t.Setenv("EVENT_SINK", "KAFKA")
	t.Setenv("MARKET_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://u:p@localhost:5432/matka?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, "2500.5", cfg.StartingBalance.String())
	assert.Equal(t, 750*time.Millisecond, cfg.LedgerTimeout)
	assert.Equal(t, 3*time.Minute, cfg.DeclareTimeout)
	assert.Equal(t, EventSinkKafka, cfg.EventSink)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"ENVIRONMENT": "development", "DATABASE_URL": ""}},
		{"negative balance", map[string]string{"ENVIRONMENT": "test", "STARTING_BALANCE": "-1"}},
		{"bad duration", map[string]string{"ENVIRONMENT": "test", "LOCK_TIMEOUT": "soon"}},
		{"bad sink", map[string]string{"ENVIRONMENT": "test", "EVENT_SINK": "carrier-pigeon"}},
		{"production without operator token", map[string]string{
			"ENVIRONMENT": "production", "DATABASE_URL": "postgres://x", "OPERATOR_TOKEN": "",
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDefaultSchedule(t *testing.T) {
	t.Parallel()

	markets, err := DefaultSchedule().ToMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 8)

	assert.Equal(t, "Kalyan", markets[0].Name)
	assert.Equal(t, "15:45", markets[0].OpenTime)
	assert.Equal(t, "16:45", markets[0].CloseTime)
	assert.Equal(t, "16:50", markets[0].ResultTime)
	for _, m := range markets {
		assert.True(t, m.Active, m.Name)
	}
}

func TestLoadSchedule_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "markets.toml")
	content := `
[[market]]
name = "Main Bazar"
open = "21:40"
close = "23:55"
result = "23:59"

[[market]]
name = "Old Market"
open = "08:00"
close = "09:00"
result = "09:05"
disabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	schedule, err := LoadSchedule(path)
	require.NoError(t, err)
	markets, err := schedule.ToMarkets()
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "Main Bazar", markets[0].Name)
	assert.False(t, markets[1].Active)
}

func TestLoadSchedule_Invalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	_, err := LoadSchedule(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = LoadSchedule(write("empty.toml", ""))
	assert.Error(t, err)

	_, err = LoadSchedule(write("dup.toml", `
[[market]]
name = "A"
open = "09:00"
close = "10:00"
result = "10:05"
[[market]]
name = "A"
open = "11:00"
close = "12:00"
result = "12:05"
`))
	assert.Error(t, err)

	_, err = LoadSchedule(write("order.toml", `
[[market]]
name = "B"
open = "10:00"
close = "09:00"
result = "10:05"
`))
	assert.Error(t, err)
}

func TestLoadSchedule_EmptyPathUsesDefault(t *testing.T) {
	t.Parallel()

	s, err := LoadSchedule("")
	require.NoError(t, err)
	assert.Len(t, s.Markets, 8)
}
