package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarket_StatusAt(t *testing.T) {
	t.Parallel()

	kalyan := &Market{Name: "Kalyan", OpenTime: "15:45", CloseTime: "16:45", ResultTime: "16:50", Active: true}
	at := func(h, m int) time.Time { return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC) }
	atSec := func(h, m, s int) time.Time { return time.Date(2024, 5, 1, h, m, s, 0, time.UTC) }

	tests := []struct {
		name string
		now  time.Time
		want MarketStatus
	}{
		{"before open", at(15, 44), MarketStatusClosed},
		{"at open", at(15, 45), MarketStatusOpen},
		{"at close", at(16, 45), MarketStatusOpen},
		{"seconds after close", atSec(16, 45, 30), MarketStatusRunning},
		{"after close", at(16, 46), MarketStatusRunning},
		{"at result", at(16, 50), MarketStatusRunning},
		{"seconds after result", atSec(16, 50, 1), MarketStatusClosed},
		{"after result", at(16, 51), MarketStatusClosed},
		{"last second before open", atSec(15, 44, 59), MarketStatusClosed},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, kalyan.StatusAt(tt.now))
		})
	}

	inactive := *kalyan
	inactive.Active = false
	assert.Equal(t, MarketStatusClosed, inactive.StatusAt(at(16, 0)))
}

func TestMarket_Validate(t *testing.T) {
	t.Parallel()

	ok := &Market{Name: "Milan Day", OpenTime: "09:30", CloseTime: "10:30", ResultTime: "10:35"}
	assert.NoError(t, ok.Validate())

	badClock := &Market{Name: "X", OpenTime: "9h", CloseTime: "10:30", ResultTime: "10:35"}
	assert.Equal(t, KindInvalidInput, KindOf(badClock.Validate()))

	outOfOrder := &Market{Name: "Y", OpenTime: "11:00", CloseTime: "10:30", ResultTime: "10:35"}
	assert.Equal(t, KindInvalidInput, KindOf(outOfOrder.Validate()))

	unnamed := &Market{OpenTime: "09:30", CloseTime: "10:30", ResultTime: "10:35"}
	assert.Error(t, unnamed.Validate())
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-05-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01/05/2024")
	assert.Equal(t, KindInvalidInput, KindOf(err))
}
