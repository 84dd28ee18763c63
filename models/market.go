package models

import (
	"fmt"
	"time"
)

// MarketStatus is the display state of a market at a point in the day.
type MarketStatus string

const (
	MarketStatusOpen    MarketStatus = "open"
	MarketStatusRunning MarketStatus = "running"
	MarketStatusClosed  MarketStatus = "closed"
)

// Market is a named daily session with open, close and result clock times ("HH:MM").
type Market struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	OpenTime   string    `db:"open_time" json:"open_time"`
	CloseTime  string    `db:"close_time" json:"close_time"`
	ResultTime string    `db:"result_time" json:"result_time"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Validate checks that the three clock times parse and are in order.
func (m *Market) Validate() error {
	if m.Name == "" {
		return NewError(KindInvalidInput, "market name is required")
	}
	open, err := ParseClock(m.OpenTime)
	if err != nil {
		return WrapError(KindInvalidInput, err, "market %s open time", m.Name)
	}
	cls, err := ParseClock(m.CloseTime)
	if err != nil {
		return WrapError(KindInvalidInput, err, "market %s close time", m.Name)
	}
	res, err := ParseClock(m.ResultTime)
	if err != nil {
		return WrapError(KindInvalidInput, err, "market %s result time", m.Name)
	}
	if !(open < cls && cls <= res) {
		return NewError(KindInvalidInput, "market %s times must satisfy open < close <= result", m.Name)
	}
	return nil
}

// StatusAt reports whether now falls in the betting window, the result window, or
// neither. now should already be in the schedule's time zone. Display only.
func (m *Market) StatusAt(now time.Time) MarketStatus {
	open, err1 := ParseClock(m.OpenTime)
	cls, err2 := ParseClock(m.CloseTime)
	res, err3 := ParseClock(m.ResultTime)
	if err1 != nil || err2 != nil || err3 != nil || !m.Active {
		return MarketStatusClosed
	}

	// Clock times are whole minutes; compare in seconds so 16:45:30 is past a 16:45 close.
	sec := now.Hour()*3600 + now.Minute()*60 + now.Second()
	switch {
	case open*60 <= sec && sec <= cls*60:
		return MarketStatusOpen
	case cls*60 < sec && sec <= res*60:
		return MarketStatusRunning
	default:
		return MarketStatusClosed
	}
}

// MarketView is a market with its display status and the day's result, if declared.
type MarketView struct {
	Market
	Status MarketStatus `json:"status"`
	Result string       `json:"result"`
}
