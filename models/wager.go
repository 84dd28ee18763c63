package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Session selects which half of the day's result settles a wager.
type Session string

const (
	SessionOpen  Session = "open"
	SessionClose Session = "close"
)

// Valid reports whether s is one of the two sessions.
func (s Session) Valid() bool {
	return s == SessionOpen || s == SessionClose
}

// WagerStatus moves from pending to won or lost exactly once.
type WagerStatus string

const (
	WagerStatusPending WagerStatus = "pending"
	WagerStatusWon     WagerStatus = "won"
	WagerStatusLost    WagerStatus = "lost"
)

// Wager is a stake placed by an account on a market session.
type Wager struct {
	ID        int64           `db:"id" json:"id"`
	AccountID int64           `db:"account_id" json:"account_id"`
	MarketID  int64           `db:"market_id" json:"market_id"`
	BetType   BetType         `db:"bet_type" json:"bet_type"`
	Numbers   []string        `db:"numbers" json:"numbers"`
	Stake     decimal.Decimal `db:"stake" json:"stake"`
	Rate      decimal.Decimal `db:"rate" json:"rate"`
	Date      time.Time       `db:"wager_date" json:"date"`
	Session   Session         `db:"session" json:"session"`
	Status    WagerStatus     `db:"status" json:"status"`
	WinAmount decimal.Decimal `db:"win_amount" json:"win_amount"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	SettledAt *time.Time      `db:"settled_at" json:"settled_at,omitempty"`
}

// IsPending reports whether the wager still awaits settlement.
func (w *Wager) IsPending() bool {
	return w.Status == WagerStatusPending
}

// PotentialPayout is what the wager pays if it wins.
func (w *Wager) PotentialPayout() decimal.Decimal {
	return Payout(w.Stake, w.Rate)
}

// SettlementResult summarizes one declaration run.
type SettlementResult struct {
	Outcome   *Outcome        `json:"outcome"`
	Settled   int             `json:"settled"`
	Won       int             `json:"won"`
	Lost      int             `json:"lost"`
	TotalPaid decimal.Decimal `json:"total_paid"`
	// Redeclared is set when the outcome already existed with the same panels.
	Redeclared bool `json:"redeclared"`
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD wager or outcome date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, WrapError(KindInvalidInput, err, "date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}
