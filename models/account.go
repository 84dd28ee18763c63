package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds a player's cash balance.
type Account struct {
	ID        int64           `db:"id" json:"id"`
	Username  string          `db:"username" json:"username"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// Credit is one payout to apply to an account.
type Credit struct {
	AccountID int64
	Amount    decimal.Decimal
}
