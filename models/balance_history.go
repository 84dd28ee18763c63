package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial    TransactionType = "initial"
	TransactionTypeWagerStake TransactionType = "wager_stake"
	TransactionTypeWagerWin   TransactionType = "wager_win"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeWager   RelatedType = "wager"
	RelatedTypeOutcome RelatedType = "outcome"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	AccountID           int64           `db:"account_id" json:"account_id"`
	BalanceBefore       decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after" json:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"transaction_metadata,omitempty"`
	RelatedID           *int64          `db:"related_id" json:"related_id,omitempty"`
	RelatedType         *RelatedType    `db:"related_type" json:"related_type,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
