package service

import (
	"time"

	"matka/models"

	"github.com/shopspring/decimal"
)

// PlaceWagerRequest is a fully typed wager placement.
type PlaceWagerRequest struct {
	AccountID int64
	MarketID  int64
	BetType   models.BetType
	Numbers   []string
	Stake     decimal.Decimal
	Session   models.Session
	Date      time.Time
}

// Validate checks everything that can be checked without the ledger.
func (r PlaceWagerRequest) Validate() error {
	if r.AccountID <= 0 {
		return models.NewError(models.KindInvalidInput, "account id is required")
	}
	if r.MarketID <= 0 {
		return models.NewError(models.KindInvalidInput, "market id is required")
	}
	if err := models.ValidateStake(r.Stake); err != nil {
		return err
	}
	if !r.Session.Valid() {
		return models.NewError(models.KindInvalidInput, "session must be open or close, got %q", string(r.Session))
	}
	if r.Date.IsZero() {
		return models.NewError(models.KindInvalidInput, "date is required")
	}
	if _, err := models.LookupRate(r.BetType); err != nil {
		return err
	}
	return models.ValidateNumbers(r.BetType, r.Numbers)
}

// DeclareResultRequest declares both panels for a market day.
type DeclareResultRequest struct {
	MarketID   int64
	Date       time.Time
	OpenPanel  string
	ClosePanel string
}

// Validate checks the keys; the panels are checked by the outcome codec.
func (r DeclareResultRequest) Validate() error {
	if r.MarketID <= 0 {
		return models.NewError(models.KindInvalidInput, "market id is required")
	}
	if r.Date.IsZero() {
		return models.NewError(models.KindInvalidInput, "date is required")
	}
	return nil
}
