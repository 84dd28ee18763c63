package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"matka/models"
	"matka/service"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// validationError turns validator output into an invalid_input error naming each failed field.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.WrapError(models.KindInvalidInput, err, "invalid request")
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return models.NewError(models.KindInvalidInput, "invalid request: %s", strings.Join(parts, "; "))
}

// resolveDate parses an optional YYYY-MM-DD date, defaulting to today in loc.
func resolveDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return models.DateOnly(now.In(loc)), nil
	}
	return models.ParseDate(s)
}

// OpenAccountRequest registers a player.
type OpenAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

func (r *OpenAccountRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// PlaceWagerRequest is the wire form of a wager. Stake accepts a JSON number or string.
type PlaceWagerRequest struct {
	MarketID int64           `json:"market_id" validate:"required,gt=0"`
	BetType  string          `json:"bet_type" validate:"required"`
	Numbers  []string        `json:"numbers" validate:"required,min=1,max=10,dive,required,max=7"`
	Stake    decimal.Decimal `json:"stake"`
	Session  string          `json:"session" validate:"required,oneof=open close"`
	Date     string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (r *PlaceWagerRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// ToService converts the wire request for the wager service.
func (r *PlaceWagerRequest) ToService(accountID int64, now time.Time, loc *time.Location) (service.PlaceWagerRequest, error) {
	date, err := resolveDate(r.Date, now, loc)
	if err != nil {
		return service.PlaceWagerRequest{}, err
	}
	return service.PlaceWagerRequest{
		AccountID: accountID,
		MarketID:  r.MarketID,
		BetType:   models.ParseBetType(r.BetType),
		Numbers:   r.Numbers,
		Stake:     r.Stake,
		Session:   models.Session(r.Session),
		Date:      date,
	}, nil
}

// DeclareResultRequest is the operator's declaration. Panels are checked by the
// outcome codec so the error names the bad panel.
type DeclareResultRequest struct {
	Date       string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	OpenPanel  string `json:"open_panel" validate:"required"`
	ClosePanel string `json:"close_panel" validate:"required"`
}

func (r *DeclareResultRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}

// ToService converts the wire request for the settlement service.
func (r *DeclareResultRequest) ToService(marketID int64, now time.Time, loc *time.Location) (service.DeclareResultRequest, error) {
	date, err := resolveDate(r.Date, now, loc)
	if err != nil {
		return service.DeclareResultRequest{}, err
	}
	return service.DeclareResultRequest{
		MarketID:   marketID,
		Date:       date,
		OpenPanel:  strings.TrimSpace(r.OpenPanel),
		ClosePanel: strings.TrimSpace(r.ClosePanel),
	}, nil
}

// SetMarketActiveRequest toggles a market.
type SetMarketActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (r *SetMarketActiveRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return validationError(err)
	}
	return nil
}
