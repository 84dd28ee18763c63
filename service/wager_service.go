package service

import (
	"context"
	"fmt"
	"time"

	"matka/config"
	"matka/events"
	"matka/models"

	log "github.com/sirupsen/logrus"
)

type wagerService struct {
	uowFactory UnitOfWorkFactory
	location   *time.Location
	timeout    time.Duration
	now        func() time.Time
}

// NewWagerService creates the wager intake service
func NewWagerService(uowFactory UnitOfWorkFactory, cfg *config.Config) WagerService {
	loc := cfg.MarketTimezone
	if loc == nil {
		loc = time.UTC
	}
	return &wagerService{
		uowFactory: uowFactory,
		location:   loc,
		timeout:    cfg.LedgerTimeout,
		now:        time.Now,
	}
}

// PlaceWager debits the stake and records a pending wager in one transaction.
// Wagers for a past day, or for a market day whose result is already declared,
// are rejected.
func (s *wagerService) PlaceWager(ctx context.Context, req PlaceWagerRequest) (*models.Wager, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	rate, err := models.LookupRate(req.BetType)
	if err != nil {
		return nil, err
	}
	date := models.DateOnly(req.Date)
	if today := models.DateOnly(s.now().In(s.location)); date.Before(today) {
		return nil, models.NewError(models.KindInvalidInput,
			"cannot wager on %s, the market day has passed", date.Format(time.DateOnly))
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	// Shared with other placements, exclusive against a declaration for the same day.
	if err := uow.OutcomeRepository().LockMarketDay(ctx, req.MarketID, date, false); err != nil {
		return nil, err
	}

	market, err := uow.MarketRepository().GetByID(ctx, req.MarketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, models.NewError(models.KindUnknownMarket, "market %d does not exist", req.MarketID)
	}
	if !market.Active {
		return nil, models.NewError(models.KindInvalidInput, "market %s is not accepting wagers", market.Name)
	}

	outcome, err := uow.OutcomeRepository().Get(ctx, req.MarketID, date)
	if err != nil {
		return nil, err
	}
	if outcome != nil && outcome.Declared {
		return nil, models.NewError(models.KindAlreadyDeclared,
			"result for %s on %s is already declared", market.Name, date.Format(time.DateOnly))
	}

	newBalance, err := uow.AccountRepository().Debit(ctx, req.AccountID, req.Stake)
	if err != nil {
		return nil, err
	}

	wager := &models.Wager{
		AccountID: req.AccountID,
		MarketID:  req.MarketID,
		BetType:   req.BetType,
		Numbers:   req.Numbers,
		Stake:     req.Stake,
		Rate:      rate,
		Date:      date,
		Session:   req.Session,
		Status:    models.WagerStatusPending,
	}
	if err := uow.WagerRepository().Create(ctx, wager); err != nil {
		return nil, err
	}

	relatedID, relatedType := relatedWager(wager.ID)
	history := &models.BalanceHistory{
		AccountID:       req.AccountID,
		BalanceBefore:   newBalance.Add(req.Stake),
		BalanceAfter:    newBalance,
		ChangeAmount:    req.Stake.Neg(),
		TransactionType: models.TransactionTypeWagerStake,
		TransactionMetadata: map[string]any{
			"market_id": req.MarketID,
			"bet_type":  string(req.BetType),
			"session":   string(req.Session),
			"date":      date.Format(time.DateOnly),
		},
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WagerPlacedEvent{
		WagerID:   wager.ID,
		AccountID: wager.AccountID,
		MarketID:  wager.MarketID,
		BetType:   wager.BetType,
		Session:   wager.Session,
		Date:      wager.Date,
		Stake:     wager.Stake,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit wager: %w", err)
	}

	log.WithFields(log.Fields{
		"wagerID":   wager.ID,
		"accountID": wager.AccountID,
		"market":    market.Name,
		"betType":   wager.BetType,
		"session":   wager.Session,
		"stake":     wager.Stake.String(),
	}).Info("Wager placed")

	return wager, nil
}
