package service

import (
	"context"
	"fmt"
	"time"

	"matka/config"
	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
	locker     DeclarationLocker
	lockTTL    time.Duration
	timeout    time.Duration
	now        func() time.Time
}

// NewSettlementService creates the declaration and settlement service. locker may
// be nil, in which case only the database lock serializes declarations.
func NewSettlementService(uowFactory UnitOfWorkFactory, locker DeclarationLocker, cfg *config.Config) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		locker:     locker,
		lockTTL:    cfg.DeclareLockTTL,
		timeout:    cfg.DeclareTimeout,
		now:        time.Now,
	}
}

func declareLockKey(marketID int64, date time.Time) string {
	return fmt.Sprintf("declare:%d:%s", marketID, date.Format(time.DateOnly))
}

// DeclareResult records the outcome for a market day and settles every pending
// wager against it, all in one transaction. Repeating an identical declaration
// settles nothing twice; a declaration with different panels is rejected.
func (s *settlementService) DeclareResult(ctx context.Context, req DeclareResultRequest) (*models.SettlementResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	outcome, err := models.DeriveOutcome(req.OpenPanel, req.ClosePanel)
	if err != nil {
		return nil, err
	}
	date := models.DateOnly(req.Date)

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	if s.locker != nil {
		unlock, err := s.locker.Acquire(ctx, declareLockKey(req.MarketID, date), s.lockTTL)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	outcomes := uow.OutcomeRepository()
	if err := outcomes.LockMarketDay(ctx, req.MarketID, date, true); err != nil {
		return nil, err
	}

	market, err := uow.MarketRepository().GetByID(ctx, req.MarketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, models.NewError(models.KindUnknownMarket, "market %d does not exist", req.MarketID)
	}

	existing, err := outcomes.GetForUpdate(ctx, req.MarketID, date)
	if err != nil {
		return nil, err
	}

	result := &models.SettlementResult{TotalPaid: decimal.Zero}
	if existing != nil && existing.Declared {
		if !existing.SamePanels(outcome.OpenPanel, outcome.ClosePanel) {
			return nil, models.NewError(models.KindAlreadyDeclared,
				"result for %s on %s is already declared as %s",
				market.Name, date.Format(time.DateOnly), existing.Display())
		}
		outcome = existing
		result.Redeclared = true
	} else {
		declaredAt := s.now().UTC()
		outcome.MarketID = req.MarketID
		outcome.Date = date
		outcome.Declared = true
		outcome.DeclaredAt = &declaredAt
		if err := outcomes.Upsert(ctx, outcome); err != nil {
			return nil, err
		}
	}
	result.Outcome = outcome

	pending, err := uow.WagerRepository().GetPendingForUpdate(ctx, req.MarketID, date)
	if err != nil {
		return nil, err
	}

	settledAt := s.now().UTC()
	var winners []*models.Wager
	for _, wager := range pending {
		if s.classify(wager, outcome, settledAt) {
			winners = append(winners, wager)
			result.Won++
			result.TotalPaid = result.TotalPaid.Add(wager.WinAmount)
		} else {
			result.Lost++
		}
		result.Settled++
	}

	// Three batched writes regardless of how many wagers the day holds.
	if len(pending) > 0 {
		if err := uow.WagerRepository().SettleBatch(ctx, pending); err != nil {
			return nil, err
		}
	}
	if err := s.payWinners(ctx, uow, winners, outcome); err != nil {
		return nil, err
	}
	for _, wager := range pending {
		uow.EventBus().Publish(events.WagerSettledEvent{
			WagerID:   wager.ID,
			AccountID: wager.AccountID,
			MarketID:  wager.MarketID,
			BetType:   wager.BetType,
			Status:    wager.Status,
			WinAmount: wager.WinAmount,
		})
	}

	remaining, err := uow.WagerRepository().CountPending(ctx, req.MarketID, date)
	if err != nil {
		return nil, err
	}
	if remaining != 0 {
		return nil, models.NewError(models.KindConflict,
			"%d wagers for %s on %s are still pending after settlement", remaining, market.Name, date.Format(time.DateOnly))
	}

	uow.EventBus().Publish(events.ResultDeclaredEvent{
		Outcome:    *outcome,
		Settled:    result.Settled,
		Won:        result.Won,
		Lost:       result.Lost,
		TotalPaid:  result.TotalPaid,
		Redeclared: result.Redeclared,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	log.WithFields(log.Fields{
		"market":     market.Name,
		"date":       date.Format(time.DateOnly),
		"result":     outcome.Display(),
		"settled":    result.Settled,
		"won":        result.Won,
		"lost":       result.Lost,
		"totalPaid":  result.TotalPaid.String(),
		"redeclared": result.Redeclared,
	}).Info("Result declared")

	return result, nil
}

// classify decides one locked pending wager and fills in its final status and
// win amount. Nothing is written.
func (s *settlementService) classify(wager *models.Wager, outcome *models.Outcome, settledAt time.Time) bool {
	won, known := models.Classify(wager, outcome)
	if !known {
		log.WithFields(log.Fields{
			"wagerID": wager.ID,
			"betType": wager.BetType,
		}).Warn("No settlement rule for bet type, settling as lost")
	}

	wager.SettledAt = &settledAt
	if won {
		wager.Status = models.WagerStatusWon
		wager.WinAmount = models.Payout(wager.Stake, wager.Rate)
	} else {
		wager.Status = models.WagerStatusLost
		wager.WinAmount = decimal.Zero
	}
	return won
}

// payWinners credits every winning wager and records one wager_win history row per credit.
func (s *settlementService) payWinners(ctx context.Context, uow UnitOfWork, winners []*models.Wager, outcome *models.Outcome) error {
	if len(winners) == 0 {
		return nil
	}

	credits := make([]models.Credit, len(winners))
	for i, wager := range winners {
		credits[i] = models.Credit{AccountID: wager.AccountID, Amount: wager.WinAmount}
	}
	balances, err := uow.AccountRepository().CreditBatch(ctx, credits)
	if err != nil {
		return err
	}
	if len(balances) != len(winners) {
		return fmt.Errorf("credited %d accounts, expected %d", len(balances), len(winners))
	}

	histories := make([]*models.BalanceHistory, len(winners))
	for i, wager := range winners {
		relatedID, relatedType := relatedWager(wager.ID)
		histories[i] = &models.BalanceHistory{
			AccountID:       wager.AccountID,
			BalanceBefore:   balances[i].Sub(wager.WinAmount),
			BalanceAfter:    balances[i],
			ChangeAmount:    wager.WinAmount,
			TransactionType: models.TransactionTypeWagerWin,
			TransactionMetadata: map[string]any{
				"market_id": wager.MarketID,
				"bet_type":  string(wager.BetType),
				"result":    outcome.Display(),
			},
			RelatedID:   relatedID,
			RelatedType: relatedType,
		}
	}
	return RecordBalanceChanges(ctx, uow, histories)
}
