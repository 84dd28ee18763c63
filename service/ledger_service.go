package service

import (
	"context"
	"strings"
	"time"

	"matka/config"
	"matka/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type ledgerService struct {
	uowFactory      UnitOfWorkFactory
	cache           OutcomeCache
	startingBalance decimal.Decimal
	defaultLimit    int
	maxLimit        int
	timeout         time.Duration
}

// NewLedgerService creates the account and query service. cache may be nil.
func NewLedgerService(uowFactory UnitOfWorkFactory, cache OutcomeCache, cfg *config.Config) LedgerService {
	return &ledgerService{
		uowFactory:      uowFactory,
		cache:           cache,
		startingBalance: cfg.StartingBalance,
		defaultLimit:    cfg.DefaultHistorySize,
		maxLimit:        cfg.MaxHistorySize,
		timeout:         cfg.LedgerTimeout,
	}
}

// OpenAccount creates an account at the configured starting balance.
func (s *ledgerService) OpenAccount(ctx context.Context, username string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, models.NewError(models.KindInvalidInput, "username is required")
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	existing, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewError(models.KindConflict, "username %q is taken", username)
	}

	account, err := uow.AccountRepository().Create(ctx, username, s.startingBalance)
	if err != nil {
		return nil, err
	}

	history := &models.BalanceHistory{
		AccountID:       account.ID,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    account.Balance,
		ChangeAmount:    account.Balance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"username":  username,
	}).Info("Account opened")
	return account, nil
}

// GetBalance returns an account's current balance.
func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.read(ctx, func(ctx context.Context, uow UnitOfWork) error {
		account, err := s.requireAccount(ctx, uow, accountID)
		if err != nil {
			return err
		}
		balance = account.Balance
		return nil
	})
	return balance, err
}

// GetWager returns one of the account's wagers.
func (s *ledgerService) GetWager(ctx context.Context, accountID, wagerID int64) (*models.Wager, error) {
	var wager *models.Wager
	err := s.read(ctx, func(ctx context.Context, uow UnitOfWork) error {
		w, err := uow.WagerRepository().GetByID(ctx, wagerID)
		if err != nil {
			return err
		}
		// Another account's wager is reported the same as a missing one.
		if w == nil || w.AccountID != accountID {
			return models.NewError(models.KindUnknownWager, "wager %d does not exist", wagerID)
		}
		wager = w
		return nil
	})
	return wager, err
}

// GetWagerHistory returns the account's wagers, most recent first.
func (s *ledgerService) GetWagerHistory(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error) {
	limit = s.clampLimit(limit)

	var wagers []*models.Wager
	err := s.read(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.requireAccount(ctx, uow, accountID); err != nil {
			return err
		}
		var err error
		wagers, err = uow.WagerRepository().GetByAccount(ctx, accountID, limit)
		return err
	})
	return wagers, err
}

// GetBalanceHistory returns the account's balance changes, most recent first.
func (s *ledgerService) GetBalanceHistory(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error) {
	limit = s.clampLimit(limit)

	var history []*models.BalanceHistory
	err := s.read(ctx, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.requireAccount(ctx, uow, accountID); err != nil {
			return err
		}
		var err error
		history, err = uow.BalanceHistoryRepository().GetByAccount(ctx, accountID, limit)
		return err
	})
	return history, err
}

// GetOutcome returns the declared result for a market day, reading through the cache.
func (s *ledgerService) GetOutcome(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	date = models.DateOnly(date)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, marketID, date)
		if err != nil {
			log.WithError(err).WithField("marketID", marketID).Warn("Outcome cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	var outcome *models.Outcome
	err := s.read(ctx, func(ctx context.Context, uow UnitOfWork) error {
		market, err := uow.MarketRepository().GetByID(ctx, marketID)
		if err != nil {
			return err
		}
		if market == nil {
			return models.NewError(models.KindUnknownMarket, "market %d does not exist", marketID)
		}
		o, err := uow.OutcomeRepository().Get(ctx, marketID, date)
		if err != nil {
			return err
		}
		if o == nil || !o.Declared {
			return models.NewError(models.KindNotFound,
				"no result declared for %s on %s", market.Name, date.Format(time.DateOnly))
		}
		outcome = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, outcome); err != nil {
			log.WithError(err).WithField("marketID", marketID).Warn("Outcome cache write failed")
		}
	}
	return outcome, nil
}

// read runs fn in a unit of work that is always rolled back.
func (s *ledgerService) read(ctx context.Context, fn func(context.Context, UnitOfWork) error) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	return fn(ctx, uow)
}

func (s *ledgerService) requireAccount(ctx context.Context, uow UnitOfWork, accountID int64) (*models.Account, error) {
	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.NewError(models.KindUnknownAccount, "account %d does not exist", accountID)
	}
	return account, nil
}

func (s *ledgerService) clampLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		return s.maxLimit
	}
	return limit
}
