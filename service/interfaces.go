package service

import (
	"context"
	"time"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByID retrieves an account, or nil when it does not exist
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByUsername retrieves an account by username, or nil when it does not exist
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*models.Account, error)

	// Debit atomically subtracts amount if the balance covers it and returns the new balance
	Debit(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error)

	// CreditBatch applies credits in order in one round trip and returns the balance after each
	CreditBatch(ctx context.Context, credits []models.Credit) ([]decimal.Decimal, error)
}

// MarketRepository defines the interface for market data access
type MarketRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Market, error)
	GetAll(ctx context.Context) ([]*models.Market, error)

	// Upsert inserts the market or updates the times of the market with the same name
	Upsert(ctx context.Context, market *models.Market) error

	SetActive(ctx context.Context, id int64, active bool) error
}

// WagerRepository defines the interface for wager data access
type WagerRepository interface {
	// Create inserts a pending wager and fills in its ID and CreatedAt
	Create(ctx context.Context, wager *models.Wager) error

	GetByID(ctx context.Context, id int64) (*models.Wager, error)

	// GetByAccount returns the account's wagers, most recent first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error)

	// GetPendingForUpdate locks and returns every pending wager for a market day,
	// ordered by account then wager id
	GetPendingForUpdate(ctx context.Context, marketID int64, date time.Time) ([]*models.Wager, error)

	// SettleBatch writes every wager's final status in one round trip; it fails with a
	// conflict if any row is no longer pending
	SettleBatch(ctx context.Context, wagers []*models.Wager) error

	CountPending(ctx context.Context, marketID int64, date time.Time) (int, error)
}

// OutcomeRepository defines the interface for declared results
type OutcomeRepository interface {
	Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error)
	GetForUpdate(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error)
	GetByDate(ctx context.Context, date time.Time) ([]*models.Outcome, error)
	Upsert(ctx context.Context, outcome *models.Outcome) error

	// LockMarketDay takes a transaction scoped lock on (market, date). Placements
	// take it shared, declarations exclusive.
	LockMarketDay(ctx context.Context, marketID int64, date time.Time, exclusive bool) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// RecordBatch creates the entries in order in one round trip
	RecordBatch(ctx context.Context, histories []*models.BalanceHistory) error

	// GetByAccount returns balance history for an account, most recent first
	GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repository calls into one transaction. Events published
// through EventBus are delivered only after Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountRepository() AccountRepository
	MarketRepository() MarketRepository
	WagerRepository() WagerRepository
	OutcomeRepository() OutcomeRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates unit of work instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// OutcomeCache is a read-through cache for declared results. Get returns nil on a miss.
type OutcomeCache interface {
	Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error)
	Set(ctx context.Context, outcome *models.Outcome) error
}

// DeclarationLocker serializes declarations across service instances.
// Acquire fails with a conflict when the key is already held.
type DeclarationLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// WagerService accepts new wagers
type WagerService interface {
	PlaceWager(ctx context.Context, req PlaceWagerRequest) (*models.Wager, error)
}

// SettlementService declares results and settles pending wagers
type SettlementService interface {
	DeclareResult(ctx context.Context, req DeclareResultRequest) (*models.SettlementResult, error)
}

// LedgerService covers accounts and read queries
type LedgerService interface {
	OpenAccount(ctx context.Context, username string) (*models.Account, error)
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	GetWager(ctx context.Context, accountID, wagerID int64) (*models.Wager, error)
	GetWagerHistory(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error)
	GetBalanceHistory(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error)
	GetOutcome(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error)
}

// MarketService exposes the market schedule
type MarketService interface {
	SeedMarkets(ctx context.Context, markets []*models.Market) error
	ListMarkets(ctx context.Context, now time.Time) ([]*models.MarketView, error)
	SetMarketActive(ctx context.Context, marketID int64, active bool) (*models.Market, error)
}
