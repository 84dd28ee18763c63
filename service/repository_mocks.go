package service

import (
	"context"
	"time"

	"matka/events"
	"matka/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*models.Account, error) {
	args := m.Called(ctx, username, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Debit(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockAccountRepository) CreditBatch(ctx context.Context, credits []models.Credit) ([]decimal.Decimal, error) {
	args := m.Called(ctx, credits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]decimal.Decimal), args.Error(1)
}

// MockMarketRepository is a mock implementation of MarketRepository
type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) GetByID(ctx context.Context, id int64) (*models.Market, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}

func (m *MockMarketRepository) GetAll(ctx context.Context) ([]*models.Market, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Market), args.Error(1)
}

func (m *MockMarketRepository) Upsert(ctx context.Context, market *models.Market) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

func (m *MockMarketRepository) SetActive(ctx context.Context, id int64, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	args := m.Called(ctx, wager)
	return args.Error(0)
}

func (m *MockWagerRepository) GetByID(ctx context.Context, id int64) (*models.Wager, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) GetPendingForUpdate(ctx context.Context, marketID int64, date time.Time) ([]*models.Wager, error) {
	args := m.Called(ctx, marketID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *MockWagerRepository) SettleBatch(ctx context.Context, wagers []*models.Wager) error {
	args := m.Called(ctx, wagers)
	return args.Error(0)
}

func (m *MockWagerRepository) CountPending(ctx context.Context, marketID int64, date time.Time) (int, error) {
	args := m.Called(ctx, marketID, date)
	return args.Int(0), args.Error(1)
}

// MockOutcomeRepository is a mock implementation of OutcomeRepository
type MockOutcomeRepository struct {
	mock.Mock
}

func (m *MockOutcomeRepository) Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	args := m.Called(ctx, marketID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Outcome), args.Error(1)
}

func (m *MockOutcomeRepository) GetForUpdate(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	args := m.Called(ctx, marketID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Outcome), args.Error(1)
}

func (m *MockOutcomeRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Outcome, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Outcome), args.Error(1)
}

func (m *MockOutcomeRepository) Upsert(ctx context.Context, outcome *models.Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

func (m *MockOutcomeRepository) LockMarketDay(ctx context.Context, marketID int64, date time.Time, exclusive bool) error {
	args := m.Called(ctx, marketID, date, exclusive)
	return args.Error(0)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) RecordBatch(ctx context.Context, histories []*models.BalanceHistory) error {
	args := m.Called(ctx, histories)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher records published events without delivering them
type MockEventPublisher struct {
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Events = append(m.Events, event)
}

// OfType returns the recorded events with the given type
func (m *MockEventPublisher) OfType(t events.EventType) []events.Event {
	var out []events.Event
	for _, e := range m.Events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accountRepo        AccountRepository
	marketRepo         MarketRepository
	wagerRepo          WagerRepository
	outcomeRepo        OutcomeRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work
func (m *MockUnitOfWork) SetRepositories(accounts AccountRepository, markets MarketRepository, wagers WagerRepository, outcomes OutcomeRepository, history BalanceHistoryRepository) {
	m.accountRepo = accounts
	m.marketRepo = markets
	m.wagerRepo = wagers
	m.outcomeRepo = outcomes
	m.balanceHistoryRepo = history
}

// SetEventBus wires the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository               { return m.accountRepo }
func (m *MockUnitOfWork) MarketRepository() MarketRepository                 { return m.marketRepo }
func (m *MockUnitOfWork) WagerRepository() WagerRepository                   { return m.wagerRepo }
func (m *MockUnitOfWork) OutcomeRepository() OutcomeRepository               { return m.outcomeRepo }
func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository { return m.balanceHistoryRepo }

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &MockEventPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockOutcomeCache is a mock implementation of OutcomeCache
type MockOutcomeCache struct {
	mock.Mock
}

func (m *MockOutcomeCache) Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	args := m.Called(ctx, marketID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Outcome), args.Error(1)
}

func (m *MockOutcomeCache) Set(ctx context.Context, outcome *models.Outcome) error {
	args := m.Called(ctx, outcome)
	return args.Error(0)
}

// MockDeclarationLocker is a mock implementation of DeclarationLocker
type MockDeclarationLocker struct {
	mock.Mock
}

func (m *MockDeclarationLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
