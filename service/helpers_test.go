package service

import (
	"testing"
	"time"

	"matka/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ledgerMocks bundles one unit of work with every repository wired in.
type ledgerMocks struct {
	factory  *MockUnitOfWorkFactory
	uow      *MockUnitOfWork
	accounts *MockAccountRepository
	markets  *MockMarketRepository
	wagers   *MockWagerRepository
	outcomes *MockOutcomeRepository
	history  *MockBalanceHistoryRepository
	bus      *MockEventPublisher
}

func newLedgerMocks() *ledgerMocks {
	m := &ledgerMocks{
		factory:  new(MockUnitOfWorkFactory),
		uow:      new(MockUnitOfWork),
		accounts: new(MockAccountRepository),
		markets:  new(MockMarketRepository),
		wagers:   new(MockWagerRepository),
		outcomes: new(MockOutcomeRepository),
		history:  new(MockBalanceHistoryRepository),
		bus:      &MockEventPublisher{},
	}
	m.uow.SetRepositories(m.accounts, m.markets, m.wagers, m.outcomes, m.history)
	m.uow.SetEventBus(m.bus)
	return m
}

// expectTransaction sets up Create/Begin/Rollback; Commit is left to each test.
func (m *ledgerMocks) expectTransaction() {
	m.factory.On("Create").Return(m.uow)
	m.uow.On("Begin", mock.Anything).Return(nil)
	m.uow.On("Rollback").Return(nil).Maybe()
}

func (m *ledgerMocks) assertAll(t *testing.T) {
	t.Helper()
	m.factory.AssertExpectations(t)
	m.uow.AssertExpectations(t)
	m.accounts.AssertExpectations(t)
	m.markets.AssertExpectations(t)
	m.wagers.AssertExpectations(t)
	m.outcomes.AssertExpectations(t)
	m.history.AssertExpectations(t)
}

// decEq matches a decimal argument by value rather than representation.
func decEq(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return config.NewTestConfig()
}
