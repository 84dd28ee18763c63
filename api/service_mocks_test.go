package api

import (
	"context"
	"time"

	"matka/models"
	"matka/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockWagerService struct {
	mock.Mock
}

func (m *mockWagerService) PlaceWager(ctx context.Context, req service.PlaceWagerRequest) (*models.Wager, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

type mockSettlementService struct {
	mock.Mock
}

func (m *mockSettlementService) DeclareResult(ctx context.Context, req service.DeclareResultRequest) (*models.SettlementResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementResult), args.Error(1)
}

type mockLedgerService struct {
	mock.Mock
}

func (m *mockLedgerService) OpenAccount(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *mockLedgerService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockLedgerService) GetWager(ctx context.Context, accountID, wagerID int64) (*models.Wager, error) {
	args := m.Called(ctx, accountID, wagerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wager), args.Error(1)
}

func (m *mockLedgerService) GetWagerHistory(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Wager), args.Error(1)
}

func (m *mockLedgerService) GetBalanceHistory(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

func (m *mockLedgerService) GetOutcome(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	args := m.Called(ctx, marketID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Outcome), args.Error(1)
}

type mockMarketService struct {
	mock.Mock
}

func (m *mockMarketService) SeedMarkets(ctx context.Context, markets []*models.Market) error {
	args := m.Called(ctx, markets)
	return args.Error(0)
}

func (m *mockMarketService) ListMarkets(ctx context.Context, now time.Time) ([]*models.MarketView, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MarketView), args.Error(1)
}

func (m *mockMarketService) SetMarketActive(ctx context.Context, marketID int64, active bool) (*models.Market, error) {
	args := m.Called(ctx, marketID, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Market), args.Error(1)
}
