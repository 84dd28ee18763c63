package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"matka/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMarketService_SeedMarkets(t *testing.T) {
	m := newLedgerMocks()
	m.expectTransaction()
	m.uow.On("Commit").Return(nil)
	m.markets.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()

	svc := NewMarketService(m.factory, testConfig())
	err := svc.SeedMarkets(context.Background(), []*models.Market{
		kalyan(),
		{Name: "Milan Day", OpenTime: "15:00", CloseTime: "17:00", ResultTime: "17:05", Active: true},
	})

	require.NoError(t, err)
	m.assertAll(t)
}

func TestMarketService_SeedMarkets_InvalidSchedule(t *testing.T) {
	factory := new(MockUnitOfWorkFactory)
	svc := NewMarketService(factory, testConfig())

	err := svc.SeedMarkets(context.Background(), []*models.Market{
		{Name: "Backwards", OpenTime: "17:00", CloseTime: "15:00", ResultTime: "17:05"},
	})

	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	factory.AssertNotCalled(t, "Create")
}

func TestMarketService_ListMarkets(t *testing.T) {
	outcome, err := models.DeriveOutcome("123", "456")
	require.NoError(t, err)
	outcome.MarketID = 3
	outcome.Declared = true

	milan := &models.Market{ID: 4, Name: "Milan Day", OpenTime: "15:00", CloseTime: "17:00", ResultTime: "17:05", Active: true}

	m := newLedgerMocks()
	m.expectTransaction()
	m.markets.On("GetAll", mock.Anything).Return([]*models.Market{kalyan(), milan}, nil)
	m.outcomes.On("GetByDate", mock.Anything, testDate).Return([]*models.Outcome{outcome}, nil)

	svc := NewMarketService(m.factory, testConfig())
	now := testDate.Add(16*time.Hour + 47*time.Minute)
	views, err := svc.ListMarkets(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, "Kalyan", views[0].Name)
	assert.Equal(t, models.MarketStatusRunning, views[0].Status)
	assert.Equal(t, "123-65-456", views[0].Result)

	assert.Equal(t, models.MarketStatusOpen, views[1].Status)
	assert.Equal(t, "***-**-***", views[1].Result)
	m.assertAll(t)
}

func TestMarketService_SetMarketActive(t *testing.T) {
	m := newLedgerMocks()
	m.expectTransaction()
	m.uow.On("Commit").Return(nil)
	m.markets.On("GetByID", mock.Anything, int64(3)).Return(kalyan(), nil)
	m.markets.On("SetActive", mock.Anything, int64(3), false).Return(nil)

	svc := NewMarketService(m.factory, testConfig())
	market, err := svc.SetMarketActive(context.Background(), 3, false)

	require.NoError(t, err)
	assert.False(t, market.Active)
	m.assertAll(t)
}

func TestMarketService_SetMarketActive_UnknownMarket(t *testing.T) {
	m := newLedgerMocks()
	m.expectTransaction()
	m.markets.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

	svc := NewMarketService(m.factory, testConfig())
	_, err := svc.SetMarketActive(context.Background(), 99, true)

	assert.True(t, errors.Is(err, models.ErrUnknownMarket))
	m.markets.AssertNotCalled(t, "SetActive", mock.Anything, mock.Anything, mock.Anything)
}
