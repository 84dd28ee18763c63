package testutil

import (
	"context"
	"testing"
	"time"

	"matka/database"
	"matka/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestDate is the market day used by repository tests.
var TestDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// CreateTestMarket creates an active market with a typical afternoon schedule
func CreateTestMarket(name string) *models.Market {
	return &models.Market{
		Name:       name,
		OpenTime:   "15:45",
		CloseTime:  "16:45",
		ResultTime: "16:50",
		Active:     true,
	}
}

// CreateTestWager creates a pending wager on TestDate
func CreateTestWager(accountID, marketID int64, betType models.BetType, session models.Session, stake string, numbers ...string) *models.Wager {
	rate, err := models.LookupRate(betType)
	if err != nil {
		panic(err)
	}
	return &models.Wager{
		AccountID: accountID,
		MarketID:  marketID,
		BetType:   betType,
		Numbers:   numbers,
		Stake:     decimal.RequireFromString(stake),
		Rate:      rate,
		Date:      TestDate,
		Session:   session,
		Status:    models.WagerStatusPending,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(accountID int64, before, after string, transactionType models.TransactionType) *models.BalanceHistory {
	b := decimal.RequireFromString(before)
	a := decimal.RequireFromString(after)
	return &models.BalanceHistory{
		AccountID:       accountID,
		BalanceBefore:   b,
		BalanceAfter:    a,
		ChangeAmount:    a.Sub(b),
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// InsertAccount writes an account directly, bypassing the services.
func InsertAccount(t *testing.T, db *database.DB, username, balance string) *models.Account {
	t.Helper()
	var a models.Account
	err := db.QueryRow(context.Background(), `
		INSERT INTO accounts (username, balance) VALUES ($1, $2)
		RETURNING id, username, balance, created_at, updated_at`,
		username, decimal.RequireFromString(balance),
	).Scan(&a.ID, &a.Username, &a.Balance, &a.CreatedAt, &a.UpdatedAt)
	require.NoError(t, err)
	return &a
}

// InsertMarket writes a market directly, bypassing the services.
func InsertMarket(t *testing.T, db *database.DB, market *models.Market) *models.Market {
	t.Helper()
	err := db.QueryRow(context.Background(), `
		INSERT INTO markets (name, open_time, close_time, result_time, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		market.Name, market.OpenTime, market.CloseTime, market.ResultTime, market.Active,
	).Scan(&market.ID, &market.CreatedAt)
	require.NoError(t, err)
	return market
}
