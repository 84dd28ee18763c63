package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"matka/models"
	"matka/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, account)

		account, err = repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("successful creation", func(t *testing.T) {
		created, err := repo.Create(ctx, "ravi", decimal.NewFromInt(1000))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, "1000", created.Balance.String())
		assert.False(t, created.CreatedAt.IsZero())

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "ravi", byID.Username)

		byName, err := repo.GetByUsername(ctx, "ravi")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.Create(ctx, "meena", decimal.NewFromInt(1000))
		require.NoError(t, err)

		_, err = repo.Create(ctx, "meena", decimal.NewFromInt(1000))
		assert.True(t, errors.Is(err, models.ErrConflict))
	})
}

func TestAccountRepository_DebitCredit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	account := testutil.InsertAccount(t, testDB.DB, "ravi", "1000")

	t.Run("debit within balance", func(t *testing.T) {
		balance, err := repo.Debit(ctx, account.ID, decimal.RequireFromString("250.50"))
		require.NoError(t, err)
		assert.Equal(t, "749.5", balance.String())
	})

	t.Run("debit of exact balance", func(t *testing.T) {
		balance, err := repo.Debit(ctx, account.ID, decimal.RequireFromString("749.50"))
		require.NoError(t, err)
		assert.True(t, balance.IsZero())
	})

	t.Run("overdraft leaves balance unchanged", func(t *testing.T) {
		_, err := repo.Debit(ctx, account.ID, decimal.NewFromInt(1))
		assert.True(t, errors.Is(err, models.ErrInsufficientBalance))

		got, err := repo.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.IsZero())
	})

	t.Run("credit", func(t *testing.T) {
		balances, err := repo.CreditBatch(ctx, []models.Credit{{AccountID: account.ID, Amount: decimal.NewFromInt(14200)}})
		require.NoError(t, err)
		require.Len(t, balances, 1)
		assert.Equal(t, "14200", balances[0].String())
	})

	t.Run("credits to one account accumulate in order", func(t *testing.T) {
		other := testutil.InsertAccount(t, testDB.DB, "meena", "100")
		balances, err := repo.CreditBatch(ctx, []models.Credit{
			{AccountID: account.ID, Amount: decimal.NewFromInt(950)},
			{AccountID: other.ID, Amount: decimal.NewFromInt(90)},
			{AccountID: account.ID, Amount: decimal.NewFromInt(50)},
		})
		require.NoError(t, err)
		require.Len(t, balances, 3)
		assert.Equal(t, "15150", balances[0].String())
		assert.Equal(t, "190", balances[1].String())
		assert.Equal(t, "15200", balances[2].String())
	})

	t.Run("empty batch", func(t *testing.T) {
		balances, err := repo.CreditBatch(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, balances)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := repo.Debit(ctx, 999999, decimal.NewFromInt(1))
		assert.True(t, errors.Is(err, models.ErrUnknownAccount))

		_, err = repo.CreditBatch(ctx, []models.Credit{{AccountID: 999999, Amount: decimal.NewFromInt(1)}})
		assert.True(t, errors.Is(err, models.ErrUnknownAccount))
	})
}

func TestAccountRepository_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	account := testutil.InsertAccount(t, testDB.DB, "ravi", "1000")

	const attempts = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Debit(ctx, account.ID, decimal.NewFromInt(100)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, models.ErrInsufficientBalance), "unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	got, err := repo.GetByID(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
}
