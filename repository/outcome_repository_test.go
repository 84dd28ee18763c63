package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"matka/database"
	"matka/models"
	"matka/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeRepository_UpsertAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewOutcomeRepository(testDB.DB)
	ctx := context.Background()
	kalyan := testutil.InsertMarket(t, testDB.DB, testutil.CreateTestMarket("Kalyan"))

	t.Run("missing outcome", func(t *testing.T) {
		o, err := repo.Get(ctx, kalyan.ID, testutil.TestDate)
		require.NoError(t, err)
		assert.Nil(t, o)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		declaredAt := time.Date(2024, 5, 1, 11, 20, 0, 0, time.UTC)
		o, err := models.DeriveOutcome("123", "456")
		require.NoError(t, err)
		o.MarketID = kalyan.ID
		o.Date = testutil.TestDate
		require.NoError(t, repo.Upsert(ctx, o))

		o.Declared = true
		o.DeclaredAt = &declaredAt
		require.NoError(t, repo.Upsert(ctx, o))

		got, err := repo.Get(ctx, kalyan.ID, testutil.TestDate.Add(13*time.Hour))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "123", got.OpenPanel)
		assert.Equal(t, "456", got.ClosePanel)
		assert.Equal(t, 6, got.OpenAnk)
		assert.Equal(t, 5, got.CloseAnk)
		assert.Equal(t, "65", got.Jodi)
		assert.True(t, got.Declared)
		require.NotNil(t, got.DeclaredAt)
		assert.True(t, declaredAt.Equal(*got.DeclaredAt))

		byDate, err := repo.GetByDate(ctx, testutil.TestDate)
		require.NoError(t, err)
		assert.Len(t, byDate, 1)
	})
}

func TestOutcomeRepository_ExclusiveLockTimesOut(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	testDB.DB.LockTimeout = 200 * time.Millisecond
	ctx := context.Background()

	holder, err := testDB.DB.BeginTx(ctx)
	require.NoError(t, err)
	defer holder.Rollback(ctx)
	require.NoError(t, newOutcomeRepositoryWithTx(holder).LockMarketDay(ctx, 1, testutil.TestDate, true))

	t.Run("shared waiter gets a conflict", func(t *testing.T) {
		err := withTx(t, testDB.DB, func(repo *OutcomeRepository) error {
			return repo.LockMarketDay(ctx, 1, testutil.TestDate, false)
		})
		assert.True(t, errors.Is(err, models.ErrConflict), "got %v", err)
	})

	t.Run("other day is independent", func(t *testing.T) {
		err := withTx(t, testDB.DB, func(repo *OutcomeRepository) error {
			return repo.LockMarketDay(ctx, 1, testutil.TestDate.AddDate(0, 0, 1), true)
		})
		assert.NoError(t, err)
	})

	t.Run("shared locks coexist", func(t *testing.T) {
		require.NoError(t, holder.Rollback(ctx))

		first, err := testDB.DB.BeginTx(ctx)
		require.NoError(t, err)
		defer first.Rollback(ctx)
		require.NoError(t, newOutcomeRepositoryWithTx(first).LockMarketDay(ctx, 1, testutil.TestDate, false))

		err = withTx(t, testDB.DB, func(repo *OutcomeRepository) error {
			return repo.LockMarketDay(ctx, 1, testutil.TestDate, false)
		})
		assert.NoError(t, err)
	})
}

func withTx(t *testing.T, db *database.DB, fn func(*OutcomeRepository) error) error {
	t.Helper()
	ctx := context.Background()
	tx, err := db.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	return fn(newOutcomeRepositoryWithTx(tx))
}
