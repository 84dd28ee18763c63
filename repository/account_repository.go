package repository

import (
	"context"
	"errors"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `id, username, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var a models.Account
	if err := row.Scan(&a.ID, &a.Username, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get account %d", id)
	}
	return account, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get account %q", username)
	}
	return account, nil
}

// Create creates a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, balance)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, username, initialBalance))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, models.WrapError(models.KindConflict, err, "username %q is taken", username)
		}
		return nil, wrapErr(err, "failed to create account %q", username)
	}
	return account, nil
}

// Debit subtracts amount in a single conditional update, so the balance check
// and the write cannot be separated by a concurrent placement.
func (r *AccountRepository) Debit(ctx context.Context, id int64, amount decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, query, amount, id).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, wrapErr(err, "failed to debit account %d", id)
	}

	// Nothing updated: either the account is missing or the balance is short.
	account, err := r.GetByID(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if account == nil {
		return decimal.Zero, models.NewError(models.KindUnknownAccount, "account %d does not exist", id)
	}
	return decimal.Zero, models.NewError(models.KindInsufficientBalance,
		"insufficient balance: have %s, need %s", account.Balance.StringFixed(2), amount.StringFixed(2))
}

// CreditBatch applies the credits in order in one round trip and returns the
// balance after each one. Credits to the same account see each other's effect.
func (r *AccountRepository) CreditBatch(ctx context.Context, credits []models.Credit) ([]decimal.Decimal, error) {
	if len(credits) == 0 {
		return nil, nil
	}

	const query = `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	batch := &pgx.Batch{}
	for _, c := range credits {
		batch.Queue(query, c.Amount, c.AccountID)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	balances := make([]decimal.Decimal, len(credits))
	for i, c := range credits {
		err := br.QueryRow().Scan(&balances[i])
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.NewError(models.KindUnknownAccount, "account %d does not exist", c.AccountID)
		}
		if err != nil {
			return nil, wrapErr(err, "failed to credit account %d", c.AccountID)
		}
	}

	if err := br.Close(); err != nil {
		return nil, wrapErr(err, "failed to credit accounts")
	}
	return balances, nil
}
