package repository

import (
	"context"
	"errors"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// WagerRepository implements wager data access
type WagerRepository struct {
	q queryable
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *database.DB) *WagerRepository {
	return &WagerRepository{q: db.Pool}
}

// newWagerRepositoryWithTx creates a new wager repository with a transaction
func newWagerRepositoryWithTx(tx queryable) *WagerRepository {
	return &WagerRepository{q: tx}
}

const wagerColumns = `
	id, account_id, market_id, bet_type, numbers, stake, rate, wager_date,
	session, status, win_amount, created_at, settled_at`

func scanWager(row pgx.Row) (*models.Wager, error) {
	var w models.Wager
	err := row.Scan(
		&w.ID,
		&w.AccountID,
		&w.MarketID,
		&w.BetType,
		&w.Numbers,
		&w.Stake,
		&w.Rate,
		&w.Date,
		&w.Session,
		&w.Status,
		&w.WinAmount,
		&w.CreatedAt,
		&w.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func collectWagers(rows pgx.Rows) ([]*models.Wager, error) {
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w, err := scanWager(rows)
		if err != nil {
			return nil, wrapErr(err, "failed to scan wager")
		}
		wagers = append(wagers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "failed to iterate wagers")
	}
	return wagers, nil
}

// Create inserts a pending wager
func (r *WagerRepository) Create(ctx context.Context, wager *models.Wager) error {
	query := `
		INSERT INTO wagers (
			account_id, market_id, bet_type, numbers, stake, rate,
			wager_date, session, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending')
		RETURNING id, status, win_amount, created_at
	`

	err := r.q.QueryRow(ctx, query,
		wager.AccountID,
		wager.MarketID,
		wager.BetType,
		wager.Numbers,
		wager.Stake,
		wager.Rate,
		wager.Date,
		wager.Session,
	).Scan(&wager.ID, &wager.Status, &wager.WinAmount, &wager.CreatedAt)
	if err != nil {
		return wrapErr(err, "failed to create wager for account %d", wager.AccountID)
	}
	return nil
}

// GetByID retrieves a wager by ID
func (r *WagerRepository) GetByID(ctx context.Context, id int64) (*models.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers WHERE id = $1`

	wager, err := scanWager(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get wager %d", id)
	}
	return wager, nil
}

// GetByAccount returns an account's wagers, most recent first
func (r *WagerRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, wrapErr(err, "failed to get wagers for account %d", accountID)
	}
	return collectWagers(rows)
}

// GetPendingForUpdate row-locks every pending wager of a market day. The
// fixed order keeps concurrent lockers from deadlocking on each other.
func (r *WagerRepository) GetPendingForUpdate(ctx context.Context, marketID int64, date time.Time) ([]*models.Wager, error) {
	query := `
		SELECT ` + wagerColumns + `
		FROM wagers
		WHERE market_id = $1 AND wager_date = $2 AND status = 'pending'
		ORDER BY account_id, id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, marketID, models.DateOnly(date))
	if err != nil {
		return nil, wrapErr(err, "failed to lock pending wagers for market %d", marketID)
	}
	return collectWagers(rows)
}

// SettleBatch writes the final status of every wager in one round trip. Each
// update is conditional on the row still being pending.
func (r *WagerRepository) SettleBatch(ctx context.Context, wagers []*models.Wager) error {
	if len(wagers) == 0 {
		return nil
	}

	const query = `
		UPDATE wagers
		SET status = $1, win_amount = $2, settled_at = $3
		WHERE id = $4 AND status = 'pending'
	`

	batch := &pgx.Batch{}
	for _, w := range wagers {
		if w.IsPending() {
			return models.NewError(models.KindInvalidInput, "wager %d must be settled as won or lost", w.ID)
		}
		batch.Queue(query, w.Status, w.WinAmount, w.SettledAt, w.ID)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	for _, w := range wagers {
		tag, err := br.Exec()
		if err != nil {
			return wrapErr(err, "failed to settle wager %d", w.ID)
		}
		if tag.RowsAffected() == 0 {
			return models.NewError(models.KindConflict, "wager %d is no longer pending", w.ID)
		}
	}

	if err := br.Close(); err != nil {
		return wrapErr(err, "failed to settle wagers")
	}
	return nil
}

// CountPending counts the pending wagers of a market day
func (r *WagerRepository) CountPending(ctx context.Context, marketID int64, date time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM wagers
		WHERE market_id = $1 AND wager_date = $2 AND status = 'pending'
	`

	var count int
	if err := r.q.QueryRow(ctx, query, marketID, models.DateOnly(date)).Scan(&count); err != nil {
		return 0, wrapErr(err, "failed to count pending wagers for market %d", marketID)
	}
	return count, nil
}
