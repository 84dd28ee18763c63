package repository

import (
	"context"
	"encoding/json"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// BalanceHistoryRepository implements the BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// newBalanceHistoryRepositoryWithTx creates a new balance history repository with a transaction
func newBalanceHistoryRepositoryWithTx(tx queryable) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	// Convert metadata to JSON
	metadataJSON, err := json.Marshal(history.TransactionMetadata)
	if err != nil {
		return wrapErr(err, "failed to marshal transaction metadata")
	}

	query := `
		INSERT INTO balance_history
		(account_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err = r.q.QueryRow(ctx, query,
		history.AccountID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		metadataJSON,
		history.RelatedID,
		history.RelatedType,
	).Scan(&history.ID, &history.CreatedAt)
	if err != nil {
		return wrapErr(err, "failed to record balance history for account %d", history.AccountID)
	}

	return nil
}

// RecordBatch inserts the entries in order in one round trip
func (r *BalanceHistoryRepository) RecordBatch(ctx context.Context, histories []*models.BalanceHistory) error {
	if len(histories) == 0 {
		return nil
	}

	query := `
		INSERT INTO balance_history
		(account_id, balance_before, balance_after, change_amount, transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	batch := &pgx.Batch{}
	for _, history := range histories {
		metadataJSON, err := json.Marshal(history.TransactionMetadata)
		if err != nil {
			return wrapErr(err, "failed to marshal transaction metadata")
		}
		batch.Queue(query,
			history.AccountID,
			history.BalanceBefore,
			history.BalanceAfter,
			history.ChangeAmount,
			history.TransactionType,
			metadataJSON,
			history.RelatedID,
			history.RelatedType,
		)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()

	for _, history := range histories {
		if err := br.QueryRow().Scan(&history.ID, &history.CreatedAt); err != nil {
			return wrapErr(err, "failed to record balance history for account %d", history.AccountID)
		}
	}

	if err := br.Close(); err != nil {
		return wrapErr(err, "failed to record balance history")
	}
	return nil
}

// GetByAccount returns balance history for an account, most recent first
func (r *BalanceHistoryRepository) GetByAccount(ctx context.Context, accountID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, account_id, balance_before, balance_after, change_amount,
		       transaction_type, transaction_metadata, related_id, related_type, created_at
		FROM balance_history
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, wrapErr(err, "failed to get balance history for account %d", accountID)
	}
	defer rows.Close()

	var histories []*models.BalanceHistory
	for rows.Next() {
		var history models.BalanceHistory
		var metadataJSON []byte

		err := rows.Scan(
			&history.ID,
			&history.AccountID,
			&history.BalanceBefore,
			&history.BalanceAfter,
			&history.ChangeAmount,
			&history.TransactionType,
			&metadataJSON,
			&history.RelatedID,
			&history.RelatedType,
			&history.CreatedAt,
		)
		if err != nil {
			return nil, wrapErr(err, "failed to scan balance history")
		}

		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &history.TransactionMetadata); err != nil {
				return nil, wrapErr(err, "failed to unmarshal transaction metadata")
			}
		}

		histories = append(histories, &history)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "failed to iterate balance history")
	}

	return histories, nil
}
