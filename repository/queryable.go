package repository

import (
	"context"
	"fmt"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// queryable is satisfied by both *pgxpool.Pool and pgx.Tx.
type queryable interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// wrapErr annotates a database error. Lock and statement timeouts become
// conflicts so callers can retry.
func wrapErr(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if database.IsContention(err) {
		return models.WrapError(models.KindConflict, err, "%s", msg)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
