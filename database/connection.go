package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultLockTimeout bounds how long a ledger transaction waits on a row or advisory lock.
const DefaultLockTimeout = 2 * time.Second

// DB represents a database connection pool
type DB struct {
	*pgxpool.Pool

	// LockTimeout is applied to every transaction started with BeginTx.
	LockTimeout time.Duration
}

// NewConnection creates a new database connection pool
func NewConnection(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool, LockTimeout: DefaultLockTimeout}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	db.Pool.Close()
}

// Health pings the pool; used by the health endpoints.
func (db *DB) Health(ctx context.Context) error {
	return db.Ping(ctx)
}
