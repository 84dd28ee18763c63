package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsContention(t *testing.T) {
	t.Parallel()

	assert.False(t, IsContention(nil))
	assert.False(t, IsContention(errors.New("boom")))
	assert.True(t, IsContention(context.DeadlineExceeded))
	assert.True(t, IsContention(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)))

	for _, code := range []string{"55P03", "40001", "40P01", "57014"} {
		err := fmt.Errorf("failed to lock: %w", &pgconn.PgError{Code: code})
		assert.True(t, IsContention(err), code)
	}
	assert.False(t, IsContention(&pgconn.PgError{Code: "23505"}))
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
}
