package repository

import (
	"context"
	"errors"
	"time"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// OutcomeRepository implements access to declared results
type OutcomeRepository struct {
	q queryable
}

// NewOutcomeRepository creates a new outcome repository
func NewOutcomeRepository(db *database.DB) *OutcomeRepository {
	return &OutcomeRepository{q: db.Pool}
}

func newOutcomeRepositoryWithTx(tx queryable) *OutcomeRepository {
	return &OutcomeRepository{q: tx}
}

const outcomeColumns = `
	market_id, outcome_date, open_panel, close_panel, open_ank, close_ank,
	jodi, declared, declared_at`

func scanOutcome(row pgx.Row) (*models.Outcome, error) {
	var o models.Outcome
	err := row.Scan(
		&o.MarketID,
		&o.Date,
		&o.OpenPanel,
		&o.ClosePanel,
		&o.OpenAnk,
		&o.CloseAnk,
		&o.Jodi,
		&o.Declared,
		&o.DeclaredAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OutcomeRepository) get(ctx context.Context, query string, marketID int64, date time.Time) (*models.Outcome, error) {
	outcome, err := scanOutcome(r.q.QueryRow(ctx, query, marketID, models.DateOnly(date)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get outcome for market %d on %s", marketID, date.Format(time.DateOnly))
	}
	return outcome, nil
}

// Get retrieves the outcome for a market day
func (r *OutcomeRepository) Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	return r.get(ctx,
		`SELECT `+outcomeColumns+` FROM outcomes WHERE market_id = $1 AND outcome_date = $2`,
		marketID, date)
}

// GetForUpdate retrieves and row-locks the outcome for a market day
func (r *OutcomeRepository) GetForUpdate(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	return r.get(ctx,
		`SELECT `+outcomeColumns+` FROM outcomes WHERE market_id = $1 AND outcome_date = $2 FOR UPDATE`,
		marketID, date)
}

// GetByDate returns every outcome recorded for a day
func (r *OutcomeRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.Outcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM outcomes WHERE outcome_date = $1 ORDER BY market_id`

	rows, err := r.q.Query(ctx, query, models.DateOnly(date))
	if err != nil {
		return nil, wrapErr(err, "failed to get outcomes for %s", date.Format(time.DateOnly))
	}
	defer rows.Close()

	var outcomes []*models.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, wrapErr(err, "failed to scan outcome")
		}
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "failed to iterate outcomes")
	}
	return outcomes, nil
}

// Upsert writes the outcome for its market day, replacing any stored row
func (r *OutcomeRepository) Upsert(ctx context.Context, outcome *models.Outcome) error {
	query := `
		INSERT INTO outcomes (
			market_id, outcome_date, open_panel, close_panel, open_ank, close_ank,
			jodi, declared, declared_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (market_id, outcome_date) DO UPDATE
		SET open_panel = EXCLUDED.open_panel,
		    close_panel = EXCLUDED.close_panel,
		    open_ank = EXCLUDED.open_ank,
		    close_ank = EXCLUDED.close_ank,
		    jodi = EXCLUDED.jodi,
		    declared = EXCLUDED.declared,
		    declared_at = EXCLUDED.declared_at
	`

	_, err := r.q.Exec(ctx, query,
		outcome.MarketID,
		models.DateOnly(outcome.Date),
		outcome.OpenPanel,
		outcome.ClosePanel,
		outcome.OpenAnk,
		outcome.CloseAnk,
		outcome.Jodi,
		outcome.Declared,
		outcome.DeclaredAt,
	)
	if err != nil {
		return wrapErr(err, "failed to store outcome for market %d", outcome.MarketID)
	}
	return nil
}

// LockMarketDay takes a transaction scoped advisory lock keyed on the market
// and the day number. Placements share it; a declaration holds it exclusively,
// so no wager can land between reading the pending set and committing results.
func (r *OutcomeRepository) LockMarketDay(ctx context.Context, marketID int64, date time.Time, exclusive bool) error {
	query := `SELECT pg_advisory_xact_lock_shared($1::int4, $2::int4)`
	if exclusive {
		query = `SELECT pg_advisory_xact_lock($1::int4, $2::int4)`
	}

	day := int32(models.DateOnly(date).Unix() / 86400)
	if _, err := r.q.Exec(ctx, query, int32(marketID), day); err != nil {
		return wrapErr(err, "failed to lock market %d on %s", marketID, date.Format(time.DateOnly))
	}
	return nil
}
