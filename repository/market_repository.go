package repository

import (
	"context"
	"errors"

	"matka/database"
	"matka/models"

	"github.com/jackc/pgx/v5"
)

// MarketRepository implements the MarketRepository interface
type MarketRepository struct {
	q queryable
}

// NewMarketRepository creates a new market repository
func NewMarketRepository(db *database.DB) *MarketRepository {
	return &MarketRepository{q: db.Pool}
}

func newMarketRepositoryWithTx(tx queryable) *MarketRepository {
	return &MarketRepository{q: tx}
}

const marketColumns = `id, name, open_time, close_time, result_time, active, created_at`

func scanMarket(row pgx.Row) (*models.Market, error) {
	var m models.Market
	if err := row.Scan(&m.ID, &m.Name, &m.OpenTime, &m.CloseTime, &m.ResultTime, &m.Active, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByID retrieves a market by ID
func (r *MarketRepository) GetByID(ctx context.Context, id int64) (*models.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets WHERE id = $1`

	market, err := scanMarket(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get market %d", id)
	}
	return market, nil
}

// GetAll returns every market ordered by open time
func (r *MarketRepository) GetAll(ctx context.Context) ([]*models.Market, error) {
	query := `SELECT ` + marketColumns + ` FROM markets ORDER BY open_time, id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, wrapErr(err, "failed to get markets")
	}
	defer rows.Close()

	var markets []*models.Market
	for rows.Next() {
		market, err := scanMarket(rows)
		if err != nil {
			return nil, wrapErr(err, "failed to scan market")
		}
		markets = append(markets, market)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(err, "failed to iterate markets")
	}
	return markets, nil
}

// Upsert inserts the market or updates the schedule of the market with the
// same name. The active flag of an existing market is left alone.
func (r *MarketRepository) Upsert(ctx context.Context, market *models.Market) error {
	query := `
		INSERT INTO markets (name, open_time, close_time, result_time, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET open_time = EXCLUDED.open_time,
		    close_time = EXCLUDED.close_time,
		    result_time = EXCLUDED.result_time
		RETURNING id, active, created_at
	`

	err := r.q.QueryRow(ctx, query,
		market.Name,
		market.OpenTime,
		market.CloseTime,
		market.ResultTime,
		market.Active,
	).Scan(&market.ID, &market.Active, &market.CreatedAt)
	if err != nil {
		return wrapErr(err, "failed to upsert market %s", market.Name)
	}
	return nil
}

// SetActive toggles whether the market accepts wagers
func (r *MarketRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.q.Exec(ctx, `UPDATE markets SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return wrapErr(err, "failed to update market %d", id)
	}
	if result.RowsAffected() == 0 {
		return models.NewError(models.KindUnknownMarket, "market %d does not exist", id)
	}
	return nil
}
