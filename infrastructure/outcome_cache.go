package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"matka/models"
	"matka/service"

	"github.com/redis/go-redis/v9"
)

// RedisOutcomeCache caches declared results as JSON. Only declared outcomes
// are stored; a declared outcome never changes, so entries are only ever
// refreshed, never invalidated by a later write.
type RedisOutcomeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisOutcomeCache creates an outcome cache backed by the given client.
func NewRedisOutcomeCache(c *RedisClient, ttl time.Duration) *RedisOutcomeCache {
	return &RedisOutcomeCache{rdb: c.rdb, ttl: ttl}
}

func outcomeKey(marketID int64, date time.Time) string {
	return fmt.Sprintf("outcome:%d:%s", marketID, date.Format(time.DateOnly))
}

// Get returns the cached outcome, or nil on a miss.
func (oc *RedisOutcomeCache) Get(ctx context.Context, marketID int64, date time.Time) (*models.Outcome, error) {
	data, err := oc.rdb.Get(ctx, outcomeKey(marketID, date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis: get outcome %d: %w", marketID, err)
	}

	var outcome models.Outcome
	if err := json.Unmarshal(data, &outcome); err != nil {
		return nil, fmt.Errorf("redis: unmarshal outcome %d: %w", marketID, err)
	}
	return &outcome, nil
}

// Set stores a declared outcome. Undeclared outcomes are ignored.
func (oc *RedisOutcomeCache) Set(ctx context.Context, outcome *models.Outcome) error {
	if outcome == nil || !outcome.Declared {
		return nil
	}

	data, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("redis: marshal outcome %d: %w", outcome.MarketID, err)
	}

	if err := oc.rdb.Set(ctx, outcomeKey(outcome.MarketID, outcome.Date), data, oc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set outcome %d: %w", outcome.MarketID, err)
	}
	return nil
}

// Compile-time interface check.
var _ service.OutcomeCache = (*RedisOutcomeCache)(nil)
