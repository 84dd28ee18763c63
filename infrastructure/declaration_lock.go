package infrastructure

import (
	"context"
	"time"

	"matka/models"
	"matka/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// unlockLua deletes a lock key only if it still holds the caller's token, so an
// expired holder can never release a newer holder's lock.
const unlockLua = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`

// RedisDeclarationLocker makes a second operator declaring the same market day
// on another instance fail fast instead of queueing on the database lock.
type RedisDeclarationLocker struct {
	rdb      *redis.Client
	unlockSc *redis.Script
}

// NewRedisDeclarationLocker creates a locker backed by the given client.
func NewRedisDeclarationLocker(c *RedisClient) *RedisDeclarationLocker {
	return &RedisDeclarationLocker{
		rdb:      c.rdb,
		unlockSc: redis.NewScript(unlockLua),
	}
}

func lockKey(key string) string {
	return "lock:" + key
}

// Acquire takes the lock for ttl. The returned unlock func may be called more
// than once. A held lock is reported as a conflict. When Redis cannot be reached
// the declaration proceeds under the database lock alone.
func (l *RedisDeclarationLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.New().String()
	lk := lockKey(key)

	ok, err := l.rdb.SetNX(ctx, lk, token, ttl).Result()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.WithError(err).WithField("key", key).
			Warn("Redis unavailable for declaration lock, relying on database lock")
		return func() {}, nil
	}
	if !ok {
		return nil, models.NewError(models.KindConflict, "declaration %s is already in progress", key)
	}

	released := false
	unlock := func() {
		if released {
			return
		}
		released = true

		// The caller's context may already be cancelled.
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = l.unlockSc.Run(unlockCtx, l.rdb, []string{lk}, token).Err()
	}

	return unlock, nil
}

// Compile-time interface check.
var _ service.DeclarationLocker = (*RedisDeclarationLocker)(nil)
