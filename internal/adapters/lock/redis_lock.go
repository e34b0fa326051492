// Package lock holds cross-process locks used to serialize work per key.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sourcing/internal/domain"
)

// release deletes the key only while it still holds our token, so an
// expired lock taken over by someone else is left alone.
var release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{rdb: rdb, prefix: "sourcing:lock:", ttl: ttl}
}

// Connect dials addr and pings it. The caller owns the returned client.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Lock takes key without waiting. A key that is already held fails with
// domain.ErrConcurrencyConflict; the caller decides whether to retry.
func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	k := l.prefix + key
	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return nil, domain.Errorf(domain.ErrConcurrencyConflict, "lock", uuid.Nil, "%s is held by another worker, retry", key)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := release.Run(ctx, l.rdb, []string{k}, token).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("lock release failed")
		}
	}, nil
}
