// Package locking provides the distributed scope lock used when multiple
// worker instances share one database.
package locking

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock key only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisScopeLocker implements services.ScopeLocker with a SET NX lease. The
// TTL bounds how long a crashed holder can block a scope.
type RedisScopeLocker struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisScopeLocker creates a locker with the given lease TTL.
func NewRedisScopeLocker(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisScopeLocker {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RedisScopeLocker{client: client, ttl: ttl, logger: logger}
}

// TryLock attempts to acquire the scope lease without blocking.
func (l *RedisScopeLocker) TryLock(ctx context.Context, scope string) (func(), bool, error) {
	key := "bpts:recalc:" + scope
	holder := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, holder, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire scope lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// Use a fresh context: the run's context may already be
			// canceled by the time the lock is released.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, holder).Err(); err != nil && err != redis.Nil {
				l.logger.Warn("failed to release scope lock",
					"scope", scope,
					"error", err,
				)
			}
		})
	}
	return release, true, nil
}
