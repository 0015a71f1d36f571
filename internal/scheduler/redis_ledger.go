package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownKeyPrefix = "engage:cooldown:"

// RedisLedger stores the cooldown ledger in Redis so it survives a process
// restart. Keys expire after the longest cooldown, so no explicit pruning is
// needed. Redis errors fail open: a lookup error is treated as "never admitted".
type RedisLedger struct {
	rdb       redis.Cmdable
	sessionID string
	ttl       time.Duration
	logger    *slog.Logger
}

// NewRedisLedger creates a ledger scoped to one session.
func NewRedisLedger(rdb redis.Cmdable, sessionID string, ttl time.Duration, logger *slog.Logger) *RedisLedger {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLedger{rdb: rdb, sessionID: sessionID, ttl: ttl, logger: logger}
}

func (l *RedisLedger) key(typeKey string) string {
	return fmt.Sprintf("%s%s:%s", cooldownKeyPrefix, l.sessionID, typeKey)
}

func (l *RedisLedger) LastAdmitted(ctx context.Context, key string) (time.Time, bool) {
	val, err := l.rdb.Get(ctx, l.key(key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			l.logger.Warn("scheduler: cooldown lookup failed, allowing", "key", key, "error", err)
		}
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		l.logger.Warn("scheduler: corrupt cooldown entry", "key", key, "value", val)
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

func (l *RedisLedger) Record(ctx context.Context, key string, at time.Time) {
	err := l.rdb.Set(ctx, l.key(key), strconv.FormatInt(at.UnixMilli(), 10), l.ttl).Err()
	if err != nil {
		l.logger.Warn("scheduler: recording cooldown failed", "key", key, "error", err)
	}
}

// Prune is a no-op; entries expire through their TTL.
func (l *RedisLedger) Prune(context.Context, time.Time) {}
