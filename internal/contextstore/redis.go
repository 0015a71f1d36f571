package contextstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend keeps conversation state in Redis: the history as a capped
// list, the derived context and preferences as single documents.
type RedisBackend struct {
	client     redis.Cmdable
	maxRecords int
	ttl        time.Duration
}

// NewRedisBackend creates a Redis-backed store. ttl applies to every key
// and is refreshed on write; a non-positive ttl keeps keys without expiry.
func NewRedisBackend(client redis.Cmdable, maxRecords int, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, maxRecords: maxRecords, ttl: ttl}
}

func historyKey(userID string) string     { return fmt.Sprintf("engage:%s:history", userID) }
func contextKey(userID string) string     { return fmt.Sprintf("engage:%s:context", userID) }
func preferencesKey(userID string) string { return fmt.Sprintf("engage:%s:preferences", userID) }

// Append pushes a record and trims the list to the newest maxRecords.
func (b *RedisBackend) Append(ctx context.Context, userID string, rec Record) error {
	key := historyKey(userID)

	data, err := encode(rec)
	if err != nil {
		return err
	}

	pipe := b.client.Pipeline()
	pipe.RPush(ctx, key, string(data))
	pipe.LTrim(ctx, key, int64(-b.maxRecords), -1)
	if b.ttl > 0 {
		pipe.Expire(ctx, key, b.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec for %s: %w", key, err)
	}
	return nil
}

func (b *RedisBackend) Load(ctx context.Context, userID string) ([]Record, error) {
	key := historyKey(userID)

	vals, err := b.client.LRange(ctx, key, int64(-b.maxRecords), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}

	records := make([]Record, 0, len(vals))
	for _, v := range vals {
		var rec Record
		if err := decode([]byte(v), &rec); err != nil {
			continue // skip corrupt entries
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *RedisBackend) SaveContext(ctx context.Context, userID string, c Context) error {
	return b.setDoc(ctx, contextKey(userID), c)
}

func (b *RedisBackend) LoadContext(ctx context.Context, userID string) (Context, bool, error) {
	var c Context
	ok, err := b.getDoc(ctx, contextKey(userID), &c)
	return c, ok, err
}

func (b *RedisBackend) SavePreferences(ctx context.Context, userID string, p Preferences) error {
	return b.setDoc(ctx, preferencesKey(userID), p)
}

func (b *RedisBackend) LoadPreferences(ctx context.Context, userID string) (Preferences, bool, error) {
	var p Preferences
	ok, err := b.getDoc(ctx, preferencesKey(userID), &p)
	return p, ok, err
}

func (b *RedisBackend) setDoc(ctx context.Context, key string, v any) error {
	data, err := encode(v)
	if err != nil {
		return err
	}
	ttl := b.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := b.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// getDoc reports false without error for a missing or undecodable document.
func (b *RedisBackend) getDoc(ctx context.Context, key string, v any) (bool, error) {
	raw, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := decode(raw, v); err != nil {
		return false, nil
	}
	return true, nil
}
