// Package dedupe keeps per-document "already notified" markers in Redis.
// Creation events are delivered at least once by the hosting runtime; the
// marker collapses redeliveries into a single user-visible notification.
package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/campuschat/notification-service/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "notified:"

// NewClient connects to Redis and verifies connectivity.
func NewClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Markers implements the trigger.Markers contract on Redis SETNX.
type Markers struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewMarkers(rdb *redis.Client, ttl time.Duration) *Markers {
	return &Markers{rdb: rdb, ttl: ttl}
}

// MarkIfFirst atomically claims the marker for a document path. Returns true
// the first time a path is seen within the TTL window.
func (m *Markers) MarkIfFirst(ctx context.Context, key string) (bool, error) {
	ok, err := m.rdb.SetNX(ctx, keyPrefix+key, time.Now().UTC().Format(time.RFC3339), m.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("set marker: %w", err)
	}
	return ok, nil
}

// Clear releases a marker so a runtime redelivery can retry a failed attempt.
func (m *Markers) Clear(ctx context.Context, key string) error {
	if err := m.rdb.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("clear marker: %w", err)
	}
	return nil
}
