package redis

import (
	"context"
	"fmt"
	"time"

	"payment-webhook-engine/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// EventCache implements ports.EventCache using Redis. It shortcuts repeat
// deliveries of a webhook whose status the engine already recorded; the
// database stays authoritative.
type EventCache struct {
	client *goredis.Client
	prefix string
}

// NewEventCache creates a new Redis-backed event cache.
func NewEventCache(client *goredis.Client) *EventCache {
	return &EventCache{
		client: client,
		prefix: "event:",
	}
}

// GetStatus retrieves the last recorded status for an event key.
// Returns ok=false if the key does not exist.
func (c *EventCache) GetStatus(ctx context.Context, key string) (domain.TransactionStatus, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if err == goredis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis event get: %w", err)
	}
	return domain.TransactionStatus(val), true, nil
}

// SetStatus records the status for an event key with TTL.
func (c *EventCache) SetStatus(ctx context.Context, key string, status domain.TransactionStatus, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, string(status), ttl).Err(); err != nil {
		return fmt.Errorf("redis event set: %w", err)
	}
	return nil
}
