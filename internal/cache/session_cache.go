package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const activeSessionKeyPrefix = "active_session:"

// SessionCache maps a browser fingerprint to its active session id. The
// cache is an accelerator for resume lookup only; a miss always falls back
// to the database, so losing Redis never loses a session.
type SessionCache interface {
	SetActive(ctx context.Context, fingerprint string, sessionID uuid.UUID, ttl time.Duration) error
	GetActive(ctx context.Context, fingerprint string) (uuid.UUID, bool, error)
	DeleteActive(ctx context.Context, fingerprint string) error
	Close() error
}

// RedisSessionCache implements SessionCache on go-redis.
type RedisSessionCache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisSessionCache(client *redis.Client, logger *slog.Logger) *RedisSessionCache {
	return &RedisSessionCache{
		client: client,
		logger: logger,
	}
}

func (c *RedisSessionCache) SetActive(ctx context.Context, fingerprint string, sessionID uuid.UUID, ttl time.Duration) error {
	key := activeSessionKeyPrefix + fingerprint
	if err := c.client.Set(ctx, key, sessionID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache active session: %w", err)
	}
	return nil
}

func (c *RedisSessionCache) GetActive(ctx context.Context, fingerprint string) (uuid.UUID, bool, error) {
	key := activeSessionKeyPrefix + fingerprint
	value, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to read active session: %w", err)
	}

	sessionID, err := uuid.Parse(value)
	if err != nil {
		// A corrupt entry is treated as a miss and dropped.
		c.logger.Warn("Dropping malformed session cache entry", "fingerprint", fingerprint)
		_ = c.client.Del(ctx, key).Err()
		return uuid.Nil, false, nil
	}
	return sessionID, true, nil
}

func (c *RedisSessionCache) DeleteActive(ctx context.Context, fingerprint string) error {
	return c.client.Del(ctx, activeSessionKeyPrefix+fingerprint).Err()
}

func (c *RedisSessionCache) Close() error {
	return c.client.Close()
}

// NoopSessionCache satisfies SessionCache without storage. Used when Redis
// is not configured and in tests.
type NoopSessionCache struct{}

func (NoopSessionCache) SetActive(ctx context.Context, fingerprint string, sessionID uuid.UUID, ttl time.Duration) error {
	return nil
}

func (NoopSessionCache) GetActive(ctx context.Context, fingerprint string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, nil
}

func (NoopSessionCache) DeleteActive(ctx context.Context, fingerprint string) error {
	return nil
}

func (NoopSessionCache) Close() error {
	return nil
}
