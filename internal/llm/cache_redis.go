package llm

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "creditrag:verdict:"

// redisCache shares verdicts between processes. Redis failures degrade to
// cache misses.
type redisCache struct {
	rdb    *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. Close closes the client.
func NewRedisCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) VerdictCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &redisCache{rdb: rdb, ttl: ttl, logger: logger}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (c *redisCache) Get(ctx context.Context, key string) (Verdict, bool) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Verdict cache read failed", "error", err)
		}
		return Verdict{}, false
	}

	var v Verdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return Verdict{}, false
	}
	return v, true
}

func (c *redisCache) Set(ctx context.Context, key string, verdict Verdict) {
	raw, err := json.Marshal(verdict)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Verdict cache write failed", "error", err)
	}
}

func (c *redisCache) Close() error {
	return c.rdb.Close()
}
