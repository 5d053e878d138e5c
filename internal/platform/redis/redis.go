// Package redis wraps the Redis-backed facilities the API uses: the
// fixed-window rate limiter and the refresh token denylist. Redis is an
// optional dependency; with no address configured both facilities
// degrade to no-ops so the server can run without it.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 2 * time.Second

// NewClient connects to Redis using the given configuration and verifies
// connectivity with a ping. It returns (nil, nil) when no address is
// configured, which callers treat as "Redis features disabled".
func NewClient(cfg config.RedisConfig, logger *slog.Logger) (*goredis.Client, error) {
	if cfg.Addr == "" {
		if logger != nil {
			logger.Info("no redis address configured, rate limiting and token revocation are disabled")
		}
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return client, nil
}
