package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window rate limiter backed by Redis INCR/EXPIRE.
// It fails open: when Redis is unreachable or not configured, every
// request is allowed, keeping the API available at the cost of
// temporarily unenforced quotas.
type Limiter struct {
	client *goredis.Client
	logger *slog.Logger
}

// NewLimiter creates a rate limiter on the given client. A nil client
// produces a disabled limiter that allows everything.
func NewLimiter(client *goredis.Client, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}

	return &Limiter{
		client: client,
		logger: logger.With(slog.String("component", "rate_limiter")),
	}
}

// Allow reports whether the identified caller may proceed under a quota
// of maxRequests per window for the given scope. The returned error is
// informational: when Redis fails the request is still allowed.
func (l *Limiter) Allow(
	ctx context.Context,
	scope, identifier string,
	maxRequests int,
	window time.Duration,
) (bool, error) {
	if l.client == nil || maxRequests <= 0 || window <= 0 {
		return true, nil
	}

	key := fmt.Sprintf("rl:%s:%d:%s", scope, int64(window.Seconds()), identifier)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Warn("rate limit check failed, allowing request",
			slog.String("scope", scope),
			slog.String("error", err.Error()))
		return true, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	// First hit in this window starts the expiry clock
	if count == 1 {
		if err := l.client.Expire(ctx, key, window).Err(); err != nil {
			l.logger.Warn("failed to set rate limit window expiry",
				slog.String("scope", scope),
				slog.String("error", err.Error()))
		}
	}

	return count <= int64(maxRequests), nil
}
