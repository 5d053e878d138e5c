package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// denylistKeyPrefix namespaces revoked token IDs in Redis.
const denylistKeyPrefix = "denylist:"

// Denylist records revoked refresh token IDs until their natural expiry,
// which is what makes logout effective for otherwise stateless JWTs.
// With no Redis configured it degrades to a no-op: logout returns
// success but tokens stay valid until they expire.
type Denylist struct {
	client *goredis.Client
	logger *slog.Logger
}

// NewDenylist creates a token denylist on the given client. A nil client
// produces a disabled denylist.
func NewDenylist(client *goredis.Client, logger *slog.Logger) *Denylist {
	if logger == nil {
		logger = slog.Default()
	}

	return &Denylist{
		client: client,
		logger: logger.With(slog.String("component", "token_denylist")),
	}
}

// Revoke marks the token ID as revoked for ttl, after which the token
// has expired anyway and the entry is dropped.
func (d *Denylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if d.client == nil {
		d.logger.Warn("token revocation skipped, redis not configured",
			slog.String("token_id", tokenID))
		return nil
	}

	if ttl <= 0 {
		// Already expired, nothing to deny
		return nil
	}

	if err := d.client.Set(ctx, denylistKeyPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether the token ID has been revoked. Redis
// failures report the token as not revoked so an outage does not lock
// every user out; the error is returned for logging.
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if d.client == nil {
		return false, nil
	}

	err := d.client.Get(ctx, denylistKeyPrefix+tokenID).Err()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		d.logger.Warn("token revocation check failed, treating token as valid",
			slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	return true, nil
}
