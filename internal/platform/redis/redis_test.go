package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SeyyedAliBargh/task-manager-api/internal/config"
)

// testClient connects to the Redis instance named by TEST_REDIS_ADDR, or
// skips the test when none is available.
func testClient(t *testing.T) *goredis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set; skipping Redis integration test")
	}

	client, err := NewClient(config.RedisConfig{Addr: addr}, slog.Default())
	require.NoError(t, err)
	require.NotNil(t, client)

	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}

func TestNewClientDisabled(t *testing.T) {
	t.Parallel()

	client, err := NewClient(config.RedisConfig{}, slog.Default())
	assert.NoError(t, err)
	assert.Nil(t, client, "empty address should disable Redis instead of failing")
}

func TestNewClientUnreachable(t *testing.T) {
	t.Parallel()

	// Port 1 is essentially never a Redis server
	client, err := NewClient(config.RedisConfig{Addr: "127.0.0.1:1"}, slog.Default())
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestDisabledLimiterAllowsEverything(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(nil, slog.Default())

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(context.Background(), "login", "1.2.3.4", 1, time.Minute)
		assert.NoError(t, err)
		assert.True(t, allowed, "disabled limiter must always allow")
	}
}

func TestLimiterIgnoresZeroQuota(t *testing.T) {
	t.Parallel()

	limiter := NewLimiter(nil, slog.Default())

	allowed, err := limiter.Allow(context.Background(), "login", "1.2.3.4", 0, time.Minute)
	assert.NoError(t, err)
	assert.True(t, allowed, "a zero quota means the scope is unlimited")
}

func TestDisabledDenylist(t *testing.T) {
	t.Parallel()

	denylist := NewDenylist(nil, slog.Default())

	err := denylist.Revoke(context.Background(), "token-id", time.Hour)
	assert.NoError(t, err)

	revoked, err := denylist.IsRevoked(context.Background(), "token-id")
	assert.NoError(t, err)
	assert.False(t, revoked, "disabled denylist never reports revocation")
}

func TestLimiterEnforcesQuota(t *testing.T) {
	client := testClient(t)
	limiter := NewLimiter(client, slog.Default())
	ctx := context.Background()

	// Unique identifier per run so repeated test invocations start fresh
	ident := fmt.Sprintf("test-%s", uuid.New())

	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "login", ident, 3, 2*time.Second)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be within quota", i+1)
	}

	allowed, err := limiter.Allow(ctx, "login", ident, 3, 2*time.Second)
	require.NoError(t, err)
	assert.False(t, allowed, "fourth request should exceed the quota of 3")

	// A different scope has its own counter
	allowed, err = limiter.Allow(ctx, "register", ident, 3, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed, "quotas are tracked per scope")
}

func TestLimiterWindowExpires(t *testing.T) {
	client := testClient(t)
	limiter := NewLimiter(client, slog.Default())
	ctx := context.Background()

	ident := fmt.Sprintf("test-%s", uuid.New())

	allowed, err := limiter.Allow(ctx, "login", ident, 1, time.Second)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "login", ident, 1, time.Second)
	require.NoError(t, err)
	require.False(t, allowed)

	time.Sleep(1100 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, "login", ident, 1, time.Second)
	require.NoError(t, err)
	assert.True(t, allowed, "a fresh window should reset the counter")
}

func TestDenylistRoundTrip(t *testing.T) {
	client := testClient(t)
	denylist := NewDenylist(client, slog.Default())
	ctx := context.Background()

	tokenID := uuid.New().String()

	revoked, err := denylist.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked, "unknown token should not be revoked")

	require.NoError(t, denylist.Revoke(ctx, tokenID, time.Minute))

	revoked, err = denylist.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.True(t, revoked, "revoked token should be reported as revoked")
}

func TestDenylistEntryExpires(t *testing.T) {
	client := testClient(t)
	denylist := NewDenylist(client, slog.Default())
	ctx := context.Background()

	tokenID := uuid.New().String()
	require.NoError(t, denylist.Revoke(ctx, tokenID, time.Second))

	time.Sleep(1100 * time.Millisecond)

	revoked, err := denylist.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked, "denylist entry should expire with the token")
}

func TestDenylistSkipsExpiredTTL(t *testing.T) {
	client := testClient(t)
	denylist := NewDenylist(client, slog.Default())
	ctx := context.Background()

	tokenID := uuid.New().String()
	require.NoError(t, denylist.Revoke(ctx, tokenID, -time.Minute))

	revoked, err := denylist.IsRevoked(ctx, tokenID)
	require.NoError(t, err)
	assert.False(t, revoked, "a token already past expiry needs no denylist entry")
}
