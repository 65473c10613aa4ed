package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildgate/guildgate/internal/domain/verify"
	"github.com/guildgate/guildgate/internal/ports"
)

// setupTestRedis creates a Redis client for testing.
// Tests are skipped if Redis is not available.
func setupTestRedis(t *testing.T) *goredis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := goredis.NewClient(&goredis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func testSession(id string) verify.Session {
	return verify.Session{
		ID: id,
		Message: verify.Message{
			ExpiryTs: time.Now().Add(15 * time.Minute).Unix(),
			Discord:  verify.Discord{UserID: "user-1", GuildID: "guild-2"},
		},
		State:     "state",
		Nonce:     "nonce",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
}

func TestSessionStore_SaveAndGet(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))
	ctx := context.Background()

	sess := testSession("redis-sess-1")
	defer func() { _ = store.Delete(ctx, sess.ID) }()

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)
	assert.Equal(t, sess.Message, got.Message)
	assert.Equal(t, sess.State, got.State)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))

	_, err := store.Get(context.Background(), "redis-missing")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}

func TestSessionStore_SaveExpired(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))

	sess := testSession("redis-sess-expired")
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	err := store.Save(context.Background(), sess)
	require.Error(t, err)
}

func TestSessionStore_Delete(t *testing.T) {
	store := NewSessionStore(setupTestRedis(t))
	ctx := context.Background()

	sess := testSession("redis-sess-del")
	require.NoError(t, store.Save(ctx, sess))
	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, ""))
}
