package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/session"
	"github.com/dmitrymomot/authkit/pkg/useragent"
	"github.com/dmitrymomot/authkit/storage/redis"
)

// newTestStore connects to the Redis named by TEST_REDIS_URL and isolates
// the test under a unique namespace. Tests are skipped when the variable is
// unset.
func newTestStore(t *testing.T) *redis.Store {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		RetryInterval:  time.Second,
		ConnectTimeout: 10 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewStore(client, redis.WithNamespace("test:"+uuid.NewString()+":"))
}

func testSession(id string, userID uuid.UUID) session.Session {
	now := time.Now()
	return session.Session{
		ID:                id,
		UserID:            userID,
		Status:            session.StatusActive,
		CreatedAt:         now,
		LastAccessedAt:    now,
		ExpiresAt:         now.Add(30 * time.Minute),
		AbsoluteExpiresAt: now.Add(24 * time.Hour),
		IPAddress:         "203.0.113.7",
		Metadata:          map[string]string{"theme": "dark"},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	sess := testSession("redis-sess-1", userID)
	device := useragent.Classify("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0 Safari/537.36")
	sess.DeviceInfo = &device

	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "redis-sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, userID, got.UserID)
	assert.Equal(t, session.StatusActive, got.Status)
	assert.Equal(t, "203.0.113.7", got.IPAddress)
	assert.Equal(t, "dark", got.Metadata["theme"])
	require.NotNil(t, got.DeviceInfo)
	assert.Equal(t, "Windows", got.DeviceInfo.OS)
	assert.WithinDuration(t, sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestStore_Contracts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown id is nil not error", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		got, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update is not an upsert", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		sess := testSession("redis-sess-2", uuid.New())

		err := store.Update(ctx, &sess)
		require.ErrorIs(t, err, session.ErrSessionNotFound)

		require.NoError(t, store.Create(ctx, sess))
		sess.Revoke()
		require.NoError(t, store.Update(ctx, &sess))

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, session.StatusRevoked, got.Status)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		store := newTestStore(t)
		sess := testSession("redis-sess-3", uuid.New())
		require.NoError(t, store.Create(ctx, sess))

		require.NoError(t, store.Delete(ctx, sess.ID))
		require.NoError(t, store.Delete(ctx, sess.ID))

		got, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_UserSessions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, store.Create(ctx, testSession("a-1", alice)))
	require.NoError(t, store.Create(ctx, testSession("a-2", alice)))
	require.NoError(t, store.Create(ctx, testSession("b-1", bob)))

	sessions, err := store.UserSessions(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	count, err := store.DeleteUserSessions(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	sessions, err = store.UserSessions(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	remaining, err := store.UserSessions(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestStore_CleanupExpired(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.Create(ctx, testSession("live", userID)))

	// Idle clock lapsed, absolute ceiling still open: Redis TTL alone will
	// not evict this record.
	idleExpired := testSession("idle-expired", userID)
	idleExpired.ExpiresAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.Create(ctx, idleExpired))

	count, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := store.Get(ctx, "idle-expired")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
