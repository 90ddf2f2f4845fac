package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/session"
)

func activeSession(id string, userID uuid.UUID) session.Session {
	now := time.Now()
	return session.Session{
		ID:                id,
		UserID:            userID,
		Status:            session.StatusActive,
		CreatedAt:         now,
		LastAccessedAt:    now,
		ExpiresAt:         now.Add(30 * time.Minute),
		AbsoluteExpiresAt: now.Add(24 * time.Hour),
		Metadata:          map[string]string{},
	}
}

func TestInMemoryStore_CRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get returns stored session", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		sess := activeSession("sess-1", uuid.New())

		require.NoError(t, store.Create(ctx, sess))

		got, err := store.Get(ctx, "sess-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, sess.UserID, got.UserID)
	})

	t.Run("unknown id is nil not error", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()

		got, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get hands out independent copies", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		sess := activeSession("sess-copy", uuid.New())
		require.NoError(t, store.Create(ctx, sess))

		first, err := store.Get(ctx, "sess-copy")
		require.NoError(t, err)
		first.Metadata["tampered"] = "yes"

		second, err := store.Get(ctx, "sess-copy")
		require.NoError(t, err)
		assert.NotContains(t, second.Metadata, "tampered")
	})

	t.Run("update is not an upsert", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		sess := activeSession("sess-2", uuid.New())

		err := store.Update(ctx, &sess)
		require.ErrorIs(t, err, session.ErrSessionNotFound)

		require.NoError(t, store.Create(ctx, sess))
		sess.Revoke()
		require.NoError(t, store.Update(ctx, &sess))

		got, err := store.Get(ctx, "sess-2")
		require.NoError(t, err)
		assert.Equal(t, session.StatusRevoked, got.Status)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		sess := activeSession("sess-3", uuid.New())
		require.NoError(t, store.Create(ctx, sess))

		require.NoError(t, store.Delete(ctx, "sess-3"))
		require.NoError(t, store.Delete(ctx, "sess-3"), "second delete must not error")

		got, err := store.Get(ctx, "sess-3")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestInMemoryStore_UserSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("filters by user", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		alice, bob := uuid.New(), uuid.New()

		require.NoError(t, store.Create(ctx, activeSession("a-1", alice)))
		require.NoError(t, store.Create(ctx, activeSession("a-2", alice)))
		require.NoError(t, store.Create(ctx, activeSession("b-1", bob)))

		sessions, err := store.UserSessions(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, sessions, 2)
	})

	t.Run("delete user sessions reports count", func(t *testing.T) {
		t.Parallel()

		store := session.NewInMemoryStore()
		alice, bob := uuid.New(), uuid.New()

		require.NoError(t, store.Create(ctx, activeSession("a-1", alice)))
		require.NoError(t, store.Create(ctx, activeSession("a-2", alice)))
		require.NoError(t, store.Create(ctx, activeSession("b-1", bob)))

		count, err := store.DeleteUserSessions(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		remaining, err := store.UserSessions(ctx, bob)
		require.NoError(t, err)
		assert.Len(t, remaining, 1)
	})
}

func TestInMemoryStore_CleanupExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewInMemoryStore()
	userID := uuid.New()

	require.NoError(t, store.Create(ctx, activeSession("live", userID)))
	require.NoError(t, store.Create(ctx, expiredSession(userID)))

	// Revoked but clock-expired records are swept too.
	revoked := expiredSession(userID)
	revoked.ID = "revoked-expired"
	revoked.Revoke()
	require.NoError(t, store.Create(ctx, revoked))

	count, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := store.Get(ctx, "live")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
