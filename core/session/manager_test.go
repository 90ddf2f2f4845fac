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

func newTestManager(cfg session.Config) (*session.Manager, *session.InMemoryStore) {
	store := session.NewInMemoryStore()
	return session.NewManager(store, cfg), store
}

func TestManager_CreateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates valid session with configured id length", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		sess, err := manager.CreateSession(ctx, userID, "203.0.113.7", "", false)
		require.NoError(t, err)

		assert.Len(t, sess.ID, 32)
		assert.Equal(t, userID, sess.UserID)
		assert.Equal(t, "203.0.113.7", sess.IPAddress)
		assert.True(t, sess.IsValid())
	})

	t.Run("classifies device when tracking enabled", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())

		ua := "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 Chrome/120.0.0.0 Mobile Safari/537.36"
		sess, err := manager.CreateSession(ctx, uuid.New(), "", ua, false)
		require.NoError(t, err)

		require.NotNil(t, sess.DeviceInfo)
		assert.Equal(t, "Android", sess.DeviceInfo.OS)
		assert.Equal(t, "Chrome", sess.DeviceInfo.Browser)
	})

	t.Run("skips tracking when disabled", func(t *testing.T) {
		t.Parallel()

		cfg := session.DefaultConfig()
		cfg.TrackDevice = false
		cfg.TrackIP = false
		manager, _ := newTestManager(cfg)

		sess, err := manager.CreateSession(ctx, uuid.New(), "203.0.113.7", "Mozilla/5.0", false)
		require.NoError(t, err)

		assert.Nil(t, sess.DeviceInfo)
		assert.Empty(t, sess.IPAddress)
	})

	t.Run("evicts least recently accessed session at the cap", func(t *testing.T) {
		t.Parallel()

		cfg := session.DefaultConfig()
		cfg.MaxConcurrentSessions = 2
		manager, _ := newTestManager(cfg)
		userID := uuid.New()

		s1, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		s2, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		// s1 is the least recently accessed; the third login replaces it.
		s3, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)

		gone, err := manager.ValidateSession(ctx, s1.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		// Touching s2 makes s3 the eviction target for the next login.
		touched, err := manager.TouchSession(ctx, s2.ID)
		require.NoError(t, err)
		require.True(t, touched)

		s4, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)

		sessions, err := manager.UserSessions(ctx, userID)
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		ids := []string{sessions[0].ID, sessions[1].ID}
		assert.Contains(t, ids, s2.ID, "recently touched session survives")
		assert.Contains(t, ids, s4.ID)
		assert.NotContains(t, ids, s3.ID, "least recently accessed, not oldest created, is evicted")
	})
}

func TestManager_ValidateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unknown id yields nil", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())

		sess, err := manager.ValidateSession(ctx, "nonexistent")
		require.NoError(t, err)
		assert.Nil(t, sess)
	})

	t.Run("revoked session yields nil but stays stored", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		sess, err := manager.CreateSession(ctx, uuid.New(), "", "", false)
		require.NoError(t, err)

		found, err := manager.RevokeSession(ctx, sess.ID)
		require.NoError(t, err)
		require.True(t, found)

		validated, err := manager.ValidateSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.Nil(t, validated)

		stored, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored, "revoked records are kept, not lazily deleted")
	})

	t.Run("expired session is lazily deleted on read", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		expired := expiredSession(uuid.New())
		require.NoError(t, store.Create(ctx, expired))

		validated, err := manager.ValidateSession(ctx, expired.ID)
		require.NoError(t, err)
		assert.Nil(t, validated)

		stored, err := store.Get(ctx, expired.ID)
		require.NoError(t, err)
		assert.Nil(t, stored, "expired record is removed as a side effect of the read")
	})
}

func TestManager_TouchSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("advances idle clock of valid session", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		sess, err := manager.CreateSession(ctx, uuid.New(), "", "", false)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		touched, err := manager.TouchSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, touched)

		stored, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, stored.ExpiresAt.After(sess.ExpiresAt))
		assert.Equal(t, sess.AbsoluteExpiresAt.Unix(), stored.AbsoluteExpiresAt.Unix())
	})

	t.Run("returns false without effect for invalid sessions", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())

		touched, err := manager.TouchSession(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, touched)

		expired := expiredSession(uuid.New())
		require.NoError(t, store.Create(ctx, expired))

		touched, err = manager.TouchSession(ctx, expired.ID)
		require.NoError(t, err)
		assert.False(t, touched)
	})
}

func TestManager_Revocation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("revoking an already revoked session reports found", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		sess, err := manager.CreateSession(ctx, uuid.New(), "", "", false)
		require.NoError(t, err)

		found, err := manager.RevokeSession(ctx, sess.ID)
		require.NoError(t, err)
		require.True(t, found)

		found, err = manager.RevokeSession(ctx, sess.ID)
		require.NoError(t, err)
		assert.True(t, found, "second revoke still reports the session as found")

		stored, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.Equal(t, session.StatusRevoked, stored.Status)
	})

	t.Run("revoke all user sessions", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		for range 3 {
			_, err := manager.CreateSession(ctx, userID, "", "", false)
			require.NoError(t, err)
		}

		count, err := manager.RevokeAllUserSessions(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)

		remaining, err := manager.UserSessions(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, remaining)

		// Nothing left to revoke; not an error.
		count, err = manager.RevokeAllUserSessions(ctx, userID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("revoke all except keeps the named session", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		keep, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		_, err = manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		_, err = manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)

		count, err := manager.RevokeAllExcept(ctx, userID, keep.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		remaining, err := manager.UserSessions(ctx, userID)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, keep.ID, remaining[0].ID)
	})
}

func TestManager_RegenerateSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("rotates id and preserves metadata and remember_me", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		old, err := manager.CreateSession(ctx, userID, "", "", true)
		require.NoError(t, err)
		old.Metadata["theme"] = "dark"
		require.NoError(t, store.Update(ctx, old))

		fresh, err := manager.RegenerateSession(ctx, old.ID, "203.0.113.9", "")
		require.NoError(t, err)
		require.NotNil(t, fresh)

		assert.NotEqual(t, old.ID, fresh.ID)
		assert.Equal(t, userID, fresh.UserID)
		assert.True(t, fresh.RememberMe)
		assert.Equal(t, "dark", fresh.Metadata["theme"])
		assert.Equal(t, old.ID, fresh.Metadata[session.MetadataRotatedFrom])

		gone, err := store.Get(ctx, old.ID)
		require.NoError(t, err)
		assert.Nil(t, gone, "old session is deleted after rotation")
	})

	t.Run("rotation marker is replaced, not chained", func(t *testing.T) {
		t.Parallel()

		manager, _ := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		first, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)

		second, err := manager.RegenerateSession(ctx, first.ID, "", "")
		require.NoError(t, err)
		require.NotNil(t, second)

		third, err := manager.RegenerateSession(ctx, second.ID, "", "")
		require.NoError(t, err)
		require.NotNil(t, third)

		assert.Equal(t, second.ID, third.Metadata[session.MetadataRotatedFrom])
	})

	t.Run("invalid old session yields nil and no new record", func(t *testing.T) {
		t.Parallel()

		manager, store := newTestManager(session.DefaultConfig())
		userID := uuid.New()

		fresh, err := manager.RegenerateSession(ctx, "missing", "", "")
		require.NoError(t, err)
		assert.Nil(t, fresh)

		sess, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		_, err = manager.RevokeSession(ctx, sess.ID)
		require.NoError(t, err)

		fresh, err = manager.RegenerateSession(ctx, sess.ID, "", "")
		require.NoError(t, err)
		assert.Nil(t, fresh)

		stored, err := store.Get(ctx, sess.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored, "revoked session is left as is")
	})
}

func TestManager_InvalidateOnPasswordChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store := newTestManager(session.DefaultConfig())
	userID := uuid.New()

	var ids []string
	for range 3 {
		sess, err := manager.CreateSession(ctx, userID, "", "", false)
		require.NoError(t, err)
		ids = append(ids, sess.ID)
	}

	count, err := manager.InvalidateOnPasswordChange(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	for _, id := range ids {
		stored, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, stored, "records are hard-deleted, not merely revoked")
	}
}

func TestManager_CleanupExpiredSessions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager, store := newTestManager(session.DefaultConfig())
	userID := uuid.New()

	live, err := manager.CreateSession(ctx, userID, "", "", false)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, expiredSession(userID)))

	count, err := manager.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := store.Get(ctx, live.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestManager_IdleExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	cfg := session.DefaultConfig()
	cfg.IdleTimeout = 30 * time.Millisecond
	manager, _ := newTestManager(cfg)

	sess, err := manager.CreateSession(ctx, uuid.New(), "", "", false)
	require.NoError(t, err)
	assert.True(t, sess.IsValid())

	time.Sleep(50 * time.Millisecond)

	validated, err := manager.ValidateSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Nil(t, validated, "idle timeout lapsed without a touch")
}
