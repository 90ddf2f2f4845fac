package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/core/logger"
	"github.com/dmitrymomot/authkit/pkg/keygen"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// Manager orchestrates the session lifecycle against an injected Store.
// There is no process-wide state: construct one manager per store so tests
// can run isolated instances.
type Manager struct {
	store  Store
	config Config
	log    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle events. Defaults to
// slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a session manager backed by the given store.
func NewManager(store Store, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		config: cfg,
		log:    slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Config returns the manager's configuration.
func (m *Manager) Config() Config {
	return m.config
}

// CreateSession starts a new session for the user. When the user already has
// MaxConcurrentSessions valid sessions, the least recently accessed ones are
// hard-deleted until one slot is free — eviction targets recency of access,
// not creation order.
//
// The count check and the evicting deletes are separate store operations,
// so two concurrent calls for the same user can both pass the check before
// either deletes, transiently exceeding the cap. This is accepted
// best-effort behavior; serialize logins per user upstream if the cap must
// be strict.
func (m *Manager) CreateSession(ctx context.Context, userID uuid.UUID, ipAddress, userAgent string, rememberMe bool) (*Session, error) {
	existing, err := m.store.UserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var valid []Session
	for _, sess := range existing {
		if sess.IsValid() {
			valid = append(valid, sess)
		}
	}

	if len(valid) >= m.config.MaxConcurrentSessions {
		sort.Slice(valid, func(i, j int) bool {
			return valid[i].LastAccessedAt.Before(valid[j].LastAccessedAt)
		})

		evict := len(valid) - m.config.MaxConcurrentSessions + 1
		for _, sess := range valid[:evict] {
			if err := m.store.Delete(ctx, sess.ID); err != nil {
				return nil, err
			}
			m.log.DebugContext(ctx, "evicted least recently accessed session",
				logger.SessionID(sess.ID),
				logger.UserID(userID.String()))
		}
	}

	sess, err := m.newSessionFor(userID, ipAddress, userAgent, rememberMe)
	if err != nil {
		return nil, err
	}

	if err := m.store.Create(ctx, *sess); err != nil {
		return nil, err
	}

	m.log.InfoContext(ctx, "session created",
		logger.SessionID(sess.ID),
		logger.UserID(userID.String()),
		slog.Bool("remember_me", rememberMe))

	return sess, nil
}

// ValidateSession returns the session when it is currently valid, or nil
// when it is absent, revoked, invalidated, or expired. An expired record is
// deleted from the store on the way out (lazy cleanup on read).
func (m *Manager) ValidateSession(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil
	}

	if !sess.IsValid() {
		if sess.IsExpired() {
			if err := m.store.Delete(ctx, id); err != nil {
				return nil, err
			}
			m.log.DebugContext(ctx, "lazily deleted expired session",
				logger.SessionID(id))
		}
		return nil, nil
	}

	return sess, nil
}

// TouchSession advances the idle clock of a currently valid session and
// reports whether anything was touched. Invalid or absent sessions are left
// untouched and yield false.
func (m *Manager) TouchSession(ctx context.Context, id string) (bool, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if sess == nil || !sess.IsValid() {
		return false, nil
	}

	sess.Touch(m.config.IdleTimeout)
	if err := m.store.Update(ctx, sess); err != nil {
		return false, err
	}

	return true, nil
}

// RevokeSession transitions the session to Revoked and reports whether the
// id was found. Revoking an already-revoked session is a no-op that still
// reports true.
func (m *Manager) RevokeSession(ctx context.Context, id string) (bool, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, nil
	}

	if sess.Status == StatusActive {
		sess.Revoke()
		if err := m.store.Update(ctx, sess); err != nil {
			return false, err
		}
		m.log.InfoContext(ctx, "session revoked", logger.SessionID(id))
	}

	return true, nil
}

// RevokeAllUserSessions revokes every Active session of the user and
// returns the count affected. No match is not an error.
func (m *Manager) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.revokeUserSessions(ctx, userID, "")
}

// RevokeAllExcept revokes every Active session of the user except keepID,
// typically the caller's own session, and returns the count affected.
func (m *Manager) RevokeAllExcept(ctx context.Context, userID uuid.UUID, keepID string) (int, error) {
	return m.revokeUserSessions(ctx, userID, keepID)
}

func (m *Manager) revokeUserSessions(ctx context.Context, userID uuid.UUID, keepID string) (int, error) {
	sessions, err := m.store.UserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	revoked := 0
	for i := range sessions {
		sess := &sessions[i]
		if sess.ID == keepID || sess.Status != StatusActive {
			continue
		}

		sess.Revoke()
		if err := m.store.Update(ctx, sess); err != nil {
			return revoked, err
		}
		revoked++
	}

	m.log.InfoContext(ctx, "revoked user sessions",
		logger.UserID(userID.String()),
		logger.Count(revoked))

	return revoked, nil
}

// UserSessions returns the user's currently valid sessions, e.g. for an
// active-devices view.
func (m *Manager) UserSessions(ctx context.Context, userID uuid.UUID) ([]Session, error) {
	sessions, err := m.store.UserSessions(ctx, userID)
	if err != nil {
		return nil, err
	}

	valid := sessions[:0]
	for _, sess := range sessions {
		if sess.IsValid() {
			valid = append(valid, sess)
		}
	}
	return valid, nil
}

// RegenerateSession rotates a session identifier after a privilege change,
// defeating session fixation. The old session must be currently valid;
// otherwise nothing happens and nil is returned. The new session gets a
// fresh id and fresh clocks, keeps RememberMe and all metadata except the
// rotation marker, records where it was rotated from, and the old record is
// deleted.
func (m *Manager) RegenerateSession(ctx context.Context, oldID, ipAddress, userAgent string) (*Session, error) {
	old, err := m.store.Get(ctx, oldID)
	if err != nil {
		return nil, err
	}
	if old == nil || !old.IsValid() {
		return nil, nil
	}

	sess, err := m.newSessionFor(old.UserID, ipAddress, userAgent, old.RememberMe)
	if err != nil {
		return nil, err
	}

	for k, v := range old.Metadata {
		if k != MetadataRotatedFrom {
			sess.Metadata[k] = v
		}
	}
	sess.Metadata[MetadataRotatedFrom] = old.ID

	if err := m.store.Create(ctx, *sess); err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, oldID); err != nil {
		return nil, err
	}

	m.log.InfoContext(ctx, "session rotated",
		slog.String("old_session_id", oldID),
		logger.SessionID(sess.ID),
		logger.UserID(old.UserID.String()))

	return sess, nil
}

// InvalidateOnPasswordChange hard-deletes every session of the user —
// revocation is not enough after a credential change — and returns the
// count removed.
func (m *Manager) InvalidateOnPasswordChange(ctx context.Context, userID uuid.UUID) (int, error) {
	count, err := m.store.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}

	m.log.InfoContext(ctx, "invalidated all sessions after credential change",
		logger.UserID(userID.String()),
		logger.Count(count))

	return count, nil
}

// CleanupExpiredSessions sweeps the store and removes every record whose
// clocks have lapsed. Intended for periodic maintenance; see StartCleanup.
func (m *Manager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	count, err := m.store.CleanupExpired(ctx)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		m.log.InfoContext(ctx, "cleaned up expired sessions", logger.Count(count))
	}

	return count, nil
}

// StartCleanup runs CleanupExpiredSessions every interval until the context
// is canceled. Run it in its own goroutine:
//
//	go manager.StartCleanup(ctx, 10*time.Minute)
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.CleanupExpiredSessions(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.ErrorContext(ctx, "session cleanup failed", logger.Error(err))
			}
		}
	}
}

func (m *Manager) newSessionFor(userID uuid.UUID, ipAddress, userAgent string, rememberMe bool) (*Session, error) {
	id, err := keygen.SessionID(m.config.SessionIDLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIDGeneration, err)
	}

	sess := newSession(id, userID, m.config, rememberMe)

	if m.config.TrackIP && ipAddress != "" {
		sess.IPAddress = ipAddress
	}

	if m.config.TrackDevice && userAgent != "" {
		device := useragent.Classify(userAgent)
		sess.DeviceInfo = &device
	}

	return &sess, nil
}
