package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	red "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authkit/core/session"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// indexTTL caps the lifetime of per-user index sets. It exceeds the longest
// possible session lifetime (the remember-me window), so an index never
// outlives anything it points to by much; stale members are pruned on read.
const indexTTL = 31 * 24 * time.Hour

// Store persists sessions in Redis. Each session is a JSON value under
// <ns>session:<id> with a TTL at the absolute expiry ceiling, plus a
// per-user set <ns>user_sessions:<uuid> indexing the user's session ids.
//
// Idle-expired records whose absolute ceiling is still open survive in Redis
// until a read or CleanupExpired removes them; the TTL only covers the
// absolute clock.
type Store struct {
	client    *red.Client
	namespace string
	scanCount int64
}

// Option configures a Store.
type Option func(*Store)

// WithNamespace prefixes every key the store writes, so several applications
// can share one Redis database.
func WithNamespace(ns string) Option {
	return func(s *Store) {
		s.namespace = ns
	}
}

// WithScanBatchSize sets the SCAN batch size used by CleanupExpired.
func WithScanBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.scanCount = int64(n)
		}
	}
}

// NewStore creates a session store on top of an established Redis client.
func NewStore(client *red.Client, opts ...Option) *Store {
	s := &Store{
		client:    client,
		scanCount: 1000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

var _ session.Store = (*Store)(nil)

type record struct {
	ID                string            `json:"id"`
	UserID            uuid.UUID         `json:"user_id"`
	Status            string            `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	LastAccessedAt    time.Time         `json:"last_accessed_at"`
	ExpiresAt         time.Time         `json:"expires_at"`
	AbsoluteExpiresAt time.Time         `json:"absolute_expires_at"`
	IPAddress         string            `json:"ip_address,omitempty"`
	Device            *deviceRecord     `json:"device,omitempty"`
	RememberMe        bool              `json:"remember_me"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

type deviceRecord struct {
	UserAgent   string `json:"user_agent"`
	Type        string `json:"type"`
	OS          string `json:"os"`
	Browser     string `json:"browser"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

func toRecord(sess session.Session) record {
	rec := record{
		ID:                sess.ID,
		UserID:            sess.UserID,
		Status:            string(sess.Status),
		CreatedAt:         sess.CreatedAt,
		LastAccessedAt:    sess.LastAccessedAt,
		ExpiresAt:         sess.ExpiresAt,
		AbsoluteExpiresAt: sess.AbsoluteExpiresAt,
		IPAddress:         sess.IPAddress,
		RememberMe:        sess.RememberMe,
		Metadata:          sess.Metadata,
	}

	if sess.DeviceInfo != nil {
		rec.Device = &deviceRecord{
			UserAgent:   sess.DeviceInfo.UserAgent,
			Type:        string(sess.DeviceInfo.Type),
			OS:          sess.DeviceInfo.OS,
			Browser:     sess.DeviceInfo.Browser,
			Fingerprint: sess.DeviceInfo.Fingerprint,
		}
	}

	return rec
}

func (r record) toSession() session.Session {
	sess := session.Session{
		ID:                r.ID,
		UserID:            r.UserID,
		Status:            session.Status(r.Status),
		CreatedAt:         r.CreatedAt,
		LastAccessedAt:    r.LastAccessedAt,
		ExpiresAt:         r.ExpiresAt,
		AbsoluteExpiresAt: r.AbsoluteExpiresAt,
		IPAddress:         r.IPAddress,
		RememberMe:        r.RememberMe,
		Metadata:          r.Metadata,
	}
	if sess.Metadata == nil {
		sess.Metadata = make(map[string]string)
	}

	if r.Device != nil {
		sess.DeviceInfo = &useragent.DeviceInfo{
			UserAgent:   r.Device.UserAgent,
			Type:        useragent.DeviceType(r.Device.Type),
			OS:          r.Device.OS,
			Browser:     r.Device.Browser,
			Fingerprint: r.Device.Fingerprint,
		}
	}

	return sess
}

func (s *Store) sessionKey(id string) string {
	return s.namespace + "session:" + id
}

func (s *Store) userKey(userID uuid.UUID) string {
	return s.namespace + "user_sessions:" + userID.String()
}

// recordTTL is the Redis TTL for a session value: the time until the
// absolute ceiling, never below one second so a just-expiring write still
// lands and is cleaned up by Redis itself.
func recordTTL(sess *session.Session) time.Duration {
	ttl := time.Until(sess.AbsoluteExpiresAt)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}

func (s *Store) Create(ctx context.Context, sess session.Session) error {
	payload, err := json.Marshal(toRecord(sess))
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(sess.ID), payload, recordTTL(&sess))
	pipe.SAdd(ctx, s.userKey(sess.UserID), sess.ID)
	pipe.Expire(ctx, s.userKey(sess.UserID), indexTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if errors.Is(err, red.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	sess := rec.toSession()
	return &sess, nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(toRecord(*sess))
	if err != nil {
		return fmt.Errorf("marshal session %s: %w", sess.ID, err)
	}

	// XX makes the write conditional on existence, preserving the
	// not-an-upsert contract.
	ok, err := s.client.SetXX(ctx, s.sessionKey(sess.ID), payload, recordTTL(sess)).Result()
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	if !ok {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return nil
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(id))
	pipe.SRem(ctx, s.userKey(sess.UserID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) UserSessions(ctx context.Context, userID uuid.UUID) ([]session.Session, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch sessions for user %s: %w", userID, err)
	}

	var sessions []session.Session
	var stale []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// The value expired or was deleted; drop the index member.
			stale = append(stale, ids[i])
			continue
		}

		var rec record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal session %s: %w", ids[i], err)
		}
		sessions = append(sessions, rec.toSession())
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, s.userKey(userID), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune session index for user %s: %w", userID, err)
		}
	}

	return sessions, nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}

	count := 0
	if len(ids) > 0 {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = s.sessionKey(id)
		}

		deleted, err := s.client.Del(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("delete sessions for user %s: %w", userID, err)
		}
		count = int(deleted)
	}

	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return count, fmt.Errorf("delete session index for user %s: %w", userID, err)
	}

	return count, nil
}

// CleanupExpired scans the session keyspace and removes records whose idle
// clock lapsed while their absolute TTL is still open. Records past the
// absolute ceiling are already evicted by Redis itself.
func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	count := 0

	iter := s.client.Scan(ctx, 0, s.namespace+"session:*", s.scanCount).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		payload, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, red.Nil) {
			continue
		}
		if err != nil {
			return count, fmt.Errorf("get %s: %w", key, err)
		}

		var rec record
		if err := json.Unmarshal(payload, &rec); err != nil {
			return count, fmt.Errorf("unmarshal %s: %w", key, err)
		}

		sess := rec.toSession()
		if !sess.IsExpired() {
			continue
		}

		pipe := s.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, s.userKey(sess.UserID), sess.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return count, fmt.Errorf("delete %s: %w", key, err)
		}
		count++
	}
	if err := iter.Err(); err != nil {
		return count, fmt.Errorf("scan sessions: %w", err)
	}

	return count, nil
}
