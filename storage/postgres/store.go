package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authkit/core/session"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// qb builds queries with PostgreSQL positional placeholders.
var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const sessionsTable = "sessions"

var sessionColumns = []string{
	"id", "user_id", "status",
	"created_at", "last_accessed_at", "expires_at", "absolute_expires_at",
	"ip_address", "device", "remember_me", "metadata",
}

// Store persists sessions in a PostgreSQL table. Run Migrate once at startup
// to create the schema.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a session store on top of an established connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ session.Store = (*Store)(nil)

func (s *Store) Create(ctx context.Context, sess session.Session) error {
	device, metadata, err := encodeJSONColumns(&sess)
	if err != nil {
		return err
	}

	query, args, err := qb.Insert(sessionsTable).
		Columns(sessionColumns...).
		Values(
			sess.ID, sess.UserID, string(sess.Status),
			sess.CreatedAt, sess.LastAccessedAt, sess.ExpiresAt, sess.AbsoluteExpiresAt,
			sess.IPAddress, device, sess.RememberMe, metadata,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	query, args, err := qb.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	sess, err := scanSession(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	device, metadata, err := encodeJSONColumns(sess)
	if err != nil {
		return err
	}

	query, args, err := qb.Update(sessionsTable).
		Set("status", string(sess.Status)).
		Set("last_accessed_at", sess.LastAccessedAt).
		Set("expires_at", sess.ExpiresAt).
		Set("absolute_expires_at", sess.AbsoluteExpiresAt).
		Set("ip_address", sess.IPAddress).
		Set("device", device).
		Set("remember_me", sess.RememberMe).
		Set("metadata", metadata).
		Where(sq.Eq{"id": sess.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	query, args, err := qb.Delete(sessionsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) UserSessions(ctx context.Context, userID uuid.UUID) ([]session.Session, error) {
	query, args, err := qb.Select(sessionColumns...).
		From(sessionsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}

	return sessions, nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	query, args, err := qb.Delete(sessionsTable).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete sessions for user %s: %w", userID, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now()

	query, args, err := qb.Delete(sessionsTable).
		Where(sq.Or{
			sq.Lt{"expires_at": now},
			sq.Lt{"absolute_expires_at": now},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func encodeJSONColumns(sess *session.Session) ([]byte, []byte, error) {
	var device []byte
	if sess.DeviceInfo != nil {
		var err error
		device, err = json.Marshal(sess.DeviceInfo)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal device info: %w", err)
		}
	}

	metadata := sess.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return device, encoded, nil
}

func scanSession(row pgx.Row) (*session.Session, error) {
	var (
		sess     session.Session
		status   string
		device   []byte
		metadata []byte
	)

	if err := row.Scan(
		&sess.ID, &sess.UserID, &status,
		&sess.CreatedAt, &sess.LastAccessedAt, &sess.ExpiresAt, &sess.AbsoluteExpiresAt,
		&sess.IPAddress, &device, &sess.RememberMe, &metadata,
	); err != nil {
		return nil, err
	}

	sess.Status = session.Status(status)

	if len(device) > 0 {
		info := &useragent.DeviceInfo{}
		if err := json.Unmarshal(device, info); err != nil {
			return nil, fmt.Errorf("unmarshal device info: %w", err)
		}
		sess.DeviceInfo = info
	}

	sess.Metadata = make(map[string]string)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &sess.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}

	return &sess, nil
}
