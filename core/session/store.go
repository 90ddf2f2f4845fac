package session

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence capability the manager is written against. Every
// backend — the in-memory reference implementation, Redis, Postgres, Mongo —
// must honor the same contracts:
//
//   - Get returns (nil, nil) for an unknown id; absence is not an error.
//   - Update fails with ErrSessionNotFound for an unknown id; it is not an
//     upsert.
//   - Delete is idempotent; deleting an absent id is not an error.
//   - CleanupExpired removes every record whose clocks have lapsed,
//     regardless of stored status, and returns the count removed.
//
// Backends must provide at least read-committed consistency for Get/Update.
type Store interface {
	Create(ctx context.Context, sess Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	UserSessions(ctx context.Context, userID uuid.UUID) ([]Session, error)
	DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int, error)
	CleanupExpired(ctx context.Context) (int, error)
}
