package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/authkit/core/session"
	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// DefaultCollection is the collection name used by NewStore.
const DefaultCollection = "sessions"

// Store persists sessions in a MongoDB collection. Run EnsureIndexes once at
// startup: it creates the user_id index and a TTL index that lets MongoDB
// evict records past their absolute ceiling on its own.
type Store struct {
	coll *mongo.Collection
}

// NewStore creates a session store on the DefaultCollection of the given
// database.
func NewStore(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(DefaultCollection)}
}

// NewStoreWithCollection creates a session store on a specific collection.
func NewStoreWithCollection(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

var _ session.Store = (*Store)(nil)

type sessionDoc struct {
	ID                string            `bson:"_id"`
	UserID            string            `bson:"user_id"`
	Status            string            `bson:"status"`
	CreatedAt         time.Time         `bson:"created_at"`
	LastAccessedAt    time.Time         `bson:"last_accessed_at"`
	ExpiresAt         time.Time         `bson:"expires_at"`
	AbsoluteExpiresAt time.Time         `bson:"absolute_expires_at"`
	IPAddress         string            `bson:"ip_address,omitempty"`
	Device            *deviceDoc        `bson:"device,omitempty"`
	RememberMe        bool              `bson:"remember_me"`
	Metadata          map[string]string `bson:"metadata,omitempty"`
}

type deviceDoc struct {
	UserAgent   string `bson:"user_agent"`
	Type        string `bson:"type"`
	OS          string `bson:"os"`
	Browser     string `bson:"browser"`
	Fingerprint string `bson:"fingerprint,omitempty"`
}

func toDoc(sess session.Session) sessionDoc {
	doc := sessionDoc{
		ID:                sess.ID,
		UserID:            sess.UserID.String(),
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
		doc.Device = &deviceDoc{
			UserAgent:   sess.DeviceInfo.UserAgent,
			Type:        string(sess.DeviceInfo.Type),
			OS:          sess.DeviceInfo.OS,
			Browser:     sess.DeviceInfo.Browser,
			Fingerprint: sess.DeviceInfo.Fingerprint,
		}
	}

	return doc
}

func (d sessionDoc) toSession() (session.Session, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return session.Session{}, fmt.Errorf("parse user id %q: %w", d.UserID, err)
	}

	sess := session.Session{
		ID:                d.ID,
		UserID:            userID,
		Status:            session.Status(d.Status),
		CreatedAt:         d.CreatedAt,
		LastAccessedAt:    d.LastAccessedAt,
		ExpiresAt:         d.ExpiresAt,
		AbsoluteExpiresAt: d.AbsoluteExpiresAt,
		IPAddress:         d.IPAddress,
		RememberMe:        d.RememberMe,
		Metadata:          d.Metadata,
	}
	if sess.Metadata == nil {
		sess.Metadata = make(map[string]string)
	}

	if d.Device != nil {
		sess.DeviceInfo = &useragent.DeviceInfo{
			UserAgent:   d.Device.UserAgent,
			Type:        useragent.DeviceType(d.Device.Type),
			OS:          d.Device.OS,
			Browser:     d.Device.Browser,
			Fingerprint: d.Device.Fingerprint,
		}
	}

	return sess, nil
}

// EnsureIndexes creates the supporting indexes. The TTL index expires
// documents at absolute_expires_at; idle-expired documents are still removed
// by reads and CleanupExpired.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "absolute_expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})
	if err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, sess session.Session) error {
	if _, err := s.coll.InsertOne(ctx, toDoc(sess)); err != nil {
		return fmt.Errorf("store session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	var doc sessionDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}

	sess, err := doc.toSession()
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Update(ctx context.Context, sess *session.Session) error {
	result, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sess.ID}, toDoc(*sess))
	if err != nil {
		return fmt.Errorf("update session %s: %w", sess.ID, err)
	}
	if result.MatchedCount == 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func (s *Store) UserSessions(ctx context.Context, userID uuid.UUID) ([]session.Session, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var sessions []session.Session
	for cursor.Next(ctx) {
		var doc sessionDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode session: %w", err)
		}

		sess, err := doc.toSession()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list sessions for user %s: %w", userID, err)
	}

	return sessions, nil
}

func (s *Store) DeleteUserSessions(ctx context.Context, userID uuid.UUID) (int, error) {
	result, err := s.coll.DeleteMany(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return 0, fmt.Errorf("delete sessions for user %s: %w", userID, err)
	}
	return int(result.DeletedCount), nil
}

func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	now := time.Now()

	result, err := s.coll.DeleteMany(ctx, bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$lt": now}},
		bson.M{"absolute_expires_at": bson.M{"$lt": now}},
	}})
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return int(result.DeletedCount), nil
}
