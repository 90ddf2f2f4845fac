package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/useragent"
)

// Status is the stored lifecycle state of a session. Natural expiry is never
// written as a status; it is always computed from the two clocks at read
// time.
type Status string

const (
	// StatusActive is the only state in which a session can be valid.
	StatusActive Status = "active"
	// StatusRevoked marks an explicit logout. Terminal.
	StatusRevoked Status = "revoked"
	// StatusInvalidated marks a forced termination, e.g. after a credential
	// change. Terminal.
	StatusInvalidated Status = "invalidated"
)

// MetadataRotatedFrom is the metadata key carrying the previous session ID
// after a rotation. It is the one key RegenerateSession does not copy
// forward from the old session.
const MetadataRotatedFrom = "rotated_from"

// rememberMeDuration is the absolute ceiling applied instead of the
// configured absolute timeout when the user asks to stay signed in.
const rememberMeDuration = 30 * 24 * time.Hour

// Session is a server-side session record. LastAccessedAt and ExpiresAt are
// mutated only by Touch; Status only by Revoke and Invalidate. A session is
// never resurrected once deleted from its store.
type Session struct {
	// ID is an opaque random token generated at creation.
	ID     string
	UserID uuid.UUID
	Status Status

	CreatedAt      time.Time
	LastAccessedAt time.Time
	// ExpiresAt is the idle clock, advanced by Touch.
	ExpiresAt time.Time
	// AbsoluteExpiresAt is the hard ceiling fixed at creation.
	AbsoluteExpiresAt time.Time

	IPAddress  string
	DeviceInfo *useragent.DeviceInfo
	RememberMe bool
	Metadata   map[string]string
}

// newSession builds an Active session with both clocks set from the config.
// RememberMe extends only the absolute ceiling; the idle clock is never
// affected. The absolute clock is computed here, once — it is not a later
// mutation.
func newSession(id string, userID uuid.UUID, cfg Config, rememberMe bool) Session {
	now := time.Now()

	absolute := now.Add(cfg.AbsoluteTimeout)
	if rememberMe {
		absolute = now.Add(rememberMeDuration)
	}

	return Session{
		ID:                id,
		UserID:            userID,
		Status:            StatusActive,
		CreatedAt:         now,
		LastAccessedAt:    now,
		ExpiresAt:         now.Add(cfg.IdleTimeout),
		AbsoluteExpiresAt: absolute,
		RememberMe:        rememberMe,
		Metadata:          make(map[string]string),
	}
}

// IsValid reports whether the session is Active and neither clock has
// lapsed.
func (s *Session) IsValid() bool {
	return s.Status == StatusActive && !s.IsExpired()
}

// IsExpired reports whether either the idle or the absolute clock has
// lapsed. Expiry is purely clock-derived; an expired record can still carry
// StatusActive until it is lazily deleted.
func (s *Session) IsExpired() bool {
	now := time.Now()
	return now.After(s.ExpiresAt) || now.After(s.AbsoluteExpiresAt)
}

// Touch records activity: it advances the idle clock by the given timeout
// and updates LastAccessedAt. The absolute ceiling is untouched, so repeated
// touches can never extend a session past AbsoluteExpiresAt.
func (s *Session) Touch(idleTimeout time.Duration) {
	now := time.Now()
	s.LastAccessedAt = now
	s.ExpiresAt = now.Add(idleTimeout)
}

// Revoke transitions the session to the terminal Revoked state.
func (s *Session) Revoke() {
	s.Status = StatusRevoked
}

// Invalidate transitions the session to the terminal Invalidated state.
func (s *Session) Invalidate() {
	s.Status = StatusInvalidated
}

// TimeUntilExpiry returns the smaller of the two remaining clock durations.
// It is negative when the session has already expired.
func (s *Session) TimeUntilExpiry() time.Duration {
	now := time.Now()
	idle := s.ExpiresAt.Sub(now)
	absolute := s.AbsoluteExpiresAt.Sub(now)
	if idle < absolute {
		return idle
	}
	return absolute
}

// clone returns a deep copy so store implementations can hand out value
// copies without sharing the metadata map or device info.
func (s *Session) clone() Session {
	out := *s

	if s.Metadata != nil {
		out.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			out.Metadata[k] = v
		}
	}

	if s.DeviceInfo != nil {
		device := *s.DeviceInfo
		out.DeviceInfo = &device
	}

	return out
}
