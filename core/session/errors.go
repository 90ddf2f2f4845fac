package session

import "errors"

var (
	// ErrSessionNotFound is returned by Store.Update when the session does
	// not exist. Reads never return it; an absent session is a nil result.
	ErrSessionNotFound = errors.New("session not found")
	// ErrIDGeneration is returned when generating a session identifier fails.
	ErrIDGeneration = errors.New("failed to generate session id")
	// ErrStoreUnavailable wraps backend I/O failures surfaced by store
	// implementations. The manager never retries internally; retry policy
	// belongs to the caller.
	ErrStoreUnavailable = errors.New("session store unavailable")
)
