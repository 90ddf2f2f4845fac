// Package session manages the lifecycle of server-side session records:
// creation with per-user concurrency limits, dual-clock expiry, activity
// touches, revocation, fixation-resistant rotation, and cleanup.
//
// The package implements policy and state, not protocol: an HTTP/auth layer
// extracts the session identifier from a request and calls into the Manager.
//
// # Dual-clock expiry
//
// Every session carries two clocks. The idle clock (ExpiresAt) restarts on
// each Touch; the absolute clock (AbsoluteExpiresAt) is fixed at creation
// and caps total lifetime no matter how active the session is. A session is
// valid only while Active and within both clocks. Expiry is computed at
// read time, never written as a status: an expired record lingers until
// ValidateSession or the periodic sweep deletes it.
//
// # Basic usage
//
//	store := session.NewInMemoryStore()
//	manager := session.NewManager(store, session.DefaultConfig())
//
//	sess, err := manager.CreateSession(ctx, userID, clientIP, userAgent, false)
//	if err != nil {
//		return err
//	}
//	w.Header().Set("Set-Cookie", manager.BuildCookie(sess))
//
// On each authenticated request:
//
//	id, ok := session.SessionIDFromCookie(r.Header.Get("Cookie"), manager.Config().CookieName)
//	if ok {
//		sess, err := manager.ValidateSession(ctx, id)
//		// sess == nil means absent, revoked, or expired
//	}
//
// # Fixation defense
//
// Rotate the identifier on privilege changes (login, role elevation):
//
//	fresh, err := manager.RegenerateSession(ctx, oldID, clientIP, userAgent)
//
// The new session keeps RememberMe and metadata but gets a fresh identifier
// and fresh clocks; the old record is deleted so a pre-set identifier is
// worthless to an attacker.
//
// # Stores
//
// The Manager is written against the Store interface. InMemoryStore is the
// in-core reference implementation; the storage/redis, storage/postgres,
// and storage/mongo packages provide shared backends with the same
// contracts.
//
// # Concurrency cap
//
// The per-user session cap is best-effort: CreateSession reads the session
// list, computes an eviction set, then deletes, and this sequence is not
// atomic across concurrent logins for the same user. A transient overshoot
// of the cap is possible and documented; serialize per-user login upstream
// if the cap must be strict.
package session
