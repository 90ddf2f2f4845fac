// Package fingerprint derives stable device fingerprints from HTTP requests
// for session binding and hijack detection.
//
// A fingerprint is a version-prefixed truncated SHA-256 over stable request
// signals: the User-Agent, Accept-* header values, and the set of standard
// headers the client sends. The client IP is excluded by default because it
// changes routinely on mobile networks and VPNs; opt in with WithIP for
// high-security flows.
//
// Generate a fingerprint at login and store it with the session:
//
//	fp := fingerprint.Generate(r)
//	device := useragent.Classify(r.UserAgent()).WithFingerprint(fp)
//
// On later requests, compare with the same options:
//
//	if err := fingerprint.Validate(r, sess.DeviceInfo.Fingerprint); err != nil {
//		// ErrMismatch: treat as a possible hijack, force re-authentication
//	}
//
// A mismatch is a signal, not proof: browser updates and extension changes
// also shift fingerprints, so pair validation with a graceful
// re-authentication path rather than a hard ban.
package fingerprint
