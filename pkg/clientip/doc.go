// Package clientip extracts the real client IP address from HTTP requests
// behind proxies, load balancers, and CDNs.
//
// Headers are checked in priority order: CF-Connecting-IP (Cloudflare),
// DO-Connecting-IP (DigitalOcean), X-Forwarded-For (leftmost entry),
// X-Real-IP (nginx), then RemoteAddr for direct connections. Every candidate
// is parsed and normalized; malformed values and the unspecified address
// 0.0.0.0 are skipped.
//
// Typical use is feeding the IP into session creation and security logging:
//
//	sess, err := manager.CreateSession(ctx, userID, clientip.GetIP(r), r.UserAgent(), rememberMe)
//
// GetIP never panics and always returns a non-empty string for a request
// with a RemoteAddr, falling back to the raw RemoteAddr when no candidate
// validates.
package clientip
