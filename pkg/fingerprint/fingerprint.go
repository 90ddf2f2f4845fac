package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/authkit/pkg/clientip"
)

const (
	version = "v1:"
	// hashLen truncates SHA-256 to 128 bits: plenty for device
	// identification at half the storage.
	hashLen = 16
	// encodedLen is len(version) + hex length of the truncated hash.
	encodedLen = 35
)

var (
	// ErrInvalidFingerprint indicates the stored fingerprint has an invalid format.
	ErrInvalidFingerprint = errors.New("invalid fingerprint format")
	// ErrMismatch indicates the fingerprint does not match the current
	// request: either a hijacking attempt or a legitimate client change.
	ErrMismatch = errors.New("fingerprint mismatch")
)

// stableHeaders identify browser/client type by presence, not value.
// Volatile headers (cookies, cache directives) would cause false mismatches.
var stableHeaders = []string{
	"accept", "accept-encoding", "accept-language", "connection",
	"sec-fetch-dest", "sec-fetch-mode", "sec-fetch-site",
	"upgrade-insecure-requests", "user-agent",
}

type config struct {
	withIP            bool
	withUserAgent     bool
	withAcceptHeaders bool
	withHeaderSet     bool
}

// Option adjusts which request signals feed the fingerprint.
type Option func(*config)

// WithIP mixes the client IP into the fingerprint. Mobile networks, VPNs,
// and rotating proxies change IPs routinely, so expect false mismatches;
// reserve this for flows that can re-authenticate gracefully.
func WithIP() Option {
	return func(c *config) { c.withIP = true }
}

// WithoutUserAgent drops the User-Agent value from the fingerprint.
func WithoutUserAgent() Option {
	return func(c *config) { c.withUserAgent = false }
}

// WithoutAcceptHeaders drops the Accept-* values, which shift with content
// negotiation and browser extensions.
func WithoutAcceptHeaders() Option {
	return func(c *config) { c.withAcceptHeaders = false }
}

// WithoutHeaderSet drops the header-presence signal.
func WithoutHeaderSet() Option {
	return func(c *config) { c.withHeaderSet = false }
}

// Generate derives a stable device fingerprint from the request, returned as
// "v1:" plus 32 hex characters. By default it combines the User-Agent,
// Accept-* header values, and the set of stable headers the client sends;
// the IP address is excluded unless WithIP is given.
//
// Attach the result to a session at login, e.g. via
// useragent.DeviceInfo.WithFingerprint or session metadata, and compare with
// Validate on later requests.
func Generate(r *http.Request, opts ...Option) string {
	cfg := config{withUserAgent: true, withAcceptHeaders: true, withHeaderSet: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var signals []string
	if cfg.withUserAgent {
		signals = append(signals, r.UserAgent())
	}
	if cfg.withAcceptHeaders {
		signals = append(signals,
			r.Header.Get("Accept"),
			r.Header.Get("Accept-Language"),
			r.Header.Get("Accept-Encoding"))
	}
	if cfg.withIP {
		signals = append(signals, clientip.GetIP(r))
	}
	if cfg.withHeaderSet {
		signals = append(signals, headerSet(r))
	}

	signals = slices.DeleteFunc(signals, func(s string) bool { return s == "" })

	// The delimiter keeps ["ab","c"] and ["a","bc"] from colliding.
	sum := sha256.Sum256([]byte(strings.Join(signals, "|")))
	return version + hex.EncodeToString(sum[:hashLen])
}

// Validate compares the current request against a stored fingerprint. The
// same options used at Generate time must be passed again. It returns nil on
// match, ErrMismatch on a well-formed mismatch, and ErrInvalidFingerprint
// when the stored value is not a fingerprint at all.
func Validate(r *http.Request, stored string, opts ...Option) error {
	if !strings.HasPrefix(stored, version) || len(stored) != encodedLen {
		return ErrInvalidFingerprint
	}
	if Generate(r, opts...) != stored {
		return ErrMismatch
	}
	return nil
}

// headerSet reduces the request to the sorted list of stable headers it
// carries. Browsers, mobile clients, and API tools send recognizably
// different sets even before values are considered.
func headerSet(r *http.Request) string {
	var present []string
	for name := range r.Header {
		lower := strings.ToLower(name)
		if slices.Contains(stableHeaders, lower) {
			present = append(present, lower)
		}
	}
	slices.Sort(present)
	return strings.Join(present, ",")
}
