package session

import (
	"fmt"
	"time"
)

// SameSite is the cookie SameSite attribute rendered into the wire format.
type SameSite string

const (
	SameSiteStrict SameSite = "Strict"
	SameSiteLax    SameSite = "Lax"
	SameSiteNone   SameSite = "None"
)

// UnmarshalText lets SameSite values be parsed from environment variables.
func (s *SameSite) UnmarshalText(text []byte) error {
	switch v := SameSite(text); v {
	case SameSiteStrict, SameSiteLax, SameSiteNone:
		*s = v
		return nil
	default:
		return fmt.Errorf("invalid SameSite value %q", text)
	}
}

// Config holds session lifecycle and cookie settings. Load it through
// core/config or start from DefaultConfig.
type Config struct {
	// IdleTimeout is the inactivity window; each Touch restarts it.
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	// AbsoluteTimeout caps total session lifetime regardless of activity.
	AbsoluteTimeout time.Duration `env:"SESSION_ABSOLUTE_TIMEOUT" envDefault:"24h"`
	// MaxConcurrentSessions caps valid sessions per user; the least recently
	// accessed sessions are evicted to make room.
	MaxConcurrentSessions int `env:"SESSION_MAX_CONCURRENT" envDefault:"5"`
	// SessionIDLength is the length of generated session identifiers.
	SessionIDLength int `env:"SESSION_ID_LENGTH" envDefault:"32"`

	CookieName     string   `env:"SESSION_COOKIE_NAME" envDefault:"app_session"`
	CookieSecure   bool     `env:"SESSION_COOKIE_SECURE" envDefault:"true"`
	CookieHTTPOnly bool     `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"Strict"`

	// TrackDevice enables User-Agent classification on session creation.
	TrackDevice bool `env:"SESSION_TRACK_DEVICE" envDefault:"true"`
	// TrackIP enables recording the client IP on session creation.
	TrackIP bool `env:"SESSION_TRACK_IP" envDefault:"true"`
}

// DefaultConfig returns the baseline session configuration.
func DefaultConfig() Config {
	return Config{
		IdleTimeout:           30 * time.Minute,
		AbsoluteTimeout:       24 * time.Hour,
		MaxConcurrentSessions: 5,
		SessionIDLength:       32,
		CookieName:            "app_session",
		CookieSecure:          true,
		CookieHTTPOnly:        true,
		CookieSameSite:        SameSiteStrict,
		TrackDevice:           true,
		TrackIP:               true,
	}
}
