package session

import (
	"math"
	"strconv"
	"strings"
)

// BuildCookie renders the Set-Cookie value for a session:
//
//	<name>=<id>; Path=/; Max-Age=<secs>[; Secure][; HttpOnly]; SameSite=<v>
//
// Max-Age is the smaller of the two remaining clock durations, rounded up
// to whole seconds and clamped to zero when already negative.
func (m *Manager) BuildCookie(sess *Session) string {
	maxAge := int64(math.Ceil(sess.TimeUntilExpiry().Seconds()))
	if maxAge < 0 {
		maxAge = 0
	}
	return buildCookie(m.config, sess.ID, maxAge)
}

// BuildLogoutCookie renders the clearing variant: empty value, Max-Age=0,
// same flags as the session cookie so browsers match and drop it.
func (m *Manager) BuildLogoutCookie() string {
	return buildCookie(m.config, "", 0)
}

func buildCookie(cfg Config, value string, maxAge int64) string {
	var sb strings.Builder

	sb.WriteString(cfg.CookieName)
	sb.WriteByte('=')
	sb.WriteString(value)
	sb.WriteString("; Path=/; Max-Age=")
	sb.WriteString(strconv.FormatInt(maxAge, 10))

	if cfg.CookieSecure {
		sb.WriteString("; Secure")
	}
	if cfg.CookieHTTPOnly {
		sb.WriteString("; HttpOnly")
	}
	sb.WriteString("; SameSite=")
	sb.WriteString(string(cfg.CookieSameSite))

	return sb.String()
}

// SessionIDFromCookie extracts the session identifier from a raw Cookie
// header: segments are split on ';', trimmed, and the value of the first
// segment whose name matches cookieName is returned.
func SessionIDFromCookie(header, cookieName string) (string, bool) {
	for _, segment := range strings.Split(header, ";") {
		segment = strings.TrimSpace(segment)
		name, value, found := strings.Cut(segment, "=")
		if !found {
			continue
		}
		if strings.TrimSpace(name) == cookieName {
			return strings.TrimSpace(value), true
		}
	}
	return "", false
}
