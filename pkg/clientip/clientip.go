package clientip

import (
	"net"
	"net/http"
	"strings"
)

// proxyHeaders in priority order: CDN-set headers are most trustworthy,
// X-Forwarded-For is the common proxy convention, X-Real-IP the nginx one.
var proxyHeaders = [...]string{
	"CF-Connecting-IP",
	"DO-Connecting-IP",
	"X-Forwarded-For",
	"X-Real-IP",
}

// GetIP extracts the real client IP from the request, walking the known
// proxy headers in priority order before falling back to RemoteAddr. Every
// candidate is validated and normalized; 0.0.0.0 is rejected. When nothing
// validates, the raw RemoteAddr is returned so callers always get a
// non-empty string to log.
func GetIP(r *http.Request) string {
	for _, header := range proxyHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}

		// X-Forwarded-For may carry a chain "client, proxy1, proxy2"; the
		// leftmost entry is the original client.
		if header == "X-Forwarded-For" {
			value, _, _ = strings.Cut(value, ",")
		}

		if ip := normalize(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalize(host); ip != "" {
		return ip
	}

	return r.RemoteAddr
}

// normalize validates the candidate and returns its canonical form, or ""
// when it is not a usable client address.
func normalize(candidate string) string {
	ip := net.ParseIP(strings.TrimSpace(candidate))
	if ip == nil || ip.IsUnspecified() {
		return ""
	}
	return ip.String()
}
