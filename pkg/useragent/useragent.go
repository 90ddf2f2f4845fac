package useragent

import "strings"

// DeviceType is the coarse hardware class derived from a User-Agent string.
type DeviceType string

const (
	DeviceTypeMobile  DeviceType = "Mobile"
	DeviceTypeTablet  DeviceType = "Tablet"
	DeviceTypeDesktop DeviceType = "Desktop"
)

// DeviceInfo describes a client derived from its User-Agent string.
// OS and Browser are empty when the string matches no known pattern.
// Fingerprint is an optional client-supplied identifier attached by the
// caller; classification never sets it.
type DeviceInfo struct {
	UserAgent   string
	Type        DeviceType
	OS          string
	Browser     string
	Fingerprint string
}

// WithFingerprint returns a copy of the DeviceInfo with the client
// fingerprint attached.
func (d DeviceInfo) WithFingerprint(fingerprint string) DeviceInfo {
	d.Fingerprint = fingerprint
	return d
}

// Classify derives device type, operating system, and browser from a raw
// User-Agent string using ordered substring heuristics. It is a pure
// function with no dependency on any HTTP framework's request type.
//
// Ordering matters: mobile and tablet markers are checked before defaulting
// to desktop, Android before the generic "Linux" token it always carries,
// and Edge before Chrome before Safari because Chromium-based browsers
// advertise all three tokens.
func Classify(userAgent string) DeviceInfo {
	ua := strings.ToLower(userAgent)

	info := DeviceInfo{
		UserAgent: userAgent,
		Type:      DeviceTypeDesktop,
	}

	switch {
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		info.Type = DeviceTypeMobile
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		info.Type = DeviceTypeTablet
	}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macos"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	switch {
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	}

	return info
}
