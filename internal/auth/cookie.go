package auth

import (
	"net/http"
	"strings"
)

// sessionPrefixes are cookie names that clearly denote a login session,
// checked before any fallback.
var sessionPrefixes = []string{
	"session_id=",
	"PHPSESSID=",
	"sessionid=",
	"SESSION=",
}

// ExtractSessionCookie picks the session cookie from the response headers.
// Preference order: a known session-like name, then any name containing
// "session" case-insensitively, then the first cookie present. The returned
// token is only the name=value segment, everything before the first ';'.
func ExtractSessionCookie(headers http.Header) (string, bool) {
	cookies := headers.Values("Set-Cookie")
	if len(cookies) == 0 {
		return "", false
	}

	for _, raw := range cookies {
		for _, prefix := range sessionPrefixes {
			if strings.HasPrefix(raw, prefix) {
				return cookieToken(raw), true
			}
		}
	}

	for _, raw := range cookies {
		name := raw
		if i := strings.Index(raw, "="); i >= 0 {
			name = raw[:i]
		}
		if strings.Contains(strings.ToLower(name), "session") {
			return cookieToken(raw), true
		}
	}

	return cookieToken(cookies[0]), true
}

// cookieToken cuts a Set-Cookie value down to its name=value segment.
func cookieToken(raw string) string {
	if i := strings.Index(raw, ";"); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}
