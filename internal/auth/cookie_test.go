package auth

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func headersWith(cookies ...string) http.Header {
	h := http.Header{}
	for _, c := range cookies {
		h.Add("Set-Cookie", c)
	}
	return h
}

func TestExtractSessionCookie(t *testing.T) {
	tests := []struct {
		name    string
		cookies []string
		want    string
		found   bool
	}{
		{
			name:    "phpsessid with attributes",
			cookies: []string{"PHPSESSID=xyz; Path=/; HttpOnly"},
			want:    "PHPSESSID=xyz",
			found:   true,
		},
		{
			name:    "session_id",
			cookies: []string{"session_id=abc123; Max-Age=3600"},
			want:    "session_id=abc123",
			found:   true,
		},
		{
			name:    "prefers session-like over first",
			cookies: []string{"theme=dark; Path=/", "sessionid=deadbeef; Path=/"},
			want:    "sessionid=deadbeef",
			found:   true,
		},
		{
			name:    "case-insensitive session substring",
			cookies: []string{"theme=dark", "MySessionCookie=42; Path=/"},
			want:    "MySessionCookie=42",
			found:   true,
		},
		{
			name:    "falls back to first cookie",
			cookies: []string{"theme=dark; Path=/", "lang=en"},
			want:    "theme=dark",
			found:   true,
		},
		{
			name:    "no cookies",
			cookies: nil,
			found:   false,
		},
		{
			name:    "no semicolon",
			cookies: []string{"SESSION=raw"},
			want:    "SESSION=raw",
			found:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := ExtractSessionCookie(headersWith(tt.cookies...))
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

// The stored token is always the substring before the first ';', whatever
// the attribute tail looks like.
func TestCookieTokenAlwaysPrefix(t *testing.T) {
	raws := []string{
		"PHPSESSID=xyz; Path=/; HttpOnly; SameSite=Lax",
		"a=b;",
		"a=b",
		"weird=v;;;",
	}
	for _, raw := range raws {
		got := cookieToken(raw)
		assert.False(t, strings.Contains(got, ";"), "token %q contains ';'", got)
		assert.Equal(t, strings.TrimSpace(strings.SplitN(raw, ";", 2)[0]), got)
	}
}
