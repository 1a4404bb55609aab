package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		matcher string
		found   bool
	}{
		{
			name:    "input name first",
			html:    `<form><input type="hidden" name="_token" value="tok1"></form>`,
			want:    "tok1",
			matcher: "input-name-first",
			found:   true,
		},
		{
			name:    "input value first",
			html:    `<form><input value="tok2" type="hidden" name="_token"></form>`,
			want:    "tok2",
			matcher: "input-value-first",
			found:   true,
		},
		{
			name:    "csrf_token input",
			html:    `<input name="csrf_token" value="tok3">`,
			want:    "tok3",
			matcher: "input-name-first",
			found:   true,
		},
		{
			name:    "generic json-ish key value",
			html:    `<script>var cfg = {"csrf_token": "tok4"};</script>`,
			want:    "tok4",
			matcher: "generic-key-value",
			found:   true,
		},
		{
			name:    "meta tag",
			html:    `<html><head><meta name="csrf-token" content="abc123"></head></html>`,
			want:    "abc123",
			matcher: "meta-tag",
			found:   true,
		},
		{
			name:    "meta tag reversed attributes",
			html:    `<head><meta content="abc123" name="csrf-token"></head>`,
			want:    "abc123",
			matcher: "meta-tag",
			found:   true,
		},
		{
			name:  "no token",
			html:  `<html><body><form><input name="username"></form></body></html>`,
			found: false,
		},
		{
			name:  "empty body",
			html:  "",
			found: false,
		},
	}

	matchers := DefaultMatchers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matcher, found := ExtractToken(tt.html, matchers)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
				assert.Equal(t, tt.matcher, matcher)
			}
		})
	}
}

func TestFirstMatcherWins(t *testing.T) {
	// Both an input token and a meta token exist; the input matcher runs first.
	html := `<meta name="csrf-token" content="meta-tok">` +
		`<input name="_token" value="input-tok">`

	got, matcher, found := ExtractToken(html, DefaultMatchers())
	assert.True(t, found)
	assert.Equal(t, "input-tok", got)
	assert.Equal(t, "input-name-first", matcher)
}
