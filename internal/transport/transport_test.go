package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unconstrained is a Source with no device binding, for loopback tests.
var unconstrained = SourceFunc(func() (string, bool) { return "", true })

// unbound is a Source with no live network.
var unbound = SourceFunc(func() (string, bool) { return "", false })

func TestDoFailsFastWhenNotBound(t *testing.T) {
	b := NewBound(unbound)
	_, err := b.Do(context.Background(), NewGet("http://192.168.4.1/", nil))
	require.Error(t, err)

	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotBound, te.Kind)
}

func TestGetWithHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.Header.Get("X-Probe"))
		w.Header().Set("X-Resp", "yes")
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	b := NewBound(unconstrained)
	headers := http.Header{}
	headers.Set("X-Probe", "1")

	resp, err := b.Do(context.Background(), NewGet(srv.URL, headers))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, "yes", resp.Headers.Get("X-Resp"))
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "on", body["state"])
		io.WriteString(w, `{"success": true}`)
	}))
	defer srv.Close()

	req, err := NewJSONPost(srv.URL, map[string]string{"state": "on"}, nil)
	require.NoError(t, err)

	resp, err := NewBound(unconstrained).Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestPostForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "admin", r.PostForm.Get("username"))
		assert.Equal(t, "p@ss w&rd", r.PostForm.Get("password"))
	}))
	defer srv.Close()

	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "p@ss w&rd")

	_, err := NewBound(unconstrained).Do(context.Background(), NewFormPost(srv.URL, form))
	require.NoError(t, err)
}

func TestFormBodyRoundTrip(t *testing.T) {
	form := url.Values{}
	form.Set("username", "admin")
	form.Set("password", "a&b=c d")
	form.Set("_token", "abc123")

	req := NewFormPost("http://192.168.4.1/login", form)
	parsed, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	assert.Equal(t, form, parsed)
}

func TestPostMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "led", r.PostFormValue("name"))
	}))
	defer srv.Close()

	req, err := NewMultipartPost(srv.URL, map[string]string{"name": "led"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.Headers.Get("Content-Type"), "multipart/form-data"))

	_, err = NewBound(unconstrained).Do(context.Background(), req)
	require.NoError(t, err)
}

func TestRedirectPolicyPerCall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "xyz"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("/home", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "home")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	b := NewBound(unconstrained)

	// Redirects disabled: the 302 and its Set-Cookie are observable.
	req := NewGet(srv.URL+"/login", nil)
	req.DisableRedirects = true
	resp, err := b.Do(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Headers.Get("Set-Cookie"), "session_id=xyz")

	// Default: redirects are followed.
	resp, err = b.Do(context.Background(), NewGet(srv.URL+"/login", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "home", string(resp.Body))
}

func TestConnectionRefusedNormalized(t *testing.T) {
	// Grab a port that nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead := srv.URL
	srv.Close()

	_, err := NewBound(unconstrained).Do(context.Background(), NewGet(dead, nil))
	require.Error(t, err)

	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConnectFailed, te.Kind)
	assert.NotEmpty(t, te.Cause)
}
