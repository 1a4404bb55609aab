package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedTransport returns canned results in order.
type scriptedTransport struct {
	calls int
	resp  *Response
	err   error
}

func (s *scriptedTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	s.calls++
	return s.resp, s.err
}

func TestFallbackOnConnectFailure(t *testing.T) {
	primary := &scriptedTransport{err: &Error{Kind: KindConnectFailed, Cause: "connection refused"}}
	secondary := &scriptedTransport{resp: &Response{StatusCode: 200, Body: []byte("ok")}}

	f := NewFallback(primary, secondary, nil)
	resp, err := f.Do(context.Background(), NewGet("http://192.168.4.1/api/system-status", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackOnTimeout(t *testing.T) {
	primary := &scriptedTransport{err: &Error{Kind: KindTimeout, Cause: "deadline exceeded"}}
	secondary := &scriptedTransport{resp: &Response{StatusCode: 200}}

	f := NewFallback(primary, secondary, nil)
	_, err := f.Do(context.Background(), NewGet("http://192.168.4.1/", nil))
	require.NoError(t, err)
	assert.Equal(t, 1, secondary.calls)
}

func TestNoFallbackOnHTTPError(t *testing.T) {
	// A 500 is an application answer, not a transport failure.
	primary := &scriptedTransport{resp: &Response{StatusCode: 500}}
	secondary := &scriptedTransport{}

	f := NewFallback(primary, secondary, nil)
	resp, err := f.Do(context.Background(), NewGet("http://192.168.4.1/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, 0, secondary.calls)
}

func TestNoFallbackWhenNotBound(t *testing.T) {
	primary := &scriptedTransport{err: ErrNotBound}
	secondary := &scriptedTransport{}

	f := NewFallback(primary, secondary, nil)
	_, err := f.Do(context.Background(), NewGet("http://192.168.4.1/", nil))
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}

func TestNoFallbackOnMalformed(t *testing.T) {
	primary := &scriptedTransport{err: &Error{Kind: KindMalformed, Cause: "bad url"}}
	secondary := &scriptedTransport{}

	f := NewFallback(primary, secondary, nil)
	_, err := f.Do(context.Background(), NewGet("://", nil))
	require.Error(t, err)
	assert.Equal(t, 0, secondary.calls)
}

func TestPooledInjectsSessionCookie(t *testing.T) {
	var seenCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenCookie = r.Header.Get("Cookie")
		io.WriteString(w, "{}")
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	cookies := CookieSourceFunc(func() (string, string, bool) { return "PHPSESSID=xyz", host, true })
	p := NewPooled(unconstrained, cookies)
	defer p.CloseIdle()

	_, err := p.Do(context.Background(), NewGet(srv.URL+"/api/system-status", nil))
	require.NoError(t, err)
	assert.Equal(t, "PHPSESSID=xyz", seenCookie)
}

func TestPooledCookieStaysOnSessionHost(t *testing.T) {
	var deviceCookie string
	device := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deviceCookie = r.Header.Get("Cookie")
		io.WriteString(w, "{}")
	}))
	defer device.Close()

	var foreignCookie string
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		foreignCookie = r.Header.Get("Cookie")
		io.WriteString(w, "{}")
	}))
	defer foreign.Close()

	deviceHost := strings.TrimPrefix(device.URL, "http://")
	cookies := CookieSourceFunc(func() (string, string, bool) {
		return "PHPSESSID=xyz", deviceHost, true
	})
	p := NewPooled(unconstrained, cookies)
	defer p.CloseIdle()

	_, err := p.Do(context.Background(), NewGet(device.URL+"/api/system-status", nil))
	require.NoError(t, err)
	assert.Equal(t, "PHPSESSID=xyz", deviceCookie)

	_, err = p.Do(context.Background(), NewGet(foreign.URL+"/api/system-status", nil))
	require.NoError(t, err)
	assert.Empty(t, foreignCookie, "session cookie must not leave its host")
}

func TestPooledFailsFastWhenNotBound(t *testing.T) {
	p := NewPooled(unbound, nil)
	_, err := p.Do(context.Background(), NewGet("http://192.168.4.1/", nil))
	te, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindNotBound, te.Kind)
}
