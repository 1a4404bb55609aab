package transport

import (
	"context"
	"net"
	"net/http"
	"time"

	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/metrics"
)

// CookieSource supplies the session cookie to replay on pooled requests,
// together with the host the session was created against. The cookie must
// never be sent to any other host.
type CookieSource interface {
	SessionCookie() (cookie, host string, ok bool)
}

// CookieSourceFunc adapts a function to CookieSource.
type CookieSourceFunc func() (string, string, bool)

// SessionCookie implements CookieSource.
func (f CookieSourceFunc) SessionCookie() (string, string, bool) { return f() }

// Pooled fronts a shared, keep-alive http.Client whose dials still go
// through the bound interface. A RoundTripper hook injects the session
// cookie on every request, so callers never handle auth headers themselves.
type Pooled struct {
	src    Source
	client *http.Client
	logger *logging.Logger
}

// NewPooled creates the pooled transport. cookies may be nil when no session
// exists yet.
func NewPooled(src Source, cookies CookieSource, opts ...PooledOption) *Pooled {
	p := &Pooled{
		src:    src,
		logger: logging.WithComponent("transport"),
	}

	base := &http.Transport{
		// Resolve the bound interface at dial time, not construction time:
		// the pool outlives individual bind/unbind cycles.
		DialContext: func(ctx context.Context, network, address string) (net.Conn, error) {
			ifname, ok := src.BoundInterface()
			if !ok {
				return nil, ErrNotBound
			}
			d := &net.Dialer{Timeout: 10 * time.Second}
			if ifname != "" {
				d.Control = bindToDeviceControl(ifname)
			}
			return d.DialContext(ctx, network, address)
		},
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}

	p.client = &http.Client{
		Timeout:   DefaultRequestTimeout,
		Transport: &cookieInjector{base: base, cookies: cookies},
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PooledOption configures a Pooled transport.
type PooledOption func(*Pooled)

// WithPooledLogger sets the logger.
func WithPooledLogger(l *logging.Logger) PooledOption {
	return func(p *Pooled) { p.logger = l }
}

// WithPooledTimeout sets the per-exchange timeout.
func WithPooledTimeout(d time.Duration) PooledOption {
	return func(p *Pooled) { p.client.Timeout = d }
}

// Do implements Transport.
func (p *Pooled) Do(ctx context.Context, req *Request) (*Response, error) {
	if _, ok := p.src.BoundInterface(); !ok {
		metrics.Get().HTTPRequests.WithLabelValues("pooled", "not_bound").Inc()
		return nil, ErrNotBound
	}

	resp, err := execute(ctx, p.client, req, p.logger)
	if err != nil {
		metrics.Get().HTTPRequests.WithLabelValues("pooled", "error").Inc()
		return nil, err
	}
	metrics.Get().HTTPRequests.WithLabelValues("pooled", "ok").Inc()
	return resp, nil
}

// CloseIdle drops pooled connections, e.g. after unbind.
func (p *Pooled) CloseIdle() {
	p.client.CloseIdleConnections()
}

// cookieInjector adds the session cookie to outgoing requests unless the
// caller already set one explicitly. The cookie only goes to the host the
// session belongs to; requests elsewhere leave without it.
type cookieInjector struct {
	base    http.RoundTripper
	cookies CookieSource
}

func (c *cookieInjector) RoundTrip(req *http.Request) (*http.Response, error) {
	if c.cookies != nil && req.Header.Get("Cookie") == "" {
		if cookie, host, ok := c.cookies.SessionCookie(); ok && req.URL.Host == host {
			req = req.Clone(req.Context())
			req.Header.Set("Cookie", cookie)
		}
	}
	return c.base.RoundTrip(req)
}
