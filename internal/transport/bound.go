package transport

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/metrics"
)

// DefaultRequestTimeout bounds a full exchange on the AP subnet. The device
// is one hop away; anything slower than this is effectively down.
const DefaultRequestTimeout = 15 * time.Second

// Bound executes each exchange over a fresh connection dialed through the
// bound interface. It is the raw, always-correct path; Pooled is the fast
// path layered above it.
type Bound struct {
	src     Source
	logger  *logging.Logger
	timeout time.Duration
}

// BoundOption configures a Bound transport.
type BoundOption func(*Bound)

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) BoundOption {
	return func(b *Bound) { b.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) BoundOption {
	return func(b *Bound) { b.logger = l }
}

// NewBound creates the raw bound transport.
func NewBound(src Source, opts ...BoundOption) *Bound {
	b := &Bound{
		src:     src,
		logger:  logging.WithComponent("transport"),
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// dialer returns a net.Dialer bound to the current interface, or ErrNotBound.
func (b *Bound) dialer(timeout time.Duration) (*net.Dialer, error) {
	ifname, ok := b.src.BoundInterface()
	if !ok {
		return nil, ErrNotBound
	}
	d := &net.Dialer{Timeout: timeout}
	if ifname != "" {
		d.Control = bindToDeviceControl(ifname)
	}
	return d, nil
}

// Do implements Transport. Every call fails fast when unbound and never
// leaks a raw platform error.
func (b *Bound) Do(ctx context.Context, req *Request) (*Response, error) {
	dialer, err := b.dialer(b.timeout)
	if err != nil {
		metrics.Get().HTTPRequests.WithLabelValues("bound", "not_bound").Inc()
		return nil, err
	}

	client := &http.Client{
		Timeout: b.timeout,
		Transport: &http.Transport{
			DialContext:       dialer.DialContext,
			DisableKeepAlives: true,
		},
	}

	resp, err := execute(ctx, client, req, b.logger)
	if err != nil {
		metrics.Get().HTTPRequests.WithLabelValues("bound", "error").Inc()
		return nil, err
	}
	metrics.Get().HTTPRequests.WithLabelValues("bound", "ok").Inc()
	return resp, nil
}

// execute runs one exchange on the given client, shared by Bound and Pooled.
func execute(ctx context.Context, client *http.Client, req *Request, logger *logging.Logger) (*Response, error) {
	if req == nil {
		return nil, &Error{Kind: KindMalformed, Cause: "nil request"}
	}

	exchangeID := uuid.NewString()
	logger.Debug("http exchange", "id", exchangeID, "method", req.Method, "url", req.URL)

	var bodyReader io.Reader
	if len(req.Body) > 0 {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Cause: "create request: " + err.Error()}
	}
	for k, vs := range req.Headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if req.DisableRedirects {
		client = redirectFrozen(client)
	}

	httpResp, err := client.Do(httpReq)
	if err != nil {
		te := Normalize(err)
		logger.Debug("http exchange failed", "id", exchangeID, "kind", te.Kind.String(), "cause", te.Cause)
		return nil, te
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Cause: "read body: " + err.Error()}
	}

	logger.Debug("http exchange done", "id", exchangeID, "status", httpResp.StatusCode, "bytes", len(body))
	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
		FetchedAt:  time.Now(),
	}, nil
}

// redirectFrozen returns a shallow copy of client that treats any 3xx as the
// final response. The copy shares the connection pool.
func redirectFrozen(client *http.Client) *http.Client {
	frozen := *client
	frozen.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &frozen
}
