// Package auth performs the device's cookie-session login: fetch the login
// page, scavenge the CSRF token, POST credentials, and capture the session
// cookie for replay.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/metrics"
	"apwire.dev/apwire/internal/transport"
)

var (
	// ErrPageUnreachable: the login page could not be fetched.
	ErrPageUnreachable = errors.New("login page unreachable")

	// ErrCredentialsRejected: the device turned the credentials down.
	ErrCredentialsRejected = errors.New("credentials rejected")

	// ErrNoSession: an authenticated session was required but absent.
	ErrNoSession = errors.New("no session")
)

// State tracks the login flow.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingLoginPage
	StateAwaitingLoginSubmit
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingLoginPage:
		return "awaiting_login_page"
	case StateAwaitingLoginSubmit:
		return "awaiting_login_submit"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session holds what authenticated requests need. Token may be empty when
// the device was accepted on a bare 302; it must only ever be replayed
// against BaseURL.
type Session struct {
	BaseURL string
	Token   string
}

// Prober gates the login flow on raw TCP reachability of the device.
type Prober interface {
	RawConnect(ctx context.Context, host string, port int, timeout time.Duration) bool
}

// Authenticator runs the login state machine over a bound transport.
type Authenticator struct {
	tr       transport.Transport
	prober   Prober
	logger   *logging.Logger
	matchers []TokenMatcher

	mu      sync.RWMutex
	state   State
	session *Session
}

// Option configures the Authenticator.
type Option func(*Authenticator)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(a *Authenticator) { a.logger = l }
}

// WithMatchers overrides the CSRF matcher chain.
func WithMatchers(m []TokenMatcher) Option {
	return func(a *Authenticator) { a.matchers = m }
}

// New creates an Authenticator. prober may be nil to skip the reachability
// gate (tests do this; production wires the bound transport's RawConnect).
func New(tr transport.Transport, prober Prober, opts ...Option) *Authenticator {
	a := &Authenticator{
		tr:       tr,
		prober:   prober,
		logger:   logging.WithComponent("auth"),
		matchers: DefaultMatchers(),
		state:    StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns the current flow state.
func (a *Authenticator) State() State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// Session returns the live session, if authenticated.
func (a *Authenticator) Session() (*Session, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.state != StateAuthenticated || a.session == nil {
		return nil, false
	}
	return a.session, true
}

// SessionCookie implements transport.CookieSource. The returned host scopes
// the cookie to the base URL the session was created against; it is never
// replayed anywhere else.
func (a *Authenticator) SessionCookie() (string, string, bool) {
	s, ok := a.Session()
	if !ok || s.Token == "" {
		return "", "", false
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}
	return s.Token, u.Host, true
}

// Clear drops the session, e.g. on disconnect. Idempotent.
func (a *Authenticator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = nil
	a.state = StateUnauthenticated
}

func (a *Authenticator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Login runs the full handshake against baseURL. Failure at any step is
// terminal for this attempt; the caller retries by calling Login again.
func (a *Authenticator) Login(ctx context.Context, baseURL, username, password string) (*Session, error) {
	fail := func(err error) (*Session, error) {
		a.setState(StateFailed)
		metrics.Get().Logins.WithLabelValues("error").Inc()
		return nil, err
	}

	host, port, err := splitBase(baseURL)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrPageUnreachable, err))
	}

	// Reachability gate: do not even fetch the login page if the device's
	// port is closed.
	if a.prober != nil && !a.prober.RawConnect(ctx, host, port, 2*time.Second) {
		a.logger.Warn("device unreachable, skipping login", "host", host, "port", port)
		return fail(fmt.Errorf("%w: tcp probe to %s:%d failed", ErrPageUnreachable, host, port))
	}

	a.setState(StateAwaitingLoginPage)
	page, err := a.tr.Do(ctx, transport.NewGet(baseURL+"/login", nil))
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrPageUnreachable, err))
	}
	if page.StatusCode != http.StatusOK {
		return fail(fmt.Errorf("%w: status %d", ErrPageUnreachable, page.StatusCode))
	}

	token, matcher, found := ExtractToken(string(page.Body), a.matchers)
	if found {
		a.logger.Debug("csrf token extracted", "matcher", matcher)
	} else {
		a.logger.Debug("no csrf token on login page, proceeding without one")
	}

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	if found {
		form.Set("_token", token)
	}

	a.setState(StateAwaitingLoginSubmit)
	req := transport.NewFormPost(baseURL+"/login", form)
	req.DisableRedirects = true

	resp, err := a.tr.Do(ctx, req)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrPageUnreachable, err))
	}

	cookie, ok := a.checkLoginSuccess(resp)
	if !ok {
		metrics.Get().Logins.WithLabelValues("rejected").Inc()
		a.setState(StateFailed)
		return nil, ErrCredentialsRejected
	}

	session := &Session{BaseURL: baseURL, Token: cookie}
	a.mu.Lock()
	a.session = session
	a.state = StateAuthenticated
	a.mu.Unlock()

	metrics.Get().Logins.WithLabelValues("ok").Inc()
	a.logger.Info("authenticated", "base_url", baseURL, "has_cookie", cookie != "")
	return session, nil
}

// checkLoginSuccess classifies the credential POST response.
//
// A bare 302 with no cookie still counts as success. That mirrors the
// device firmware's actual behavior, but it is a weak signal and can mask
// real auth failures, so it is logged loudly rather than silently hardened.
func (a *Authenticator) checkLoginSuccess(resp *transport.Response) (string, bool) {
	switch {
	case resp.StatusCode == http.StatusFound:
		cookie, found := ExtractSessionCookie(resp.Headers)
		if !found {
			a.logger.Warn("login accepted on bare 302 without session cookie (weak signal)")
			return "", true
		}
		return cookie, true

	case resp.StatusCode == http.StatusOK:
		if cookie, found := ExtractSessionCookie(resp.Headers); found {
			return cookie, true
		}
		body := string(resp.Body)
		if containsLoginMarker(body) {
			a.logger.Info("login form returned again, credentials rejected")
			return "", false
		}
		return "", false

	default:
		a.logger.Info("unexpected login response", "status", resp.StatusCode)
		return "", false
	}
}

// containsLoginMarker detects the login form being served back.
func containsLoginMarker(body string) bool {
	lower := strings.ToLower(body)
	return strings.Contains(lower, "<form") || strings.Contains(lower, "login")
}

func splitBase(baseURL string) (string, int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", 0, err
	}
	host := u.Hostname()
	if host == "" {
		return "", 0, fmt.Errorf("no host in %q", baseURL)
	}
	port := 80
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil {
			return "", 0, err
		}
	}
	return host, port, nil
}
