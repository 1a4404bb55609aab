// Package cmd implements the apwire subcommands. Each Run* function is a
// one-shot: join the device's access point, do the work, release the bind.
package cmd

import (
	"context"
	"fmt"
	"time"

	"apwire.dev/apwire/internal/auth"
	"apwire.dev/apwire/internal/config"
	"apwire.dev/apwire/internal/device"
	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/netbind"
	"apwire.dev/apwire/internal/transport"
)

// opTimeout bounds a whole connect-login-call sequence.
const opTimeout = 60 * time.Second

// app wires the full stack: config, binder, transports, authenticator,
// device client.
type app struct {
	cfg    *config.Config
	binder *netbind.Binder
	bound  *transport.Bound
	pooled *transport.Pooled
	authn  *auth.Authenticator
	dev    *device.Client
}

// binderSource feeds the binder's live interface to the transports.
type binderSource struct {
	binder *netbind.Binder
}

func (s binderSource) BoundInterface() (string, bool) {
	bn, ok := s.binder.Current()
	if !ok {
		return "", false
	}
	return bn.Interface(), true
}

func newApp(configFile string) (*app, error) {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logging.SetDefault(logging.New(logging.Config{Level: parseLevel(cfg.LogLevel)}))

	assoc := netbind.NewNMCLIAssociator(&netbind.RealCommandExecutor{}, logging.WithComponent("nmcli"))
	binder := netbind.New(
		assoc,
		netbind.NewNetlinker(),
		netbind.NewProcessBinder(),
		netbind.NewLossWatcher(),
	)

	src := binderSource{binder: binder}
	bound := transport.NewBound(src)
	authn := auth.New(bound, bound)
	pooled := transport.NewPooled(src, authn)
	fallback := transport.NewFallback(pooled, bound, logging.WithComponent("transport"))

	return &app{
		cfg:    cfg,
		binder: binder,
		bound:  bound,
		pooled: pooled,
		authn:  authn,
		dev:    device.New(fallback, authn),
	}, nil
}

func parseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

// connect joins the configured access point and waits out the settle delay.
func (a *app) connect(ctx context.Context) error {
	_, err := a.binder.Request(ctx, a.cfg.WiFi.SSID, a.cfg.WiFi.Password, a.cfg.WiFi.WholeProcess)
	if err != nil {
		return fmt.Errorf("join %q: %w", a.cfg.WiFi.SSID, err)
	}
	return nil
}

// login authenticates against the device's web UI.
func (a *app) login(ctx context.Context) error {
	_, err := a.authn.Login(ctx, a.cfg.BaseURL(), a.cfg.Login.Username, a.cfg.Login.Password)
	return err
}

// close releases everything the one-shot acquired.
func (a *app) close() {
	a.pooled.CloseIdle()
	a.authn.Clear()
	a.binder.Unbind()
}

// withSession runs fn with a connected, authenticated app.
func withSession(configFile string, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(configFile)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := a.connect(ctx); err != nil {
		return err
	}
	if err := a.login(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

// withNetwork runs fn connected but without logging in. Diagnostics and
// scans work against an unauthenticated device.
func withNetwork(configFile string, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(configFile)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if err := a.connect(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}
