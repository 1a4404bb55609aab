package netbind

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"apwire.dev/apwire/internal/clock"
	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/metrics"
)

const (
	// DefaultWaitTimeout bounds how long a bind request may take.
	DefaultWaitTimeout = 10 * time.Second

	// DefaultSettleDelay absorbs route propagation lag after the OS reports
	// the network available. HTTP before this elapses tends to race the
	// kernel's route update and fail spuriously.
	DefaultSettleDelay = 900 * time.Millisecond

	addrPollInterval = 200 * time.Millisecond
)

// Binder owns the single BoundNetwork handle.
type Binder struct {
	assoc   Associator
	nl      Netlinker
	proc    ProcessBinder
	watcher LossWatcher

	clk         clock.Clock
	logger      *logging.Logger
	settle      time.Duration
	waitTimeout time.Duration
	onLost      func(*BoundNetwork)

	mu            sync.Mutex
	current       *BoundNetwork
	procBound     bool
	boundSSID     string
	stopWatch     func()
	cancelPending context.CancelFunc
	pendingSeq    uint64
}

// Option configures the Binder.
type Option func(*Binder)

// WithClock sets the time source (tests use clock.MockClock).
func WithClock(c clock.Clock) Option {
	return func(b *Binder) { b.clk = c }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Binder) { b.logger = l }
}

// WithSettleDelay overrides the post-available settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(b *Binder) { b.settle = d }
}

// WithWaitTimeout overrides the bind timeout.
func WithWaitTimeout(d time.Duration) Option {
	return func(b *Binder) { b.waitTimeout = d }
}

// WithLossCallback registers a callback fired when the bound network is lost.
func WithLossCallback(fn func(*BoundNetwork)) Option {
	return func(b *Binder) { b.onLost = fn }
}

// New creates a Binder over the given OS primitives.
func New(assoc Associator, nl Netlinker, proc ProcessBinder, watcher LossWatcher, opts ...Option) *Binder {
	b := &Binder{
		assoc:       assoc,
		nl:          nl,
		proc:        proc,
		watcher:     watcher,
		clk:         &clock.RealClock{},
		logger:      logging.WithComponent("netbind"),
		settle:      DefaultSettleDelay,
		waitTimeout: DefaultWaitTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Request joins the given SSID and returns the bound network handle once it
// is usable for HTTP. Only one request may be pending at a time: a new call
// supersedes and cancels any in-flight one. If wholeProcess is set, the
// host's default route is moved onto the bound interface until Unbind.
func (b *Binder) Request(ctx context.Context, ssid, password string, wholeProcess bool) (*BoundNetwork, error) {
	b.mu.Lock()
	if b.cancelPending != nil {
		b.cancelPending()
	}
	if b.current != nil {
		// Single-network invariant: drop the old association first.
		b.unbindLocked()
	}
	ctx, cancel := context.WithTimeout(ctx, b.waitTimeout)
	b.cancelPending = cancel
	b.pendingSeq++
	seq := b.pendingSeq
	b.mu.Unlock()

	defer func() {
		cancel()
		b.mu.Lock()
		// Only clear the slot if a newer request has not taken it over.
		if b.pendingSeq == seq {
			b.cancelPending = nil
		}
		b.mu.Unlock()
	}()

	bn, err := b.bind(ctx, ssid, password, wholeProcess)
	if err != nil {
		metrics.Get().Binds.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Get().Binds.WithLabelValues("ok").Inc()
	return bn, nil
}

func (b *Binder) bind(ctx context.Context, ssid, password string, wholeProcess bool) (*BoundNetwork, error) {
	b.logger.Info("requesting network", "ssid", ssid, "whole_process", wholeProcess)

	ifname, err := b.assoc.Associate(ctx, ssid, password)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %s", ErrBindTimeout, ssid)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	addrs, err := b.waitForAddr(ctx, ifname)
	if err != nil {
		return nil, err
	}

	// Let kernel routing settle before anyone opens a socket.
	b.clk.Sleep(b.settle)

	gw, err := b.nl.GatewayFor(ifname)
	if err != nil || gw == nil {
		gw = deriveGateway(addrs)
	}

	bn := &BoundNetwork{
		ifname:  ifname,
		addrs:   addrs,
		gateway: gw,
		valid:   true,
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if ctx.Err() != nil {
		// A newer request or an Unbind superseded this one mid-flight.
		bn.invalidate()
		return nil, fmt.Errorf("%w: superseded", ErrBindTimeout)
	}

	if wholeProcess {
		if err := b.proc.Bind(ifname, gw); err != nil {
			b.logger.Warn("process-wide bind failed, falling back to per-socket binding",
				"interface", ifname, "error", err)
		} else {
			b.procBound = true
		}
	}

	if b.watcher != nil {
		stop, err := b.watcher.Watch(ifname, func() { b.networkLost(bn) })
		if err != nil {
			b.logger.Warn("loss watcher unavailable", "error", err)
		} else {
			b.stopWatch = stop
		}
	}

	b.current = bn
	b.boundSSID = ssid
	b.logger.Info("network bound", "interface", ifname, "gateway", gw.String(), "addrs", len(addrs))
	return bn, nil
}

// waitForAddr waits for the interface to carry at least one IPv4 address.
func (b *Binder) waitForAddr(ctx context.Context, ifname string) ([]net.IPNet, error) {
	ticker := time.NewTicker(addrPollInterval)
	defer ticker.Stop()

	for {
		addrs, err := b.nl.Addrs(ifname)
		if err == nil && len(addrs) > 0 {
			return addrs, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: no address on %s", ErrBindTimeout, ifname)
		case <-ticker.C:
		}
	}
}

func (b *Binder) networkLost(bn *BoundNetwork) {
	bn.invalidate()

	b.mu.Lock()
	var cb func(*BoundNetwork)
	if b.current == bn {
		b.logger.Warn("bound network lost", "interface", bn.Interface())
		if b.procBound {
			if err := b.proc.Release(); err != nil {
				b.logger.Warn("failed to release process bind", "error", err)
			}
			b.procBound = false
		}
		b.current = nil
		cb = b.onLost
	}
	b.mu.Unlock()

	if cb != nil {
		cb(bn)
	}
}

// Unbind releases the process-wide binding and invalidates the handle.
// Idempotent: always safe to call, even before any successful bind.
func (b *Binder) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancelPending != nil {
		b.cancelPending()
		b.cancelPending = nil
	}
	b.unbindLocked()
	metrics.Get().Unbinds.Inc()
}

func (b *Binder) unbindLocked() {
	if b.stopWatch != nil {
		b.stopWatch()
		b.stopWatch = nil
	}
	if b.procBound {
		if err := b.proc.Release(); err != nil {
			b.logger.Warn("failed to release process bind", "error", err)
		}
		b.procBound = false
	}
	if b.current != nil {
		b.current.invalidate()
		if err := b.assoc.Disassociate(b.boundSSID); err != nil {
			b.logger.Debug("disassociate failed", "ssid", b.boundSSID, "error", err)
		}
		b.logger.Info("network unbound", "interface", b.current.Interface())
		b.current = nil
		b.boundSSID = ""
	}
}

// Current returns the live bound network, if any.
func (b *Binder) Current() (*BoundNetwork, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || !b.current.Valid() {
		return nil, false
	}
	return b.current, true
}

// Gateway returns the bound network's gateway address, if bound.
func (b *Binder) Gateway() (net.IP, bool) {
	bn, ok := b.Current()
	if !ok {
		return nil, false
	}
	gw := bn.Gateway()
	return gw, gw != nil
}

// Capabilities introspects the bound network. Returns the zero value when
// unbound; it never fails loudly.
func (b *Binder) Capabilities() CapabilitySet {
	bn, ok := b.Current()
	if !ok {
		return CapabilitySet{}
	}
	up, err := b.nl.LinkUp(bn.Interface())
	if err != nil {
		up = false
	}
	return CapabilitySet{
		Transports:  []string{"wifi"},
		HasInternet: false, // the device AP has no upstream
		Validated:   up,
		Trusted:     true,
	}
}

// LinkInfo introspects the bound interface. Returns the zero value when
// unbound; it never fails loudly.
func (b *Binder) LinkInfo() LinkInfo {
	bn, ok := b.Current()
	if !ok {
		return LinkInfo{}
	}
	info := LinkInfo{Interface: bn.Interface()}
	for _, a := range bn.Addrs() {
		info.Addresses = append(info.Addresses, a.String())
	}
	if routes, err := b.nl.Routes(bn.Interface()); err == nil {
		info.Routes = routes
	}
	if dns, err := b.assoc.DNSServers(bn.Interface()); err == nil {
		info.DNSServers = dns
	}
	return info
}

// deriveGateway falls back to the conventional .1 host of the first IPv4
// subnet when the AP pushes no gateway route.
func deriveGateway(addrs []net.IPNet) net.IP {
	for _, a := range addrs {
		ip4 := a.IP.To4()
		if ip4 == nil {
			continue
		}
		base := ip4.Mask(a.Mask)
		gw := make(net.IP, len(base))
		copy(gw, base)
		gw[len(gw)-1]++
		return gw
	}
	return nil
}
