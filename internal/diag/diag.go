// Package diag aggregates connectivity diagnostics: binder introspection,
// hardware link details, a fixed-port scan of the device, a gateway ping,
// and a DNS probe. Everything here is read-only and best-effort.
package diag

import (
	"context"
	"fmt"
	"net"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/netbind"
)

// DefaultPorts are the services the access-point firmware commonly exposes:
// HTTP, alt HTTP, dev server, Node-RED, MQTT, ESP OTA.
var DefaultPorts = []int{80, 8080, 5000, 1880, 1883, 8266}

// Introspector is the binder surface diag reads from.
type Introspector interface {
	Capabilities() netbind.CapabilitySet
	LinkInfo() netbind.LinkInfo
	Gateway() (net.IP, bool)
}

// Scanner probes TCP reachability through the bound transport.
type Scanner interface {
	RawConnect(ctx context.Context, host string, port int, timeout time.Duration) bool
	ScanPorts(ctx context.Context, host string, ports []int) []int
}

// Report is the full diagnostic bundle.
type Report struct {
	Capabilities netbind.CapabilitySet `json:"capabilities"`
	Link         netbind.LinkInfo      `json:"link"`
	Hardware     *HardwareLink         `json:"hardware,omitempty"`
	OpenPorts    []int                 `json:"open_ports"`
	GatewayPing  *PingResult           `json:"gateway_ping,omitempty"`
	DNS          *DNSResult            `json:"dns,omitempty"`
	GeneratedAt  time.Time             `json:"generated_at"`
}

// PingResult is a single-shot ICMP probe outcome.
type PingResult struct {
	Target    string        `json:"target"`
	Reachable bool          `json:"reachable"`
	RTT       time.Duration `json:"rtt"`
	Error     string        `json:"error,omitempty"`
}

// Runner collects reports.
type Runner struct {
	intro   Introspector
	scanner Scanner
	logger  *logging.Logger
	ports   []int
}

// Option configures the Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithPorts overrides the scanned port set.
func WithPorts(ports []int) Option {
	return func(r *Runner) {
		if len(ports) > 0 {
			r.ports = ports
		}
	}
}

// New creates a Runner. scanner may be nil to skip the port scan.
func New(intro Introspector, scanner Scanner, opts ...Option) *Runner {
	r := &Runner{
		intro:   intro,
		scanner: scanner,
		logger:  logging.WithComponent("diag"),
		ports:   DefaultPorts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run gathers a report against the device at host. Individual probes fail
// soft: a dead gateway or missing ethtool support leaves its section empty
// rather than failing the bundle.
func (r *Runner) Run(ctx context.Context, host string) *Report {
	report := &Report{GeneratedAt: time.Now()}

	if r.intro != nil {
		report.Capabilities = r.intro.Capabilities()
		report.Link = r.intro.LinkInfo()
	}

	if report.Link.Interface != "" {
		hw, err := readHardwareLink(report.Link.Interface)
		if err != nil {
			r.logger.Debug("hardware link info unavailable", "interface", report.Link.Interface, "error", err)
		} else {
			report.Hardware = hw
		}
	}

	if r.scanner != nil && host != "" {
		report.OpenPorts = r.scanner.ScanPorts(ctx, host, r.ports)
		r.logger.Info("port scan complete", "host", host, "open", report.OpenPorts)
	}

	if r.intro != nil {
		if gw, ok := r.intro.Gateway(); ok {
			report.GatewayPing = pingOnce(gw.String())
		}
	}

	if len(report.Link.DNSServers) > 0 {
		report.DNS = probeDNS(ctx, report.Link.DNSServers[0], host)
	}

	return report
}

// CheckPingFunc performs one unprivileged ICMP echo. Swappable in tests.
var CheckPingFunc = func(ip string) (time.Duration, error) {
	pinger, err := probing.NewPinger(ip)
	if err != nil {
		return 0, fmt.Errorf("failed to create pinger: %w", err)
	}

	pinger.Count = 1
	pinger.Timeout = 1 * time.Second
	pinger.SetPrivileged(false)

	if err := pinger.Run(); err != nil {
		return 0, err
	}

	stats := pinger.Statistics()
	if stats.PacketsRecv == 0 {
		return 0, fmt.Errorf("packet loss")
	}
	return stats.AvgRtt, nil
}

func pingOnce(target string) *PingResult {
	rtt, err := CheckPingFunc(target)
	if err != nil {
		return &PingResult{Target: target, Error: err.Error()}
	}
	return &PingResult{Target: target, Reachable: true, RTT: rtt}
}
