// Package netbind joins an IoT device's internet-less access point and pins
// traffic to the resulting interface. The inherently OS-level pieces (SSID
// association, netlink, the process-wide default route) sit behind narrow
// interfaces so everything above them is testable with fakes.
package netbind

import (
	"context"
	"errors"
	"net"
	"sync"
)

var (
	// ErrUnavailable means the OS could not provide the requested network.
	ErrUnavailable = errors.New("network unavailable")

	// ErrBindTimeout means the network did not become usable in time.
	ErrBindTimeout = errors.New("network bind timed out")
)

// Associator is the OS primitive for joining a wireless network by SSID.
// On Linux the real implementation drives NetworkManager via nmcli.
type Associator interface {
	// Associate joins the network and returns the wireless interface name.
	// The implementation must not require the network to have internet
	// connectivity.
	Associate(ctx context.Context, ssid, password string) (ifname string, err error)

	// Disassociate leaves the named network. Safe to call when not joined.
	Disassociate(ssid string) error

	// DNSServers returns the resolvers assigned on the interface.
	DNSServers(ifname string) ([]string, error)
}

// Netlinker abstracts the read-side netlink queries the binder needs.
type Netlinker interface {
	LinkUp(ifname string) (bool, error)
	Addrs(ifname string) ([]net.IPNet, error)
	Routes(ifname string) ([]string, error)
	GatewayFor(ifname string) (net.IP, error)
}

// ProcessBinder is the single process-wide side effect in the system: it
// forces the host's default route through the bound interface. Everything
// else binds per socket.
type ProcessBinder interface {
	Bind(ifname string, gateway net.IP) error
	Release() error
}

// LossWatcher delivers an asynchronous callback when the bound interface
// loses its address. stop unregisters the watch and is always safe to call.
type LossWatcher interface {
	Watch(ifname string, onLoss func()) (stop func(), err error)
}

// CapabilitySet is the read-only introspection result for diagnostics.
type CapabilitySet struct {
	Transports  []string `json:"transports"`
	HasInternet bool     `json:"has_internet"`
	Validated   bool     `json:"validated"`
	Trusted     bool     `json:"trusted"`
}

// LinkInfo describes the bound interface for diagnostics.
type LinkInfo struct {
	Interface  string   `json:"interface"`
	Addresses  []string `json:"addresses"`
	Routes     []string `json:"routes"`
	DNSServers []string `json:"dns_servers"`
}

// BoundNetwork is the opaque handle to a live network association.
// At most one valid instance exists per Binder.
type BoundNetwork struct {
	mu      sync.RWMutex
	ifname  string
	addrs   []net.IPNet
	gateway net.IP
	valid   bool
}

// Interface returns the interface name.
func (n *BoundNetwork) Interface() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.ifname
}

// Gateway returns the network's gateway address.
func (n *BoundNetwork) Gateway() net.IP {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.gateway
}

// Addrs returns the interface's IPv4 addresses.
func (n *BoundNetwork) Addrs() []net.IPNet {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]net.IPNet, len(n.addrs))
	copy(out, n.addrs)
	return out
}

// Valid reports whether the handle still refers to a live association.
func (n *BoundNetwork) Valid() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.valid
}

func (n *BoundNetwork) invalidate() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.valid = false
}
