//go:build linux
// +build linux

package netbind

import (
	"fmt"
	"net"
	"sync"

	"github.com/vishvananda/netlink"
)

// defaultRoutePriority sits below any existing default route's metric so the
// bound interface wins route selection while the binding is active.
const defaultRoutePriority = 50

// RouteProcessBinder implements ProcessBinder by installing a high-priority
// default route through the bound interface. It remembers what it installed
// so Release removes exactly that route and nothing else.
type RouteProcessBinder struct {
	mu        sync.Mutex
	installed *netlink.Route
}

// NewProcessBinder returns the platform ProcessBinder.
func NewProcessBinder() ProcessBinder {
	return &RouteProcessBinder{}
}

// Bind installs the default route. Replaces a previous binding if present.
func (p *RouteProcessBinder) Bind(ifname string, gateway net.IP) error {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return fmt.Errorf("link %s: %w", ifname, err)
	}

	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Priority:  defaultRoutePriority,
	}
	if gateway != nil {
		route.Gw = gateway
	} else {
		route.Scope = netlink.SCOPE_LINK
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.installed != nil {
		_ = netlink.RouteDel(p.installed)
		p.installed = nil
	}
	if err := netlink.RouteAdd(route); err != nil {
		return fmt.Errorf("add default route via %s: %w", ifname, err)
	}
	p.installed = route
	return nil
}

// Release removes the installed route. Idempotent.
func (p *RouteProcessBinder) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.installed == nil {
		return nil
	}
	err := netlink.RouteDel(p.installed)
	p.installed = nil
	if err != nil {
		return fmt.Errorf("remove default route: %w", err)
	}
	return nil
}
