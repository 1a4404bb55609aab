//go:build linux
// +build linux

package netbind

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

// RealNetlinker implements Netlinker against the kernel via netlink.
type RealNetlinker struct{}

// NewNetlinker returns the platform Netlinker.
func NewNetlinker() Netlinker {
	return &RealNetlinker{}
}

// LinkUp reports whether the interface is administratively and operationally up.
func (r *RealNetlinker) LinkUp(ifname string) (bool, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return false, fmt.Errorf("link %s: %w", ifname, err)
	}
	attrs := link.Attrs()
	if attrs.Flags&net.FlagUp == 0 {
		return false, nil
	}
	return attrs.OperState == netlink.OperUp || attrs.OperState == netlink.OperUnknown, nil
}

// Addrs returns the interface's IPv4 addresses.
func (r *RealNetlinker) Addrs(ifname string) ([]net.IPNet, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", ifname, err)
	}
	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("addr list %s: %w", ifname, err)
	}
	out := make([]net.IPNet, 0, len(addrs))
	for _, a := range addrs {
		if a.IPNet != nil {
			out = append(out, *a.IPNet)
		}
	}
	return out, nil
}

// Routes returns the interface's IPv4 routes as strings for diagnostics.
func (r *RealNetlinker) Routes(ifname string) ([]string, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", ifname, err)
	}
	routes, err := netlink.RouteList(link, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("route list %s: %w", ifname, err)
	}
	out := make([]string, 0, len(routes))
	for _, rt := range routes {
		out = append(out, rt.String())
	}
	return out, nil
}

// GatewayFor returns the first gateway found on the interface's routes.
func (r *RealNetlinker) GatewayFor(ifname string) (net.IP, error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", ifname, err)
	}
	routes, err := netlink.RouteList(link, netlink.FAMILY_V4)
	if err != nil {
		return nil, fmt.Errorf("route list %s: %w", ifname, err)
	}
	for _, rt := range routes {
		if rt.Gw != nil {
			return rt.Gw, nil
		}
	}
	return nil, nil
}
