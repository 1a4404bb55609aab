//go:build !linux
// +build !linux

package netbind

import (
	"errors"
	"net"
)

var errUnsupported = errors.New("netlink operations are only supported on linux")

// StubNetlinker is the non-Linux Netlinker; every call fails.
type StubNetlinker struct{}

// NewNetlinker returns the platform Netlinker.
func NewNetlinker() Netlinker {
	return &StubNetlinker{}
}

func (s *StubNetlinker) LinkUp(ifname string) (bool, error)        { return false, errUnsupported }
func (s *StubNetlinker) Addrs(ifname string) ([]net.IPNet, error)  { return nil, errUnsupported }
func (s *StubNetlinker) Routes(ifname string) ([]string, error)    { return nil, errUnsupported }
func (s *StubNetlinker) GatewayFor(ifname string) (net.IP, error)  { return nil, errUnsupported }
