//go:build !linux
// +build !linux

package netbind

import "net"

// StubProcessBinder is the non-Linux ProcessBinder; binding fails, release
// is a no-op so Unbind stays idempotent everywhere.
type StubProcessBinder struct{}

// NewProcessBinder returns the platform ProcessBinder.
func NewProcessBinder() ProcessBinder {
	return &StubProcessBinder{}
}

func (s *StubProcessBinder) Bind(ifname string, gateway net.IP) error { return errUnsupported }
func (s *StubProcessBinder) Release() error                           { return nil }
