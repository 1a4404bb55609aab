//go:build !linux
// +build !linux

package transport

import "syscall"

// bindToDeviceControl is a no-op where SO_BINDTODEVICE does not exist; the
// process-wide route installed by netbind is the only constraint there.
func bindToDeviceControl(ifname string) func(network, address string, c syscall.RawConn) error {
	return nil
}
