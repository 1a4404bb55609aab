//go:build linux
// +build linux

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// bindToDeviceControl pins every socket the dialer creates to ifname via
// SO_BINDTODEVICE, so traffic cannot escape onto the default route even
// while the AP and another uplink are both up.
func bindToDeviceControl(ifname string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var ctrlErr error
		err := c.Control(func(fd uintptr) {
			ctrlErr = unix.BindToDevice(int(fd), ifname)
		})
		if err != nil {
			return err
		}
		return ctrlErr
	}
}
