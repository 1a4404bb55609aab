//go:build linux
// +build linux

package netbind

import (
	"fmt"
	"sync"

	"github.com/vishvananda/netlink"
)

// AddrLossWatcher subscribes to kernel address updates and fires the loss
// callback as soon as any IPv4 address is removed from the watched
// interface. The AP hands out a single address, so any removal means the
// association is gone.
type AddrLossWatcher struct{}

// NewLossWatcher returns the platform LossWatcher.
func NewLossWatcher() LossWatcher {
	return &AddrLossWatcher{}
}

// Watch starts a subscription for ifname. The callback fires at most once.
func (w *AddrLossWatcher) Watch(ifname string, onLoss func()) (func(), error) {
	link, err := netlink.LinkByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", ifname, err)
	}
	index := link.Attrs().Index

	done := make(chan struct{})
	updates := make(chan netlink.AddrUpdate)
	if err := netlink.AddrSubscribe(updates, done); err != nil {
		close(done)
		return nil, fmt.Errorf("addr subscribe: %w", err)
	}

	var once sync.Once
	go func() {
		for {
			select {
			case <-done:
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				if u.LinkIndex != index || u.NewAddr {
					continue
				}
				if u.LinkAddress.IP.To4() == nil {
					continue
				}
				once.Do(onLoss)
				return
			}
		}
	}()

	var stopOnce sync.Once
	stop := func() {
		stopOnce.Do(func() { close(done) })
	}
	return stop, nil
}
