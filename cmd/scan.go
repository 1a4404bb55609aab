package cmd

import (
	"context"
	"fmt"
)

// RunScan probes an arbitrary port list on the device (or another host on
// the AP subnet) through the bound interface.
func RunScan(configFile, host string, ports []int) error {
	return withNetwork(configFile, func(ctx context.Context, a *app) error {
		if host == "" {
			host = a.cfg.Device.Address
		}

		open := a.bound.ScanPorts(ctx, host, ports)
		if len(open) == 0 {
			fmt.Printf("%s: no open ports in %v\n", host, ports)
			return nil
		}
		for _, p := range open {
			fmt.Printf("%s:%d open\n", host, p)
		}
		return nil
	})
}
