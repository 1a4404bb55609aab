package cmd

import (
	"context"
	"fmt"

	"apwire.dev/apwire/internal/device"
)

// RunNetworkGet prints the device's WiFi client configuration.
func RunNetworkGet(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		ns, err := a.dev.NetworkSettings(ctx)
		if err != nil {
			return fmt.Errorf("get network: %w", err)
		}

		fmt.Printf("SSID: %s\n", ns.SSID)
		if ns.DHCP {
			fmt.Println("Mode: DHCP")
		} else {
			fmt.Println("Mode: static")
			fmt.Printf("  IP:      %s\n", ns.StaticIP)
			fmt.Printf("  Gateway: %s\n", ns.Gateway)
			fmt.Printf("  Subnet:  %s\n", ns.Subnet)
			fmt.Printf("  DNS:     %s\n", ns.DNS)
		}
		return nil
	})
}

// RunNetworkSet writes the device's WiFi client configuration. The device
// usually drops off its own AP right after, so a transport error following
// a success response is expected.
func RunNetworkSet(configFile string, ns device.NetworkSettings) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.UpdateNetwork(ctx, ns); err != nil {
			return fmt.Errorf("update network: %w", err)
		}
		fmt.Println("Network settings updated; the device may reconnect now")
		return nil
	})
}
