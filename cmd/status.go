package cmd

import (
	"context"
	"fmt"
	"time"
)

// RunStatus prints the device's system status.
func RunStatus(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		st, err := a.dev.SystemStatus(ctx)
		if err != nil {
			return fmt.Errorf("system status: %w", err)
		}

		fmt.Printf("Device:    %s\n", st.DeviceName)
		fmt.Printf("Firmware:  %s\n", st.FirmwareVersion)
		fmt.Printf("Uptime:    %s\n", (time.Duration(st.UptimeSeconds) * time.Second).String())
		fmt.Printf("Free heap: %d bytes\n", st.FreeHeap)
		fmt.Printf("RSSI:      %d dBm\n", st.WiFiRSSI)
		fmt.Printf("IP:        %s\n", st.IPAddress)
		if st.MACAddress != "" {
			fmt.Printf("MAC:       %s\n", st.MACAddress)
		}
		return nil
	})
}
