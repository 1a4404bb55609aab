package cmd

import (
	"context"
	"fmt"
	"strings"

	"apwire.dev/apwire/internal/diag"
)

// RunDiag connects and prints the full diagnostic bundle. No login needed;
// everything here works against an unauthenticated device.
func RunDiag(configFile string) error {
	return withNetwork(configFile, func(ctx context.Context, a *app) error {
		opts := []diag.Option{}
		if a.cfg.Diagnostics != nil {
			opts = append(opts, diag.WithPorts(a.cfg.Diagnostics.Ports))
		}
		report := diag.New(a.binder, a.bound, opts...).Run(ctx, a.cfg.Device.Address)

		fmt.Printf("Interface:    %s\n", report.Link.Interface)
		fmt.Printf("Addresses:    %s\n", strings.Join(report.Link.Addresses, ", "))
		fmt.Printf("DNS servers:  %s\n", strings.Join(report.Link.DNSServers, ", "))
		fmt.Printf("Transports:   %s\n", strings.Join(report.Capabilities.Transports, ", "))
		fmt.Printf("Validated:    %v\n", report.Capabilities.Validated)

		if hw := report.Hardware; hw != nil {
			fmt.Printf("Link:         %d Mb/s %s duplex (driver %s, state %s)\n",
				hw.Speed, hw.Duplex, hw.Driver, hw.OperState)
		}

		if len(report.OpenPorts) == 0 {
			fmt.Println("Open ports:   none")
		} else {
			fmt.Printf("Open ports:   %v\n", report.OpenPorts)
		}

		if ping := report.GatewayPing; ping != nil {
			if ping.Reachable {
				fmt.Printf("Gateway ping: %s in %s\n", ping.Target, ping.RTT)
			} else {
				fmt.Printf("Gateway ping: %s unreachable (%s)\n", ping.Target, ping.Error)
			}
		}

		if dns := report.DNS; dns != nil {
			if dns.Responsive {
				fmt.Printf("Resolver:     %s answered in %s\n", dns.Server, dns.RTT)
			} else {
				fmt.Printf("Resolver:     %s silent (%s)\n", dns.Server, dns.Error)
			}
		}
		return nil
	})
}
