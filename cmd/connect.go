package cmd

import (
	"context"
	"fmt"
)

// RunConnect joins the access point, logs in, and reports what it found.
func RunConnect(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		bn, ok := a.binder.Current()
		if !ok {
			return fmt.Errorf("bind lost immediately after connect")
		}

		fmt.Printf("Connected to %q on %s\n", a.cfg.WiFi.SSID, bn.Interface())
		for _, addr := range bn.Addrs() {
			fmt.Printf("  address: %s\n", addr.String())
		}
		if gw := bn.Gateway(); gw != nil {
			fmt.Printf("  gateway: %s\n", gw)
		}

		session, ok := a.authn.Session()
		if ok {
			fmt.Printf("Logged in at %s (cookie: %v)\n", session.BaseURL, session.Token != "")
		}
		return nil
	})
}
