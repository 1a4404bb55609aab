package cmd

import (
	"context"
	"fmt"
)

// RunRestart reboots the device.
func RunRestart(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.Restart(ctx); err != nil {
			return fmt.Errorf("restart: %w", err)
		}
		fmt.Println("Device restarting")
		return nil
	})
}

// RunFactoryReset wipes the device configuration after a typed confirmation.
func RunFactoryReset(configFile string, yes bool) error {
	if !yes {
		fmt.Print("This wipes the device configuration. Type 'reset' to continue: ")
		var answer string
		fmt.Scanln(&answer)
		if answer != "reset" {
			fmt.Println("Aborted")
			return nil
		}
	}

	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.FactoryReset(ctx); err != nil {
			return fmt.Errorf("factory reset: %w", err)
		}
		fmt.Println("Device reset to factory defaults; it will reopen its default AP")
		return nil
	})
}
