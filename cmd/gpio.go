package cmd

import (
	"context"
	"fmt"

	"apwire.dev/apwire/internal/device"
)

// RunGPIOGet prints the device's pin map.
func RunGPIOGet(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		state, err := a.dev.GPIOState(ctx)
		if err != nil {
			return fmt.Errorf("get gpio: %w", err)
		}

		if len(state.Pins) == 0 {
			fmt.Println("No GPIO pins configured")
			return nil
		}
		for _, pin := range state.Pins {
			label := pin.Label
			if label == "" {
				label = "-"
			}
			fmt.Printf("  pin %-3d %-6s value=%d  %s\n", pin.Pin, pin.Mode, pin.Value, label)
		}
		return nil
	})
}

// RunGPIOSet writes one pin's mode and value.
func RunGPIOSet(configFile string, pin device.GPIOPin) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.UpdateGPIO(ctx, pin); err != nil {
			return fmt.Errorf("update gpio %d: %w", pin.Pin, err)
		}
		fmt.Printf("Pin %d updated\n", pin.Pin)
		return nil
	})
}

// RunGPIOTrigger pulses a pin.
func RunGPIOTrigger(configFile string, pin int) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.TriggerGPIO(ctx, pin); err != nil {
			return fmt.Errorf("trigger gpio %d: %w", pin, err)
		}
		fmt.Printf("Pin %d triggered\n", pin)
		return nil
	})
}
