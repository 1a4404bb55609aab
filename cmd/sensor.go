package cmd

import (
	"context"
	"fmt"
	"time"
)

// RunSensor prints the current primary sensor reading.
func RunSensor(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		reading, err := a.dev.SensorReading(ctx)
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}

		fmt.Printf("%s: %g %s", reading.Sensor, reading.Value, reading.Unit)
		if reading.Timestamp > 0 {
			fmt.Printf(" (at %s)", time.Unix(reading.Timestamp, 0).Format(time.RFC3339))
		}
		fmt.Println()
		return nil
	})
}
