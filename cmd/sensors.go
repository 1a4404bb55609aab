package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"apwire.dev/apwire/internal/device"
)

// RunSensorsList prints the configured sensor slots.
func RunSensorsList(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		sensors, err := a.dev.Sensors(ctx)
		if err != nil {
			return fmt.Errorf("list sensors: %w", err)
		}

		if len(sensors) == 0 {
			fmt.Println("No sensors configured")
			return nil
		}
		for _, s := range sensors {
			state := "off"
			if s.Enabled {
				state = "on"
			}
			fmt.Printf("  %-10s %-16s %-8s pin=%-3d every %ds [%s]\n",
				s.ID, s.Name, s.Type, s.Pin, s.IntervalSeconds, state)
		}
		return nil
	})
}

// RunSensorsSave replaces the sensor configuration from a JSON file holding
// an array of sensor objects.
func RunSensorsSave(configFile, sensorsFile string) error {
	data, err := os.ReadFile(sensorsFile)
	if err != nil {
		return fmt.Errorf("read %s: %w", sensorsFile, err)
	}
	var sensors []device.Sensor
	if err := json.Unmarshal(data, &sensors); err != nil {
		return fmt.Errorf("parse %s: %w", sensorsFile, err)
	}

	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.SaveSensors(ctx, sensors); err != nil {
			return fmt.Errorf("save sensors: %w", err)
		}
		fmt.Printf("Saved %d sensors\n", len(sensors))
		return nil
	})
}

// RunSensorPublish publishes one sensor's reading over MQTT.
func RunSensorPublish(configFile, id string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.PublishSensor(ctx, id); err != nil {
			return fmt.Errorf("publish sensor %s: %w", id, err)
		}
		fmt.Printf("Sensor %s published\n", id)
		return nil
	})
}

// RunSensorToggle flips a sensor's enabled flag.
func RunSensorToggle(configFile, id string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.ToggleSensor(ctx, id); err != nil {
			return fmt.Errorf("toggle sensor %s: %w", id, err)
		}
		fmt.Printf("Sensor %s toggled\n", id)
		return nil
	})
}

// RunSensorsPublishAll publishes every enabled sensor's reading.
func RunSensorsPublishAll(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.PublishAllSensors(ctx); err != nil {
			return fmt.Errorf("publish all sensors: %w", err)
		}
		fmt.Println("All sensors published")
		return nil
	})
}
