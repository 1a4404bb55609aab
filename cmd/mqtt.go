package cmd

import (
	"context"
	"fmt"

	"apwire.dev/apwire/internal/device"
)

// RunMQTTGet prints the device's broker configuration.
func RunMQTTGet(configFile string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		cfg, err := a.dev.MQTTConfig(ctx)
		if err != nil {
			return fmt.Errorf("get mqtt config: %w", err)
		}

		state := "disabled"
		if cfg.Enabled {
			state = "enabled"
		}
		fmt.Printf("MQTT:     %s\n", state)
		fmt.Printf("Broker:   %s:%d\n", cfg.Broker, cfg.Port)
		if cfg.Username != "" {
			fmt.Printf("Username: %s\n", cfg.Username)
		}
		fmt.Printf("Prefix:   %s\n", cfg.TopicPrefix)
		fmt.Printf("Interval: %ds\n", cfg.IntervalSeconds)
		return nil
	})
}

// RunMQTTSet writes a new broker configuration.
func RunMQTTSet(configFile string, cfg device.MQTTConfig) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.UpdateMQTT(ctx, cfg); err != nil {
			return fmt.Errorf("update mqtt config: %w", err)
		}
		fmt.Println("MQTT configuration updated")
		return nil
	})
}

// RunMQTTPublish asks the device to publish one message.
func RunMQTTPublish(configFile, topic, payload string) error {
	return withSession(configFile, func(ctx context.Context, a *app) error {
		if err := a.dev.PublishMQTT(ctx, topic, payload); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		fmt.Printf("Published to %s\n", topic)
		return nil
	})
}
