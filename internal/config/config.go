// Package config provides HCL configuration handling for apwire.
package config

import (
	"fmt"
	"net"
)

// Config is the root configuration.
type Config struct {
	WiFi        WiFi         `hcl:"wifi,block" json:"wifi"`
	Device      Device       `hcl:"device,block" json:"device"`
	Login       Login        `hcl:"login,block" json:"login"`
	Diagnostics *Diagnostics `hcl:"diagnostics,block" json:"diagnostics,omitempty"`
	LogLevel    string       `hcl:"log_level,optional" json:"log_level,omitempty"`
}

// WiFi describes the access point to join.
type WiFi struct {
	SSID         string `hcl:"ssid" json:"ssid"`
	Password     string `hcl:"password,optional" json:"password,omitempty"`
	WholeProcess bool   `hcl:"whole_process,optional" json:"whole_process"`
}

// Device describes the device's address on the AP subnet.
type Device struct {
	Address string `hcl:"address,optional" json:"address"`
	Port    int    `hcl:"port,optional" json:"port"`
}

// Login holds the web UI credentials.
type Login struct {
	Username string `hcl:"username" json:"username"`
	Password string `hcl:"password" json:"password"`
}

// Diagnostics overrides the default probe port set.
type Diagnostics struct {
	Ports []int `hcl:"ports,optional" json:"ports,omitempty"`
}

// Defaults for the stock ESP-style access point.
const (
	DefaultDeviceAddress = "192.168.4.1"
	DefaultDevicePort    = 80
)

// ApplyDefaults fills in unset fields.
func (c *Config) ApplyDefaults() {
	if c.Device.Address == "" {
		c.Device.Address = DefaultDeviceAddress
	}
	if c.Device.Port == 0 {
		c.Device.Port = DefaultDevicePort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.WiFi.SSID == "" {
		return fmt.Errorf("wifi: ssid is required")
	}
	if c.WiFi.Password != "" && len(c.WiFi.Password) < 8 {
		return fmt.Errorf("wifi: password must be at least 8 characters (WPA2 minimum)")
	}
	if net.ParseIP(c.Device.Address) == nil {
		return fmt.Errorf("device: invalid address %q", c.Device.Address)
	}
	if c.Device.Port < 1 || c.Device.Port > 65535 {
		return fmt.Errorf("device: invalid port %d", c.Device.Port)
	}
	if c.Login.Username == "" {
		return fmt.Errorf("login: username is required")
	}
	if c.Diagnostics != nil {
		for _, p := range c.Diagnostics.Ports {
			if p < 1 || p > 65535 {
				return fmt.Errorf("diagnostics: invalid port %d", p)
			}
		}
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// BaseURL returns the device's HTTP base URL.
func (c *Config) BaseURL() string {
	if c.Device.Port == 80 {
		return "http://" + c.Device.Address
	}
	return fmt.Sprintf("http://%s:%d", c.Device.Address, c.Device.Port)
}
