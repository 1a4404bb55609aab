package device

// SystemStatus is the device's self-report from /api/system-status.
type SystemStatus struct {
	DeviceName      string `json:"device_name"`
	FirmwareVersion string `json:"firmware_version"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	FreeHeap        int64  `json:"free_heap"`
	WiFiRSSI        int    `json:"wifi_rssi"`
	IPAddress       string `json:"ip_address"`
	MACAddress      string `json:"mac_address"`
}

// SensorReading is a single live measurement.
type SensorReading struct {
	Sensor    string  `json:"sensor"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	Timestamp int64   `json:"timestamp"`
}

// MQTTConfig is the device's broker configuration.
type MQTTConfig struct {
	Enabled         bool   `json:"enabled"`
	Broker          string `json:"broker"`
	Port            int    `json:"port"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	TopicPrefix     string `json:"topic_prefix"`
	IntervalSeconds int    `json:"interval_seconds"`
}

// GPIOPin describes one pin.
type GPIOPin struct {
	Pin   int    `json:"pin"`
	Mode  string `json:"mode"`
	Value int    `json:"value"`
	Label string `json:"label"`
}

// GPIOState is the full pin map from /api/get-gpio.
type GPIOState struct {
	Pins []GPIOPin `json:"pins"`
}

// NetworkSettings is the device's own WiFi client configuration.
type NetworkSettings struct {
	SSID     string `json:"ssid"`
	Password string `json:"password,omitempty"`
	DHCP     bool   `json:"dhcp"`
	StaticIP string `json:"static_ip,omitempty"`
	Gateway  string `json:"gateway,omitempty"`
	Subnet   string `json:"subnet,omitempty"`
	DNS      string `json:"dns,omitempty"`
}

// Sensor is a configured sensor slot.
type Sensor struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Pin             int    `json:"pin"`
	Enabled         bool   `json:"enabled"`
	IntervalSeconds int    `json:"interval_seconds"`
}
