// Package device is the authenticated API client for the access-point
// firmware: one method per device operation, all of them routed through a
// bound transport with the session cookie attached.
package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"apwire.dev/apwire/internal/auth"
	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/transport"
)

var (
	// ErrNotConnected: no authenticated session; nothing was sent.
	ErrNotConnected = errors.New("not connected")

	// ErrParse: the device answered with something that is not a JSON object.
	ErrParse = errors.New("unparseable device response")
)

// HTTPError is a non-200 status from the device.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("device returned status %d", e.Status)
}

// SessionSource yields the live authenticated session, if any. Implemented
// by auth.Authenticator.
type SessionSource interface {
	Session() (*auth.Session, bool)
}

// Client calls the device API. Requests go through tr, normally a
// transport.Fallback pairing the pooled client with the raw bound one.
type Client struct {
	tr       transport.Transport
	sessions SessionSource
	logger   *logging.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client.
func New(tr transport.Transport, sessions SessionSource, opts ...Option) *Client {
	c := &Client{
		tr:       tr,
		sessions: sessions,
		logger:   logging.WithComponent("device"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SystemStatus reads the device's self-report.
func (c *Client) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	var out SystemStatus
	if err := c.get(ctx, OpSystemStatus, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SensorReading reads the current primary sensor value.
func (c *Client) SensorReading(ctx context.Context) (*SensorReading, error) {
	var out SensorReading
	if err := c.get(ctx, OpGetSensor, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MQTTConfig reads the broker configuration.
func (c *Client) MQTTConfig(ctx context.Context) (*MQTTConfig, error) {
	var out MQTTConfig
	if err := c.get(ctx, OpGetMQTT, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMQTT writes the broker configuration.
func (c *Client) UpdateMQTT(ctx context.Context, cfg MQTTConfig) error {
	return c.postBool(ctx, OpUpdateMQTT, cfg)
}

// GPIOState reads the pin map.
func (c *Client) GPIOState(ctx context.Context) (*GPIOState, error) {
	var out GPIOState
	if err := c.get(ctx, OpGetGPIO, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TriggerGPIO pulses a pin.
func (c *Client) TriggerGPIO(ctx context.Context, pin int) error {
	return c.postBool(ctx, OpTriggerGPIO, map[string]int{"pin": pin})
}

// UpdateGPIO writes one pin's mode and value.
func (c *Client) UpdateGPIO(ctx context.Context, pin GPIOPin) error {
	return c.postBool(ctx, OpUpdateGPIO, pin)
}

// PublishMQTT asks the device to publish a payload on a topic.
func (c *Client) PublishMQTT(ctx context.Context, topic, payload string) error {
	return c.postBool(ctx, OpPublishMQTT, map[string]string{
		"topic":   topic,
		"payload": payload,
	})
}

// Restart reboots the device.
func (c *Client) Restart(ctx context.Context) error {
	return c.postBool(ctx, OpRestart, struct{}{})
}

// FactoryReset wipes the device configuration.
func (c *Client) FactoryReset(ctx context.Context) error {
	return c.postBool(ctx, OpFactoryReset, struct{}{})
}

// NetworkSettings reads the device's WiFi client configuration.
func (c *Client) NetworkSettings(ctx context.Context) (*NetworkSettings, error) {
	var out NetworkSettings
	if err := c.get(ctx, OpGetNetwork, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateNetwork writes the device's WiFi client configuration.
func (c *Client) UpdateNetwork(ctx context.Context, ns NetworkSettings) error {
	return c.postBool(ctx, OpUpdateNetwork, ns)
}

// UpdatePassword changes the device admin password.
func (c *Client) UpdatePassword(ctx context.Context, current, next string) error {
	return c.postBool(ctx, OpUpdatePassword, map[string]string{
		"current_password": current,
		"new_password":     next,
	})
}

// Sensors lists the configured sensor slots.
func (c *Client) Sensors(ctx context.Context) ([]Sensor, error) {
	var out struct {
		Sensors []Sensor `json:"sensors"`
	}
	if err := c.get(ctx, OpGetSensors, &out); err != nil {
		return nil, err
	}
	return out.Sensors, nil
}

// SaveSensors replaces the sensor configuration.
func (c *Client) SaveSensors(ctx context.Context, sensors []Sensor) error {
	return c.postBool(ctx, OpSaveSensors, map[string][]Sensor{"sensors": sensors})
}

// PublishSensor publishes one sensor's reading over MQTT.
func (c *Client) PublishSensor(ctx context.Context, id string) error {
	return c.postBool(ctx, OpPublishSensor, map[string]string{"id": id})
}

// ToggleSensor flips a sensor's enabled flag.
func (c *Client) ToggleSensor(ctx context.Context, id string) error {
	return c.postBool(ctx, OpToggleSensor, map[string]string{"id": id})
}

// PublishAllSensors publishes every enabled sensor's reading.
func (c *Client) PublishAllSensors(ctx context.Context) error {
	return c.postBool(ctx, OpPublishAllSensors, struct{}{})
}

// session gates every call: no authenticated session, no network traffic.
func (c *Client) session() (*auth.Session, error) {
	if c.sessions == nil {
		return nil, ErrNotConnected
	}
	sess, ok := c.sessions.Session()
	if !ok {
		return nil, ErrNotConnected
	}
	return sess, nil
}

func authHeaders(sess *auth.Session) http.Header {
	h := http.Header{}
	if sess.Token != "" {
		h.Set("Cookie", sess.Token)
	}
	return h
}

func (c *Client) get(ctx context.Context, op Op, out any) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	ep, ok := Lookup(op)
	if !ok {
		return fmt.Errorf("unknown operation %q", op)
	}

	c.logger.Debug("device call", "op", op, "path", ep.Path)
	resp, err := c.tr.Do(ctx, transport.NewGet(sess.BaseURL+ep.Path, authHeaders(sess)))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{Status: resp.StatusCode}
	}
	return decodeObject(resp.Body, out)
}

// postBool runs a write operation and reads the firmware's {"success": bool}
// verdict. A missing success field counts as failure.
func (c *Client) postBool(ctx context.Context, op Op, payload any) error {
	sess, err := c.session()
	if err != nil {
		return err
	}
	ep, ok := Lookup(op)
	if !ok {
		return fmt.Errorf("unknown operation %q", op)
	}

	req, err := transport.NewJSONPost(sess.BaseURL+ep.Path, payload, authHeaders(sess))
	if err != nil {
		return fmt.Errorf("encode %s: %w", op, err)
	}

	c.logger.Debug("device call", "op", op, "path", ep.Path)
	resp, err := c.tr.Do(ctx, req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &HTTPError{Status: resp.StatusCode}
	}

	var obj map[string]any
	if err := decodeObject(resp.Body, &obj); err != nil {
		return err
	}
	if ok, _ := obj["success"].(bool); !ok {
		if msg, _ := obj["message"].(string); msg != "" {
			return fmt.Errorf("%s failed: %s", op, msg)
		}
		return fmt.Errorf("%s failed", op)
	}
	return nil
}

// decodeObject rejects anything that is not a JSON object before decoding
// into out.
func decodeObject(body []byte, out any) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	return nil
}
