package device

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apwire.dev/apwire/internal/auth"
	"apwire.dev/apwire/internal/transport"
)

var anySource = transport.SourceFunc(func() (string, bool) { return "", true })

type fakeSessions struct {
	session *auth.Session
}

func (f *fakeSessions) Session() (*auth.Session, bool) {
	return f.session, f.session != nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	sessions := &fakeSessions{session: &auth.Session{BaseURL: srv.URL, Token: "PHPSESSID=xyz"}}
	return New(transport.NewBound(anySource), sessions), &hits
}

func TestNotConnectedFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected while unauthenticated")
	}))
	defer srv.Close()

	c := New(transport.NewBound(anySource), &fakeSessions{})
	_, err := c.SystemStatus(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.ErrorIs(t, c.Restart(context.Background()), ErrNotConnected)
}

func TestSystemStatusSendsCookie(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/system-status", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "PHPSESSID=xyz", r.Header.Get("Cookie"))
		json.NewEncoder(w).Encode(map[string]any{
			"device_name":      "ESP32-TEST",
			"firmware_version": "1.4.2",
			"uptime_seconds":   321,
			"wifi_rssi":        -61,
			"ip_address":       "192.168.4.1",
		})
	})

	st, err := c.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ESP32-TEST", st.DeviceName)
	assert.Equal(t, "1.4.2", st.FirmwareVersion)
	assert.Equal(t, int64(321), st.UptimeSeconds)
	assert.Equal(t, -61, st.WiFiRSSI)
}

func TestBooleanVerdicts(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"success true", `{"success": true}`, true},
		{"success false", `{"success": false, "message": "pin busy"}`, false},
		{"success absent", `{"status": "done"}`, false},
		{"success wrong type", `{"success": "yes"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/trigger-gpio", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				w.Write([]byte(tt.body))
			})

			err := c.TriggerGPIO(context.Background(), 5)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestNonObjectResponseIsParseError(t *testing.T) {
	for _, body := range []string{`[1,2,3]`, `"ok"`, `42`, `not json`} {
		c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		})
		_, err := c.MQTTConfig(context.Background())
		assert.ErrorIs(t, err, ErrParse, "body %q", body)
	}
}

func TestHTTPStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.NetworkSettings(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestSensorsList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/get-sensors", r.URL.Path)
		w.Write([]byte(`{"sensors": [
			{"id": "t1", "name": "Temp", "type": "dht22", "pin": 4, "enabled": true, "interval_seconds": 30},
			{"id": "h1", "name": "Humidity", "type": "dht22", "pin": 4, "enabled": false, "interval_seconds": 60}
		]}`))
	})

	sensors, err := c.Sensors(context.Background())
	require.NoError(t, err)
	require.Len(t, sensors, 2)
	assert.Equal(t, "t1", sensors[0].ID)
	assert.True(t, sensors[0].Enabled)
	assert.False(t, sensors[1].Enabled)
}

func TestUpdateMQTTSendsConfig(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/update-mqtt", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var cfg MQTTConfig
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cfg))
		assert.Equal(t, "mqtt.local", cfg.Broker)
		assert.Equal(t, 1883, cfg.Port)
		assert.True(t, cfg.Enabled)
		w.Write([]byte(`{"success": true}`))
	})

	err := c.UpdateMQTT(context.Background(), MQTTConfig{
		Enabled: true,
		Broker:  "mqtt.local",
		Port:    1883,
	})
	assert.NoError(t, err)
}
