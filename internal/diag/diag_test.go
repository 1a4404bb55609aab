package diag

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apwire.dev/apwire/internal/netbind"
)

type fakeIntrospector struct {
	caps    netbind.CapabilitySet
	link    netbind.LinkInfo
	gateway net.IP
}

func (f *fakeIntrospector) Capabilities() netbind.CapabilitySet { return f.caps }
func (f *fakeIntrospector) LinkInfo() netbind.LinkInfo          { return f.link }
func (f *fakeIntrospector) Gateway() (net.IP, bool) {
	return f.gateway, f.gateway != nil
}

type fakeScanner struct {
	open         []int
	scannedPorts []int
}

func (f *fakeScanner) RawConnect(_ context.Context, _ string, port int, _ time.Duration) bool {
	for _, p := range f.open {
		if p == port {
			return true
		}
	}
	return false
}

func (f *fakeScanner) ScanPorts(_ context.Context, _ string, ports []int) []int {
	f.scannedPorts = append([]int(nil), ports...)
	var hit []int
	for _, p := range ports {
		if f.RawConnect(context.Background(), "", p, 0) {
			hit = append(hit, p)
		}
	}
	return hit
}

func stubPing(t *testing.T, fn func(string) (time.Duration, error)) {
	t.Helper()
	orig := CheckPingFunc
	CheckPingFunc = fn
	t.Cleanup(func() { CheckPingFunc = orig })
}

func TestRunFullReport(t *testing.T) {
	stubPing(t, func(ip string) (time.Duration, error) {
		assert.Equal(t, "192.168.4.1", ip)
		return 3 * time.Millisecond, nil
	})

	intro := &fakeIntrospector{
		caps: netbind.CapabilitySet{Transports: []string{"wifi"}, Trusted: true},
		link: netbind.LinkInfo{
			Interface: "wlan0",
			Addresses: []string{"192.168.4.2/24"},
		},
		gateway: net.ParseIP("192.168.4.1"),
	}
	scanner := &fakeScanner{open: []int{80, 1883}}

	report := New(intro, scanner).Run(context.Background(), "192.168.4.1")

	assert.Equal(t, []string{"wifi"}, report.Capabilities.Transports)
	assert.Equal(t, "wlan0", report.Link.Interface)
	assert.Equal(t, DefaultPorts, scanner.scannedPorts)
	assert.Equal(t, []int{80, 1883}, report.OpenPorts)
	require.NotNil(t, report.GatewayPing)
	assert.True(t, report.GatewayPing.Reachable)
	assert.Equal(t, 3*time.Millisecond, report.GatewayPing.RTT)
	assert.Nil(t, report.DNS)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestRunUnreachableGateway(t *testing.T) {
	stubPing(t, func(string) (time.Duration, error) {
		return 0, errors.New("packet loss")
	})

	intro := &fakeIntrospector{gateway: net.ParseIP("192.168.4.1")}
	report := New(intro, nil).Run(context.Background(), "")

	require.NotNil(t, report.GatewayPing)
	assert.False(t, report.GatewayPing.Reachable)
	assert.Equal(t, "packet loss", report.GatewayPing.Error)
}

func TestRunPortOverride(t *testing.T) {
	scanner := &fakeScanner{}
	r := New(&fakeIntrospector{}, scanner, WithPorts([]int{22, 443}))
	r.Run(context.Background(), "192.168.4.1")
	assert.Equal(t, []int{22, 443}, scanner.scannedPorts)
}

func TestRunUnboundIsEmptyNotPanic(t *testing.T) {
	report := New(&fakeIntrospector{}, nil).Run(context.Background(), "")
	assert.Empty(t, report.Capabilities.Transports)
	assert.Empty(t, report.Link.Interface)
	assert.Nil(t, report.GatewayPing)
	assert.Nil(t, report.OpenPorts)
}

func TestRunNilIntrospector(t *testing.T) {
	report := New(nil, nil).Run(context.Background(), "192.168.4.1")
	assert.NotNil(t, report)
	assert.Nil(t, report.GatewayPing)
}

func TestDefaultPortsFixed(t *testing.T) {
	assert.Equal(t, []int{80, 8080, 5000, 1880, 1883, 8266}, DefaultPorts)
}
