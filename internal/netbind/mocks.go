package netbind

import (
	"context"
	"net"
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockAssociator is a mock implementation of the Associator interface.
type MockAssociator struct {
	mock.Mock
}

func (m *MockAssociator) Associate(ctx context.Context, ssid, password string) (string, error) {
	args := m.Called(ctx, ssid, password)
	return args.String(0), args.Error(1)
}

func (m *MockAssociator) Disassociate(ssid string) error {
	args := m.Called(ssid)
	return args.Error(0)
}

func (m *MockAssociator) DNSServers(ifname string) ([]string, error) {
	args := m.Called(ifname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockNetlinker is a mock implementation of the Netlinker interface.
type MockNetlinker struct {
	mock.Mock
}

func (m *MockNetlinker) LinkUp(ifname string) (bool, error) {
	args := m.Called(ifname)
	return args.Bool(0), args.Error(1)
}

func (m *MockNetlinker) Addrs(ifname string) ([]net.IPNet, error) {
	args := m.Called(ifname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]net.IPNet), args.Error(1)
}

func (m *MockNetlinker) Routes(ifname string) ([]string, error) {
	args := m.Called(ifname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockNetlinker) GatewayFor(ifname string) (net.IP, error) {
	args := m.Called(ifname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(net.IP), args.Error(1)
}

// MockProcessBinder is a mock implementation of the ProcessBinder interface.
type MockProcessBinder struct {
	mock.Mock
}

func (m *MockProcessBinder) Bind(ifname string, gateway net.IP) error {
	args := m.Called(ifname, gateway)
	return args.Error(0)
}

func (m *MockProcessBinder) Release() error {
	args := m.Called()
	return args.Error(0)
}

// FakeLossWatcher lets tests trigger the loss callback directly.
type FakeLossWatcher struct {
	mu      sync.Mutex
	onLoss  func()
	stopped bool
}

func (w *FakeLossWatcher) Watch(ifname string, onLoss func()) (func(), error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onLoss = onLoss
	w.stopped = false
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		w.stopped = true
	}, nil
}

// TriggerLoss simulates the OS reporting the network gone.
func (w *FakeLossWatcher) TriggerLoss() {
	w.mu.Lock()
	cb := w.onLoss
	w.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// Stopped reports whether the watch was unregistered.
func (w *FakeLossWatcher) Stopped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stopped
}
