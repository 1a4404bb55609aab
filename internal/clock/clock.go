// Package clock provides a mockable time source for testing.
// In production, it simply wraps time.Now(). For tests, use MockClock.
package clock

import (
	"sync"
	"time"
)

// Clock is the interface for time operations.
// Use package-level functions for convenience, or inject a Clock for testing.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	Sleep(d time.Duration)
}

// --- Real Clock (simple wrapper) ---

// RealClock provides the actual system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t.
func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Sleep pauses the calling goroutine for d.
func (c *RealClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// --- Mock Clock (for testing) ---

// MockClock is a test clock with controllable time. Sleep advances the
// clock instead of blocking, so settle delays cost nothing in tests.
type MockClock struct {
	mu      sync.RWMutex
	current time.Time
	slept   []time.Duration
}

// NewMockClock creates a MockClock starting at t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{current: t}
}

// Now returns the mock's current time.
func (c *MockClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Since returns the mock time elapsed since t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Sleep advances the mock clock by d without blocking.
func (c *MockClock) Sleep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.slept = append(c.slept, d)
}

// Advance moves the mock clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Slept returns the durations passed to Sleep, in order.
func (c *MockClock) Slept() []time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]time.Duration, len(c.slept))
	copy(out, c.slept)
	return out
}

// --- Package-level default ---

var (
	defaultMu    sync.RWMutex
	defaultClock Clock = &RealClock{}
)

// SetDefault replaces the package-level clock. Returns the previous clock
// so tests can restore it.
func SetDefault(c Clock) Clock {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultClock
	defaultClock = c
	return prev
}

// Now returns the current time from the default clock.
func Now() time.Time {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClock.Now()
}

// Since returns the elapsed time from the default clock.
func Since(t time.Time) time.Duration {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClock.Since(t)
}
