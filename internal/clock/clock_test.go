package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClockNow(t *testing.T) {
	c := &RealClock{}
	before := time.Now()
	got := c.Now()
	assert.False(t, got.Before(before))
}

func TestMockClockSleepAdvances(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Sleep(900 * time.Millisecond)
	assert.Equal(t, start.Add(900*time.Millisecond), c.Now())
	assert.Equal(t, []time.Duration{900 * time.Millisecond}, c.Slept())
}

func TestMockClockSince(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Advance(5 * time.Second)
	assert.Equal(t, 5*time.Second, c.Since(start))
}

func TestSetDefaultRestores(t *testing.T) {
	mock := NewMockClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	prev := SetDefault(mock)
	defer SetDefault(prev)

	assert.Equal(t, mock.Now(), Now())
}
