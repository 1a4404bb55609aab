package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersIncrement(t *testing.T) {
	r := NewTestRegistry()

	r.HTTPRequests.WithLabelValues("pooled", "ok").Inc()
	r.HTTPRequests.WithLabelValues("pooled", "ok").Inc()
	r.Fallbacks.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("pooled", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Fallbacks))
}

func TestGetReturnsSameRegistry(t *testing.T) {
	assert.Same(t, Get(), Get())
}
