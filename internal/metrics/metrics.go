// Package metrics exposes Prometheus counters for the transport and binder.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Registry holds all apwire metrics.
type Registry struct {
	// Transport metrics
	HTTPRequests    *prometheus.CounterVec // labels: transport, outcome
	Fallbacks       prometheus.Counter
	ProbeAttempts   *prometheus.CounterVec // labels: outcome
	PortScanSeconds prometheus.Histogram

	// Binder metrics
	Binds   *prometheus.CounterVec // labels: result
	Unbinds prometheus.Counter

	// Auth metrics
	Logins *prometheus.CounterVec // labels: result
}

// Get returns the global metrics registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = newRegistry(prometheus.DefaultRegisterer)
	})
	return registry
}

func newRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "transport",
			Name:      "http_requests_total",
			Help:      "HTTP requests by transport path and outcome.",
		}, []string{"transport", "outcome"}),

		Fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "transport",
			Name:      "fallbacks_total",
			Help:      "Requests retried on the secondary transport.",
		}),

		ProbeAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "transport",
			Name:      "probe_attempts_total",
			Help:      "Raw TCP connectivity probes by outcome.",
		}, []string{"outcome"}),

		PortScanSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "apwire",
			Subsystem: "transport",
			Name:      "port_scan_duration_seconds",
			Help:      "Wall time of full port scans.",
			Buckets:   prometheus.DefBuckets,
		}),

		Binds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "netbind",
			Name:      "binds_total",
			Help:      "Network bind attempts by result.",
		}, []string{"result"}),

		Unbinds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "netbind",
			Name:      "unbinds_total",
			Help:      "Unbind calls.",
		}),

		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apwire",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
	}
}

// NewTestRegistry returns a registry backed by an isolated Prometheus
// registerer, for tests that must not pollute the global one.
func NewTestRegistry() *Registry {
	return newRegistry(prometheus.NewRegistry())
}
