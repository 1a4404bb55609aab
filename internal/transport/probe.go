package transport

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"apwire.dev/apwire/internal/metrics"
)

const (
	// perPortTimeout keeps each probe short; a filtered port should not
	// stall the whole scan.
	perPortTimeout = 750 * time.Millisecond

	scanWorkers = 4
)

// RawConnect opens and immediately closes a TCP connection through the bound
// interface. All errors collapse into false; this is a reachability probe,
// not a diagnostic.
func (b *Bound) RawConnect(ctx context.Context, host string, port int, timeout time.Duration) bool {
	dialer, err := b.dialer(timeout)
	if err != nil {
		metrics.Get().ProbeAttempts.WithLabelValues("not_bound").Inc()
		return false
	}

	dctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := dialer.DialContext(dctx, "tcp", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	if err != nil {
		metrics.Get().ProbeAttempts.WithLabelValues("closed").Inc()
		return false
	}
	conn.Close()
	metrics.Get().ProbeAttempts.WithLabelValues("open").Inc()
	return true
}

// ScanPorts probes each port and returns the sorted subset that accepted a
// connection. Probes run on a small worker pool; one port's failure never
// affects another's outcome.
func (b *Bound) ScanPorts(ctx context.Context, host string, ports []int) []int {
	start := time.Now()
	defer func() {
		metrics.Get().PortScanSeconds.Observe(time.Since(start).Seconds())
	}()

	jobs := make(chan int)
	var mu sync.Mutex
	var open []int

	var wg sync.WaitGroup
	for i := 0; i < scanWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for port := range jobs {
				if b.RawConnect(ctx, host, port, perPortTimeout) {
					mu.Lock()
					open = append(open, port)
					mu.Unlock()
				}
			}
		}()
	}

	for _, port := range ports {
		select {
		case <-ctx.Done():
			// Stop feeding; in-flight probes finish on their own timeouts.
			close(jobs)
			wg.Wait()
			sort.Ints(open)
			return open
		case jobs <- port:
		}
	}
	close(jobs)
	wg.Wait()

	sort.Ints(open)
	return open
}
