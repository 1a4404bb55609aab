package transport

import (
	"context"

	"apwire.dev/apwire/internal/logging"
	"apwire.dev/apwire/internal/metrics"
)

// Fallback tries the primary transport and retries the same exchange on the
// secondary when the primary fails at the transport level. HTTP status codes
// are application answers, not transport failures, and never trigger the
// fallback. This exists because pooled clients have been seen ignoring the
// bound dialer on some platforms; the raw path is the ground truth.
type Fallback struct {
	primary   Transport
	secondary Transport
	logger    *logging.Logger
}

// NewFallback composes the transport pair.
func NewFallback(primary, secondary Transport, logger *logging.Logger) *Fallback {
	if logger == nil {
		logger = logging.WithComponent("transport")
	}
	return &Fallback{primary: primary, secondary: secondary, logger: logger}
}

// Do implements Transport.
func (f *Fallback) Do(ctx context.Context, req *Request) (*Response, error) {
	resp, err := f.primary.Do(ctx, req)
	if err == nil {
		return resp, nil
	}

	te, ok := AsError(err)
	if !ok || !retryable(te.Kind) {
		return nil, err
	}

	f.logger.Warn("primary transport failed, retrying on raw path",
		"kind", te.Kind.String(), "cause", te.Cause, "url", req.URL)
	metrics.Get().Fallbacks.Inc()

	return f.secondary.Do(ctx, req)
}

// retryable selects the error subset worth a second attempt. NotBound is
// excluded: the secondary shares the same bound network and would fail the
// same way.
func retryable(k Kind) bool {
	return k == KindConnectFailed || k == KindTimeout
}
