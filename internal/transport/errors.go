package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindNotBound: no live bound network exists.
	KindNotBound Kind = iota
	// KindConnectFailed: refused, unreachable, reset.
	KindConnectFailed
	// KindTimeout: dial or read deadline exceeded.
	KindTimeout
	// KindMalformed: the request or response could not be constructed/read.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindNotBound:
		return "not_bound"
	case KindConnectFailed:
		return "connect_failed"
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is the normalized transport failure. Cause keeps the verbose
// platform detail for logs; callers branch on Kind only.
type Error struct {
	Kind  Kind
	Cause string
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %s", e.Kind, e.Cause)
}

// ErrNotBound is returned when a request is attempted without a bound network.
var ErrNotBound = &Error{Kind: KindNotBound, Cause: "no bound network"}

// AsError extracts a transport Error from an error chain.
func AsError(err error) (*Error, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// Normalize maps an arbitrary error from the HTTP stack into *Error.
// Already-normalized errors pass through unchanged.
func Normalize(err error) *Error {
	if te, ok := AsError(err); ok {
		return te
	}

	var uerr *url.Error
	if errors.As(err, &uerr) {
		// Classify by the wrapped cause, keep the full text.
		inner := Normalize(uerr.Err)
		return &Error{Kind: inner.Kind, Cause: uerr.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Cause: err.Error()}
	}

	// A caller-initiated abort is a deadline the caller chose, not a broken
	// exchange; keep it out of the malformed bucket.
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindTimeout, Cause: err.Error()}
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Kind: KindTimeout, Cause: err.Error()}
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE):
		return &Error{Kind: KindConnectFailed, Cause: err.Error()}
	}

	var operr *net.OpError
	if errors.As(err, &operr) {
		return &Error{Kind: KindConnectFailed, Cause: err.Error()}
	}

	return &Error{Kind: KindMalformed, Cause: err.Error()}
}
