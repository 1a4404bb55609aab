package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTimeout struct{}

func (fakeTimeout) Error() string   { return "i/o timeout" }
func (fakeTimeout) Timeout() bool   { return true }
func (fakeTimeout) Temporary() bool { return true }

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"passthrough", &Error{Kind: KindNotBound, Cause: "x"}, KindNotBound},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"canceled", context.Canceled, KindTimeout},
		{"wrapped canceled", &url.Error{Op: "Get", URL: "http://x", Err: context.Canceled}, KindTimeout},
		{"net timeout", fakeTimeout{}, KindTimeout},
		{"refused", syscall.ECONNREFUSED, KindConnectFailed},
		{"unreachable", syscall.EHOSTUNREACH, KindConnectFailed},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("boom")}, KindConnectFailed},
		{"wrapped url error", &url.Error{Op: "Get", URL: "http://x", Err: syscall.ECONNREFUSED}, KindConnectFailed},
		{"unknown", errors.New("weird"), KindMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.err)
			assert.Equal(t, tt.want, got.Kind)
			assert.NotEmpty(t, got.Cause)
		})
	}
}

func TestAsErrorThroughWrapping(t *testing.T) {
	inner := &Error{Kind: KindTimeout, Cause: "slow"}
	wrapped := fmt.Errorf("request failed: %w", inner)

	te, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTimeout, te.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_bound", KindNotBound.String())
	assert.Equal(t, "connect_failed", KindConnectFailed.String())
	assert.Equal(t, "timeout", KindTimeout.String())
	assert.Equal(t, "malformed", KindMalformed.String())
}
