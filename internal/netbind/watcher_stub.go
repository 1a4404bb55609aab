//go:build !linux
// +build !linux

package netbind

// NoopLossWatcher never reports loss; used where netlink is unavailable.
type NoopLossWatcher struct{}

// NewLossWatcher returns the platform LossWatcher.
func NewLossWatcher() LossWatcher {
	return &NoopLossWatcher{}
}

func (w *NoopLossWatcher) Watch(ifname string, onLoss func()) (func(), error) {
	return func() {}, nil
}
