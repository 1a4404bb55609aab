//go:build !linux
// +build !linux

package diag

import "errors"

// HardwareLink is the L1 detail for the bound interface.
type HardwareLink struct {
	Speed     uint32 `json:"speed_mbps"`
	Duplex    string `json:"duplex"`
	Autoneg   bool   `json:"autoneg"`
	Driver    string `json:"driver,omitempty"`
	Carrier   bool   `json:"carrier"`
	OperState string `json:"oper_state"`
}

func readHardwareLink(iface string) (*HardwareLink, error) {
	return nil, errors.New("hardware link info not supported on this platform")
}
