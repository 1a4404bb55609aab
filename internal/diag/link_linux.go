//go:build linux
// +build linux

package diag

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/safchain/ethtool"
)

// HardwareLink is the L1 detail for the bound interface.
type HardwareLink struct {
	Speed     uint32 `json:"speed_mbps"`
	Duplex    string `json:"duplex"`
	Autoneg   bool   `json:"autoneg"`
	Driver    string `json:"driver,omitempty"`
	Carrier   bool   `json:"carrier"`
	OperState string `json:"oper_state"`
}

// readHardwareLink queries ethtool for speed/duplex, falling back to sysfs
// for virtual NICs and drivers that reject the ioctl. Wireless interfaces
// usually land on the sysfs path.
func readHardwareLink(iface string) (*HardwareLink, error) {
	hw := &HardwareLink{
		Duplex:    "unknown",
		OperState: readOperState(iface),
	}
	hw.Carrier, _ = readCarrier(iface)

	handle, err := ethtool.NewEthtool()
	if err != nil {
		return readSysfsLink(iface, hw)
	}
	defer handle.Close()

	if info, err := handle.DriverInfo(iface); err == nil {
		hw.Driver = info.Driver
	}

	settings, err := handle.GetLinkSettings(iface)
	if err != nil {
		return readSysfsLink(iface, hw)
	}

	hw.Speed = settings.Speed
	hw.Autoneg = settings.Autoneg != 0
	switch settings.Duplex {
	case ethtool.DUPLEX_FULL:
		hw.Duplex = "full"
	case ethtool.DUPLEX_HALF:
		hw.Duplex = "half"
	}
	return hw, nil
}

// readSysfsLink reads link speed and duplex from sysfs.
func readSysfsLink(iface string, hw *HardwareLink) (*HardwareLink, error) {
	if data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/speed", iface)); err == nil {
		s := strings.TrimSpace(string(data))
		if s != "" && s != "-1" {
			if v, err := strconv.ParseUint(s, 10, 32); err == nil {
				hw.Speed = uint32(v)
			}
		}
	}
	if data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/duplex", iface)); err == nil {
		d := strings.TrimSpace(string(data))
		if d == "full" || d == "half" {
			hw.Duplex = d
		}
	}
	return hw, nil
}

func readCarrier(iface string) (bool, error) {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/carrier", iface))
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(string(data)) == "1", nil
}

func readOperState(iface string) string {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/net/%s/operstate", iface))
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(data))
}
