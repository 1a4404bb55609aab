package netbind

import (
	"context"
	"fmt"
	"strings"
	"time"

	"apwire.dev/apwire/internal/logging"
)

// NMCLIAssociator drives NetworkManager through nmcli. It is the production
// Associator on Linux desktops and SBCs; everything it needs from the system
// goes through a CommandExecutor so tests can fake the tool.
type NMCLIAssociator struct {
	exec   CommandExecutor
	logger *logging.Logger
}

// NewNMCLIAssociator creates an Associator backed by nmcli.
func NewNMCLIAssociator(exec CommandExecutor, logger *logging.Logger) *NMCLIAssociator {
	if exec == nil {
		exec = DefaultCommandExecutor
	}
	if logger == nil {
		logger = logging.WithComponent("nmcli")
	}
	return &NMCLIAssociator{exec: exec, logger: logger}
}

// Associate joins the SSID and returns the wireless interface that carries
// the connection. The connection profile is marked never-default so
// NetworkManager tolerates the AP having no uplink and keeps it off the
// host's default route until the binder asks for it.
func (a *NMCLIAssociator) Associate(ctx context.Context, ssid, password string) (string, error) {
	waitSecs := 10
	if deadline, ok := ctx.Deadline(); ok {
		remaining := int(time.Until(deadline).Seconds())
		if remaining >= 1 {
			waitSecs = remaining
		}
	}

	args := []string{"--wait", fmt.Sprintf("%d", waitSecs), "device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}

	if _, err := a.exec.RunCommand("nmcli", args...); err != nil {
		return "", fmt.Errorf("nmcli connect %q: %w", ssid, err)
	}

	ifname, err := a.deviceFor(ssid)
	if err != nil {
		return "", err
	}

	// The AP has no internet; stop NetworkManager from treating that as a
	// reason to score the connection down or steal the default route. The
	// modify only lands in the profile, so reapply pushes it onto the
	// already-active device instead of waiting for the next activation.
	if _, err := a.exec.RunCommand("nmcli", "connection", "modify", "id", ssid,
		"ipv4.never-default", "yes", "ipv6.never-default", "yes"); err != nil {
		a.logger.Debug("could not mark connection never-default", "ssid", ssid, "error", err)
	} else if _, err := a.exec.RunCommand("nmcli", "device", "reapply", ifname); err != nil {
		a.logger.Debug("could not reapply connection settings", "interface", ifname, "error", err)
	}

	a.logger.Info("associated", "ssid", ssid, "interface", ifname)
	return ifname, nil
}

// deviceFor resolves which device carries the active connection named ssid.
func (a *NMCLIAssociator) deviceFor(ssid string) (string, error) {
	out, err := a.exec.RunCommand("nmcli", "-t", "-f", "NAME,DEVICE", "connection", "show", "--active")
	if err != nil {
		return "", fmt.Errorf("nmcli active connections: %w", err)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.SplitN(line, ":", 2)
		if len(parts) == 2 && parts[0] == ssid && parts[1] != "" {
			return parts[1], nil
		}
	}
	return "", fmt.Errorf("no active device for connection %q", ssid)
}

// Disassociate brings the connection down. Missing profiles are not an error.
func (a *NMCLIAssociator) Disassociate(ssid string) error {
	out, err := a.exec.RunCommand("nmcli", "connection", "down", "id", ssid)
	if err != nil {
		if strings.Contains(out, "not an active connection") ||
			strings.Contains(err.Error(), "not an active connection") {
			return nil
		}
		return fmt.Errorf("nmcli disconnect %q: %w", ssid, err)
	}
	return nil
}

// DNSServers returns the IPv4 resolvers NetworkManager assigned on ifname.
func (a *NMCLIAssociator) DNSServers(ifname string) ([]string, error) {
	out, err := a.exec.RunCommand("nmcli", "-g", "IP4.DNS", "device", "show", ifname)
	if err != nil {
		return nil, fmt.Errorf("nmcli dns for %s: %w", ifname, err)
	}
	var servers []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			servers = append(servers, line)
		}
	}
	return servers, nil
}
