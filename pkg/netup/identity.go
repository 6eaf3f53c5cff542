package netup

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/jackpal/gateway"
)

// HardwareID derives the device identity from a network interface's hardware
// address. It is computed once at startup and never changes for the process
// lifetime. The interface on the default gateway's network is preferred, but
// the identity must be derivable before the link is up, so it falls back to
// the first usable hardware address.
func HardwareID() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("listing interfaces: %w", err)
	}
	if gw, err := gateway.DiscoverGateway(); err == nil {
		if hw, ok := gatewayHardwareAddr(ifaces, gw); ok {
			return FormatHardwareAddr(hw), nil
		}
	}
	hw, err := fallbackHardwareAddr(ifaces)
	if err != nil {
		return "", err
	}
	return FormatHardwareAddr(hw), nil
}

func gatewayHardwareAddr(ifaces []net.Interface, gw net.IP) (net.HardwareAddr, bool) {
	for _, i := range ifaces {
		if len(i.HardwareAddr) == 0 {
			continue
		}
		addrs, err := i.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			_, nw, err := net.ParseCIDR(a.String())
			if err != nil {
				continue
			}
			if nw.Contains(gw) {
				return i.HardwareAddr, true
			}
		}
	}
	return nil, false
}

// fallbackHardwareAddr picks the first non-loopback interface with a
// hardware address, preferring interfaces that are up.
func fallbackHardwareAddr(ifaces []net.Interface) (net.HardwareAddr, error) {
	var candidate net.HardwareAddr
	for _, i := range ifaces {
		if i.Flags&net.FlagLoopback != 0 || len(i.HardwareAddr) == 0 {
			continue
		}
		if i.Flags&net.FlagUp != 0 {
			return i.HardwareAddr, nil
		}
		if candidate == nil {
			candidate = i.HardwareAddr
		}
	}
	if candidate == nil {
		return nil, errors.New("no interface with a hardware address")
	}
	return candidate, nil
}

// FormatHardwareAddr renders a hardware address as fixed-width lowercase
// hex, two zero-padded digits per byte.
func FormatHardwareAddr(hw net.HardwareAddr) string {
	var b strings.Builder
	for _, octet := range hw {
		fmt.Fprintf(&b, "%02x", octet)
	}
	return b.String()
}
