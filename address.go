package adssymbols

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/ads-symbols/errors"
)

// DefaultPort is the AMS port of the first PLC runtime.
const DefaultPort uint16 = 851

// Address identifies a controller runtime by AMS net id and port.
type Address struct {
	NetID [6]byte
	Port  uint16
}

// ParseAddress parses "a.b.c.d.e.f" or "a.b.c.d.e.f:port". The port
// defaults to DefaultPort.
func ParseAddress(s string) (Address, error) {
	var addr Address
	netID, port, hasPort := strings.Cut(strings.TrimSpace(s), ":")

	parts := strings.Split(netID, ".")
	if len(parts) != 6 {
		return addr, errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("net id %q must have six octets", netID))
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return addr, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Detail("net id octet %q", p).
				Cause(err).
				Build()
		}
		addr.NetID[i] = byte(v)
	}

	addr.Port = DefaultPort
	if hasPort {
		v, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return addr, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Detail("port %q", port).
				Cause(err).
				Build()
		}
		addr.Port = uint16(v)
	}
	return addr, nil
}

// String formats the address as "a.b.c.d.e.f:port".
func (a Address) String() string {
	n := a.NetID
	return fmt.Sprintf("%d.%d.%d.%d.%d.%d:%d", n[0], n[1], n[2], n[3], n[4], n[5], a.Port)
}
