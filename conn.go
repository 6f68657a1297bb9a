package relay

import (
	"bytes"
	"net"
	"time"
)

// A BDAddr (Bluetooth Device Address) is a hardware-addressed-based net.Addr.
type BDAddr struct{ net.HardwareAddr }

func (a BDAddr) Network() string { return "BLE" }

// Equal reports whether a and b are the same device address.
func (a BDAddr) Equal(b BDAddr) bool {
	return len(a.HardwareAddr) > 0 && bytes.Equal(a.HardwareAddr, b.HardwareAddr)
}

// MustParseBDAddr parses s as a colon separated device address and panics on error.
func MustParseBDAddr(s string) BDAddr {
	hw, err := net.ParseMAC(s)
	if err != nil {
		panic(err)
	}
	return BDAddr{hw}
}

// Role is the role the local device plays on a connection.
type Role int

const (
	RoleCentral Role = iota
	RolePeripheral
)

func (r Role) String() string {
	if r == RoleCentral {
		return "central"
	}
	return "peripheral"
}

// SecurityLevel is the security level of a connection.
type SecurityLevel int

const (
	SecurityNone          SecurityLevel = iota + 1 // no encryption, no authentication
	SecurityEncrypted                              // encryption, no MITM protection
	SecurityAuthenticated                          // encryption and MITM protection
	SecuritySecure                                 // LE secure connections
)

func (s SecurityLevel) String() string {
	switch s {
	case SecurityNone:
		return "L1"
	case SecurityEncrypted:
		return "L2"
	case SecurityAuthenticated:
		return "L3"
	case SecuritySecure:
		return "L4"
	}
	return "L0"
}

// ConnInfo describes a connection.
type ConnInfo struct {
	Role     Role
	Security SecurityLevel
	Interval time.Duration
	Latency  int
	MTU      int
}

// Conn is a link to a remote device, owned by the transport. Slots keep
// a Conn only as a reference; implementations must be comparable.
type Conn interface {
	// LocalAddr returns the address of the local device.
	LocalAddr() BDAddr

	// RemoteAddr returns the address of the remote device.
	RemoteAddr() BDAddr

	// Info returns the current connection parameters.
	Info() ConnInfo

	// Discover starts attribute discovery. Results are reported
	// through p.Func, possibly from another goroutine.
	Discover(p *DiscoverParams) error

	// WriteWithoutResponse writes data to the attribute value at handle
	// and does not wait for the remote side. data must not be retained.
	WriteWithoutResponse(handle uint16, data []byte) error

	// Close disconnects the connection.
	Close() error
}
