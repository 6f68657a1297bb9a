package loopback

import (
	"sync"

	"github.com/XC-/relay"
)

// A Server is the GATT server of a simulated peripheral.
type Server struct {
	addr  relay.BDAddr
	attrs *attrRange

	mu     sync.Mutex // serializes writes, as a single radio would
	writes int
}

// NewServer returns a server at addr hosting svcs after the default GAP
// and GATT services. Services must be complete before they are served.
func NewServer(addr relay.BDAddr, svcs ...*relay.Service) *Server {
	return &Server{
		addr:  addr,
		attrs: generateAttrs(svcs, 1), // ble handles start at 1
	}
}

// Addr returns the server's device address.
func (s *Server) Addr() relay.BDAddr { return s.addr }

// Writes returns the number of write requests the server has accepted.
func (s *Server) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// find returns the attributes p asks for, in handle order.
func (s *Server) find(p *relay.DiscoverParams) []relay.Attribute {
	typ := typService
	if p.Type == relay.DiscoverCharacteristic {
		typ = typCharacteristic
	}
	var found []relay.Attribute
	for _, a := range s.attrs.Subrange(p.StartHandle, p.EndHandle) {
		if a.matches(typ, p.UUID) {
			found = append(found, a.attribute())
		}
	}
	return found
}

// write serves a write to the value at handle h, fragmenting data to
// fit the connection MTU.
func (s *Server) write(c *Conn, h uint16, data []byte) error {
	a, ok := s.attrs.At(h)
	if !ok || a.typ != typCharacteristicValue {
		return relay.StatusError(relay.StatusInvalidHandle)
	}
	if !a.char.Writable() {
		return relay.StatusError(relay.StatusWriteNotPermitted)
	}
	if a.char.Encrypted() && c.info.Security < relay.SecurityEncrypted {
		return relay.StatusError(relay.StatusInsufficientEncryption)
	}

	chunk := c.info.MTU - 3 // att opcode and handle
	if chunk < 1 {
		chunk = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	off := 0
	for {
		end := off + chunk
		if end > len(data) {
			end = len(data)
		}
		r := relay.WriteRequest{Request: relay.Request{Conn: c}, Offset: off}
		if status := a.char.ServeWrite(r, data[off:end]); status != relay.StatusSuccess {
			return relay.StatusError(status)
		}
		s.writes++
		off = end
		if off >= len(data) {
			return nil
		}
	}
}
