package loopback

import (
	"errors"
	"sync"

	"github.com/XC-/relay"
)

// ReasonRemoteUserTerminated is the HCI reason for a disconnection
// requested by the remote user.
const ReasonRemoteUserTerminated = 0x13

var errUnknownConn = errors.New("loopback: unknown connection")

// A Host is the central end of loopback links.
type Host struct {
	addr relay.BDAddr

	// connected is called when a link comes up or fails to.
	connected func(c relay.Conn, err error)

	// disconnected is called when a link goes down.
	disconnected func(c relay.Conn, reason uint8)

	mu    sync.Mutex
	conns map[*Conn]struct{}
}

// A Handler sets a callback of a Host.
type Handler func(*Host)

// Connected sets a function to be called when a link comes up, or fails to.
func Connected(f func(relay.Conn, error)) Handler {
	return func(h *Host) { h.connected = f }
}

// Disconnected sets a function to be called when a link goes down.
func Disconnected(f func(relay.Conn, uint8)) Handler {
	return func(h *Host) { h.disconnected = f }
}

// NewHost returns a host at addr.
func NewHost(addr relay.BDAddr, hh ...Handler) *Host {
	h := &Host{addr: addr, conns: make(map[*Conn]struct{})}
	h.Handle(hh...)
	return h
}

// Handle registers the specified handlers.
func (h *Host) Handle(hh ...Handler) {
	for _, f := range hh {
		f(h)
	}
}

// Connect links the host to s. The Connected handler is called before
// Connect returns. If the attempt fails, as arranged by FailWith, the
// error is passed to the handler and returned.
func (h *Host) Connect(s *Server, opts ...ConnOption) (*Conn, error) {
	c := newConn(h, s, opts)
	if c.fail != nil {
		c.closed = true
		if h.connected != nil {
			h.connected(c, c.fail)
		}
		return c, c.fail
	}
	h.mu.Lock()
	h.conns[c] = struct{}{}
	h.mu.Unlock()
	if h.connected != nil {
		h.connected(c, nil)
	}
	return c, nil
}

// Disconnect closes c and calls the Disconnected handler.
func (h *Host) Disconnect(c *Conn, reason uint8) error {
	h.mu.Lock()
	_, ok := h.conns[c]
	delete(h.conns, c)
	h.mu.Unlock()
	if !ok {
		return errUnknownConn
	}
	c.Close()
	if h.disconnected != nil {
		h.disconnected(c, reason)
	}
	return nil
}

// Conns returns the number of open links.
func (h *Host) Conns() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
