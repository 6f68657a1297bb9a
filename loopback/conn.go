package loopback

import (
	"errors"
	"sync"
	"time"

	"github.com/XC-/relay"
)

// Default connection parameters.
const (
	DefaultMTU      = 65
	DefaultInterval = 7500 * time.Microsecond
)

var errNoCallback = errors.New("loopback: discover without callback")

// A Conn is the central's side of a loopback link.
type Conn struct {
	host *Host
	srv  *Server
	info relay.ConnInfo
	loss func() bool
	fail error

	mu     sync.Mutex
	closed bool
}

// A ConnOption configures a Conn.
type ConnOption func(*Conn)

// Security sets the security level of the link.
func Security(l relay.SecurityLevel) ConnOption {
	return func(c *Conn) { c.info.Security = l }
}

// MTU sets the ATT MTU of the link. Writes longer than MTU-3 bytes are
// delivered as several fragments.
func MTU(n int) ConnOption {
	return func(c *Conn) { c.info.MTU = n }
}

// Interval sets the connection interval reported by Info.
func Interval(d time.Duration) ConnOption {
	return func(c *Conn) { c.info.Interval = d }
}

// Loss makes writes vanish whenever f returns true.
func Loss(f func() bool) ConnOption {
	return func(c *Conn) { c.loss = f }
}

// AsPeripheral makes the local device the peripheral of the link.
func AsPeripheral() ConnOption {
	return func(c *Conn) { c.info.Role = relay.RolePeripheral }
}

// FailWith makes the connection attempt fail with err.
func FailWith(err error) ConnOption {
	return func(c *Conn) { c.fail = err }
}

func newConn(h *Host, s *Server, opts []ConnOption) *Conn {
	c := &Conn{
		host: h,
		srv:  s,
		info: relay.ConnInfo{
			Role:     relay.RoleCentral,
			Security: relay.SecurityEncrypted,
			Interval: DefaultInterval,
			MTU:      DefaultMTU,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conn) LocalAddr() relay.BDAddr  { return c.host.addr }
func (c *Conn) RemoteAddr() relay.BDAddr { return c.srv.addr }
func (c *Conn) Info() relay.ConnInfo     { return c.info }

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Discover reports the matching attributes of the server to p.Func
// from a new goroutine, followed by a nil attribute unless p.Func stops
// the procedure. Reporting ends silently if the link goes down.
func (c *Conn) Discover(p *relay.DiscoverParams) error {
	if c.isClosed() {
		return relay.ErrClosed
	}
	if p == nil || p.Func == nil {
		return errNoCallback
	}
	found := c.srv.find(p)
	go func() {
		for i := range found {
			if c.isClosed() {
				return
			}
			if p.Func(c, &found[i], p) == relay.IterStop {
				return
			}
		}
		if c.isClosed() {
			return
		}
		p.Func(c, nil, p)
	}()
	return nil
}

// WriteWithoutResponse writes data to the server. A write lost on the
// link reports no error.
func (c *Conn) WriteWithoutResponse(h uint16, data []byte) error {
	if c.isClosed() {
		return relay.ErrClosed
	}
	if c.loss != nil && c.loss() {
		return nil
	}
	return c.srv.write(c, h, data)
}

// Close closes the link without notifying the host's handlers.
// Use Host.Disconnect to simulate a disconnection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return relay.ErrClosed
	}
	c.closed = true
	return nil
}

func (c *Conn) String() string {
	return c.host.addr.String() + "->" + c.srv.addr.String()
}
