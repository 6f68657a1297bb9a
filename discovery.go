package relay

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DiscoverType selects what a discovery procedure looks for.
type DiscoverType int

const (
	DiscoverPrimary DiscoverType = iota
	DiscoverCharacteristic
)

func (t DiscoverType) String() string {
	if t == DiscoverPrimary {
		return "primary"
	}
	return "characteristic"
}

// IterAction tells the transport whether to keep reporting attributes.
type IterAction int

const (
	IterStop IterAction = iota
	IterContinue
)

// An Attribute is a discovery result.
// For services, Handle and EndHandle bound the service.
// For characteristics, Handle is the declaration and ValueHandle the value.
type Attribute struct {
	Handle      uint16
	EndHandle   uint16
	ValueHandle uint16
	UUID        uuid.UUID
}

// DiscoverFunc receives discovery results. A nil attribute signals that
// discovery is complete.
type DiscoverFunc func(c Conn, a *Attribute, p *DiscoverParams) IterAction

// DiscoverParams describes a discovery procedure.
// A zero UUID matches every attribute of the requested type.
type DiscoverParams struct {
	UUID        uuid.UUID
	Type        DiscoverType
	StartHandle uint16
	EndHandle   uint16
	Func        DiscoverFunc
}

// The functions below implement two-phase discovery for a central slot:
// the relay service first, then the output-state characteristic inside
// it. They run in the transport's context, so they never touch the slot
// table; results are posted to the Central's worker, which checks that
// the slot still carries the same cursor before applying them.

func (c *Central) startDiscovery(i int) {
	s := &c.slots.slots[i]
	if s.writeHandle != 0 {
		return
	}
	p := &DiscoverParams{
		UUID:        ServiceUUID,
		Type:        DiscoverPrimary,
		StartHandle: firstHandle,
		EndHandle:   lastHandle,
		Func:        c.serviceDiscovered,
	}
	s.cursor = p
	if err := s.conn.Discover(p); err != nil {
		c.log.WithError(err).WithField("slot", i).Error("discover failed")
		s.cursor = nil
		c.notifyDiscovered(i, 0)
	}
}

func (c *Central) serviceDiscovered(conn Conn, a *Attribute, p *DiscoverParams) IterAction {
	if a == nil {
		c.post(func() { c.discoveryComplete(conn, p) })
		return IterStop
	}
	c.log.WithField("handle", a.Handle).Debug("[ATTRIBUTE]")
	if a.UUID != ServiceUUID {
		c.log.Debug("found other service")
		return IterContinue
	}
	svc := *a
	c.post(func() { c.discoverCharacteristics(conn, p, svc) })
	return IterStop
}

func (c *Central) discoverCharacteristics(conn Conn, prev *DiscoverParams, svc Attribute) {
	i, s := c.cursorSlot(conn, prev)
	if s == nil {
		return
	}
	c.log.WithField("slot", i).Debug("found relay service")
	p := &DiscoverParams{
		Type:        DiscoverCharacteristic,
		StartHandle: svc.Handle + 1,
		EndHandle:   svc.EndHandle,
		Func:        c.characteristicDiscovered,
	}
	s.cursor = p
	if err := conn.Discover(p); err != nil {
		c.log.WithError(err).WithField("slot", i).Error("failed to start discovering relay characteristics")
		s.cursor = nil
		c.notifyDiscovered(i, 0)
	}
}

func (c *Central) characteristicDiscovered(conn Conn, a *Attribute, p *DiscoverParams) IterAction {
	if a == nil {
		c.post(func() { c.discoveryComplete(conn, p) })
		return IterStop
	}
	c.log.WithField("handle", a.Handle).Debug("[ATTRIBUTE]")
	if a.UUID != OutputStateUUID {
		return IterContinue
	}
	h := a.ValueHandle
	c.post(func() { c.recordWriteHandle(conn, p, h) })
	return IterStop
}

func (c *Central) recordWriteHandle(conn Conn, p *DiscoverParams, h uint16) {
	i, s := c.cursorSlot(conn, p)
	if s == nil {
		return
	}
	c.log.WithFields(logrus.Fields{"slot": i, "handle": h}).Debug("found update output handle")
	s.writeHandle = h
	s.cursor = nil
	c.notifyDiscovered(i, h)
}

func (c *Central) discoveryComplete(conn Conn, p *DiscoverParams) {
	i, s := c.cursorSlot(conn, p)
	if s == nil {
		return
	}
	c.log.WithField("slot", i).Debug("discover complete")
	s.cursor = nil
	if s.writeHandle == 0 {
		c.log.WithField("slot", i).Warn("relay characteristic not found, slot skipped until reconnect")
	}
	c.notifyDiscovered(i, s.writeHandle)
}

// cursorSlot returns the slot owning conn if p is still its active
// discovery procedure.
func (c *Central) cursorSlot(conn Conn, p *DiscoverParams) (int, *slot) {
	i, ok := c.slots.Lookup(conn)
	if !ok {
		c.log.Warn("no peripheral state found for connection")
		return -1, nil
	}
	s := &c.slots.slots[i]
	if s.cursor != p {
		c.log.WithField("slot", i).Debug("discarding stale discovery result")
		return -1, nil
	}
	return i, s
}

func (c *Central) notifyDiscovered(i int, h uint16) {
	if c.opts.discovered != nil {
		c.opts.discovered(i, h)
	}
}
