package relay

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// A Central relays events to the peripherals connected to it.
//
// The slot table and all discovery state belong to a single worker
// goroutine. Connection callbacks, discovery results and dispatch
// requests are posted to it, so callers never touch the table and it
// needs no lock.
type Central struct {
	opts     options
	log      logrus.FieldLogger
	channels *ChannelMap
	slots    *SlotTable
	queue    *Queue

	pending int32 // a dispatch run is posted and has not started yet

	mu        sync.Mutex
	mail      []func() // guarded by mu
	wake      chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewCentral returns a running Central that stamps events using cm.
func NewCentral(cm *ChannelMap, opts ...Option) *Central {
	o := defaultOptions()
	o.apply(opts)
	if o.peripheralCount < 1 {
		o.peripheralCount = defaultPeripheralCount
	}
	if o.backlog < 1 {
		o.backlog = defaultBacklog
	}
	c := &Central{
		opts:     o,
		log:      o.log.WithField("role", "central"),
		channels: cm,
		slots:    NewSlotTable(o.peripheralCount, o.policy),
		queue:    NewQueue(o.queueSize),
		mail:     make([]func(), 0, o.backlog),
		wake:     make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.loop()
	return c
}

func (c *Central) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.wake:
			if !c.drainMail() {
				return
			}
		case <-c.quit:
			return
		}
	}
}

// drainMail runs posted work in order until the mailbox is empty. It
// returns false once the Central is closed.
func (c *Central) drainMail() bool {
	for {
		c.mu.Lock()
		mail := c.mail
		c.mail = c.mail[len(c.mail):]
		c.mu.Unlock()
		if len(mail) == 0 {
			return true
		}
		for _, f := range mail {
			select {
			case <-c.quit:
				return false
			default:
			}
			f()
		}
	}
}

// post hands f to the worker. It never blocks; work is run in the
// order it was posted.
func (c *Central) post(f func()) bool {
	select {
	case <-c.quit:
		return false
	default:
	}
	c.mu.Lock()
	c.mail = append(c.mail, f)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
	return true
}

// Close stops the worker. Queued events are discarded.
func (c *Central) Close() error {
	err := ErrClosed
	c.closeOnce.Do(func() {
		close(c.quit)
		err = nil
	})
	<-c.done
	return err
}

// Connected is called by the transport when a link comes up, or fails
// to. Links on which the local device is not the central are ignored.
func (c *Central) Connected(conn Conn, err error) {
	info := conn.Info()
	log := c.log.WithField("peer", conn.RemoteAddr().String())
	if info.Role != RoleCentral {
		log.WithField("role", info.Role).Debug("skipping connection")
		return
	}
	if err != nil {
		log.WithError(err).Error("failed to connect")
		c.post(func() {
			if err := c.slots.Release(conn); err != nil {
				log.WithError(err).Debug("no slot to release")
			}
		})
		return
	}
	log.Debug("connected")
	c.post(func() { c.connected(conn, info) })
}

func (c *Central) connected(conn Conn, info ConnInfo) {
	log := c.log.WithField("peer", conn.RemoteAddr().String())
	i, err := c.slots.Reserve(conn)
	if err != nil {
		log.WithError(err).Error("unable to reserve peripheral slot for connection")
		return
	}
	log.WithFields(logrus.Fields{
		"slot":     i,
		"security": info.Security,
	}).Debug("current security for connection")
	c.startDiscovery(i)
	log.WithFields(logrus.Fields{
		"interval": info.Interval,
		"latency":  info.Latency,
		"mtu":      info.MTU,
	}).Debug("connection params")
}

// Disconnected is called by the transport when a link goes down. The
// slot is released even if discovery is still running on it.
func (c *Central) Disconnected(conn Conn, reason uint8) {
	c.post(func() {
		log := c.log.WithFields(logrus.Fields{
			"peer":   conn.RemoteAddr().String(),
			"reason": reason,
		})
		if err := c.slots.Release(conn); err != nil {
			log.WithError(err).Debug("disconnected")
			return
		}
		log.Debug("disconnected, slot released")
	})
}

// Unbond forgets the slot bound to addr under BindPeerAddress.
func (c *Central) Unbond(addr BDAddr) {
	c.post(func() { c.slots.Unbond(addr) })
}

// InvokeOutput stamps e with the relay channel of d and queues it.
// Nothing is queued if d has no channel.
func (c *Central) InvokeOutput(d Device, e Event) error {
	ch, err := c.channels.Channel(d)
	if err != nil {
		c.log.WithError(err).Debug("unable to retrieve relay channel for device")
		return err
	}
	e.Channel = ch
	c.log.WithField("event", e).Debug("send output")
	return c.Enqueue(e)
}

// Enqueue queues an already stamped event and requests a dispatch run.
func (c *Central) Enqueue(e Event) error {
	select {
	case <-c.quit:
		return ErrClosed
	default:
	}
	dropped, err := c.queue.Push(e, c.opts.enqueueTimeout)
	if dropped {
		c.log.Warn("relay queue full, dropped oldest event")
	}
	if err != nil {
		c.log.WithError(err).Warn("failed to queue output event")
		return err
	}
	c.submit()
	return nil
}

// submit requests a dispatch run. Requests made before the run starts
// coalesce into it.
func (c *Central) submit() {
	if atomic.CompareAndSwapInt32(&c.pending, 0, 1) {
		if !c.post(c.dispatch) {
			atomic.StoreInt32(&c.pending, 0)
		}
	}
}

// dispatch drains the queue, writing every event to every slot whose
// output-state handle is known.
func (c *Central) dispatch() {
	atomic.StoreInt32(&c.pending, 0)
	for {
		e, ok := c.queue.Get()
		if !ok {
			return
		}
		c.write(e)
	}
}

func (c *Central) write(e Event) {
	b := e.Bytes()
	for i := range c.slots.slots {
		s := &c.slots.slots[i]
		if s.state != SlotConnected {
			continue
		}
		if s.writeHandle == 0 {
			// Connected, but discovery has not found the characteristic yet.
			continue
		}
		if err := s.conn.WriteWithoutResponse(s.writeHandle, b); err != nil {
			c.log.WithError(err).WithField("slot", i).Error("failed to write output characteristic")
		}
	}
}

// Slots returns a snapshot of the slot table. The snapshot is taken by
// the worker after every callback and event posted before the call.
func (c *Central) Slots() []SlotInfo {
	res := make(chan []SlotInfo, 1)
	if !c.post(func() { res <- c.slots.Snapshot() }) {
		return nil
	}
	select {
	case ss := <-res:
		return ss
	case <-c.done:
		return nil
	}
}
