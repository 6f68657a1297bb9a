package relay

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// A Peripheral receives relayed events and delivers them to local
// output devices.
//
// Writes to the output-state characteristic are assembled into a
// holding buffer, resolved through the channel map and queued; a
// delivery goroutine drains the queue and calls the devices.
type Peripheral struct {
	log      logrus.FieldLogger
	channels *ChannelMap
	svc      *Service

	mu  sync.Mutex // guards buf
	buf [EventSize]byte

	deliveries chan Delivery
	kick       chan struct{}
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// NewPeripheral returns a running Peripheral that routes events using cm.
func NewPeripheral(cm *ChannelMap, opts ...Option) *Peripheral {
	o := defaultOptions()
	o.apply(opts)
	if o.queueSize < 1 {
		o.queueSize = defaultQueueSize
	}
	p := &Peripheral{
		log:        o.log.WithField("role", "peripheral"),
		channels:   cm,
		deliveries: make(chan Delivery, o.queueSize),
		kick:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	p.svc = NewService(ServiceUUID)
	char := p.svc.AddCharacteristic(OutputStateUUID)
	char.HandleWrite(p)
	char.RequireEncryption()
	go p.loop()
	return p
}

// Service returns the relay service, to be registered with the GATT
// server of the transport.
func (p *Peripheral) Service() *Service {
	return p.svc
}

// ServeWrite handles a write to the output-state characteristic.
//
// A write that does not fit in the event structure is rejected with
// StatusInvalidOffset and leaves the holding buffer untouched. Any other
// write is treated as completing the event. Events for unknown channels
// are dropped but still acknowledged, so the link is never stalled.
func (p *Peripheral) ServeWrite(r WriteRequest, data []byte) byte {
	log := p.log.WithFields(logrus.Fields{"offset": r.Offset, "len": len(data)})
	log.Debug("output write")
	if r.Offset < 0 || r.Offset+len(data) > EventSize {
		log.Warn("write past end of event rejected")
		return StatusInvalidOffset
	}

	// The fragment is applied to a copy, kept only if the event decodes.
	var ev Event
	p.mu.Lock()
	next := p.buf
	copy(next[r.Offset:], data)
	err := ev.UnmarshalBinary(next[:])
	if err == nil {
		p.buf = next
	}
	p.mu.Unlock()
	if err != nil {
		log.WithError(err).Warn("malformed event rejected")
		return StatusInvalidAttrValueLen
	}

	dev, err := p.channels.Device(ev.Channel)
	if err != nil {
		log.WithError(err).Debug("unable to retrieve device for channel")
		return StatusSuccess
	}

	d := Delivery{
		Device:     dev,
		Value:      ev.Value,
		PayloadLen: ev.PayloadLen,
		Payload:    ev.Payload,
	}
	select {
	case p.deliveries <- d:
	default:
		// The write is already acknowledged; the central cannot resend it.
		log.WithField("event", ev).Debug("delivery queue full, event dropped")
	}
	p.submit()
	return StatusSuccess
}

// submit requests a delivery run. It never blocks.
func (p *Peripheral) submit() {
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

func (p *Peripheral) loop() {
	defer close(p.done)
	for {
		select {
		case <-p.kick:
			p.drain()
		case <-p.quit:
			return
		}
	}
}

func (p *Peripheral) drain() {
	for {
		select {
		case d := <-p.deliveries:
			p.deliver(d)
		default:
			return
		}
	}
}

// deliver hands d to its device, preferring the payload over the value
// when the device accepts both.
func (p *Peripheral) deliver(d Delivery) {
	if d.Device == nil {
		p.log.Warn("no output device assigned")
		return
	}
	log := p.log.WithFields(logrus.Fields{"device": d.Device.Name(), "value": d.Value})
	log.Debug("trigger output change")

	var err error
	if ps, ok := d.Device.(PayloadSetter); ok && d.PayloadLen > 0 {
		err = ps.SetPayload(d.Payload[:d.PayloadLen])
	} else if vs, ok := d.Device.(ValueSetter); ok {
		err = vs.SetValue(d.Value)
	} else {
		log.Warn("device has no output capability")
		return
	}
	if err != nil {
		log.WithError(err).Error("output device failed")
	}
}

// Close stops the delivery goroutine. Pending deliveries are discarded.
func (p *Peripheral) Close() error {
	err := ErrClosed
	p.closeOnce.Do(func() {
		close(p.quit)
		err = nil
	})
	<-p.done
	return err
}
