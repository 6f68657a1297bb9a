package relay

import "fmt"

// An Event is an output-state change travelling from the central to the
// peripherals. Its encoded size is always EventSize.
type Event struct {
	Channel    uint8 // relay channel of the target output device
	Value      uint8
	PayloadLen uint8
	Payload    [MaxPayloadLen]byte
}

// NewEvent returns a value-only event. The channel is stamped when the
// event is invoked for a device.
func NewEvent(value uint8) Event {
	return Event{Value: value}
}

// SetPayload copies b into the event payload.
func (e *Event) SetPayload(b []byte) error {
	if len(b) > MaxPayloadLen {
		return ErrPayloadTooLong
	}
	e.Payload = [MaxPayloadLen]byte{}
	copy(e.Payload[:], b)
	e.PayloadLen = uint8(len(b))
	return nil
}

// PayloadBytes returns the used part of the payload.
func (e *Event) PayloadBytes() []byte {
	n := int(e.PayloadLen)
	if n > MaxPayloadLen {
		n = MaxPayloadLen
	}
	return e.Payload[:n]
}

// Bytes returns the wire encoding of e.
func (e *Event) Bytes() []byte {
	b := make([]byte, EventSize)
	e.encode(b)
	return b
}

func (e *Event) encode(b []byte) {
	b[0] = e.Channel
	b[1] = e.Value
	b[2] = e.PayloadLen
	copy(b[3:], e.Payload[:])
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e Event) MarshalBinary() ([]byte, error) {
	if e.PayloadLen > MaxPayloadLen {
		return nil, ErrPayloadTooLong
	}
	return e.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
// b must be exactly EventSize bytes long.
func (e *Event) UnmarshalBinary(b []byte) error {
	if len(b) != EventSize {
		return fmt.Errorf("event is %d bytes, want %d: %w", len(b), EventSize, ErrProtocolViolation)
	}
	if b[2] > MaxPayloadLen {
		return ErrPayloadTooLong
	}
	e.Channel = b[0]
	e.Value = b[1]
	e.PayloadLen = b[2]
	copy(e.Payload[:], b[3:])
	return nil
}

func (e Event) String() string {
	return fmt.Sprintf("rc-%d v-%d p-%d", e.Channel, e.Value, e.PayloadLen)
}

// A Delivery is an event resolved to a local output device on the
// peripheral.
type Delivery struct {
	Device     Device
	Value      uint8
	PayloadLen uint8
	Payload    [MaxPayloadLen]byte
}
