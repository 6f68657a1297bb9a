package relay

import "fmt"

// A Binding assigns a relay channel to a device.
type Binding struct {
	Channel uint8
	Device  Device
}

// A ChannelMap maps devices to relay channels and back. It is built
// once and never modified, so it may be shared without locking.
type ChannelMap struct {
	byName    map[string]uint8
	byChannel map[uint8]Device
}

// NewChannelMap builds a map from bb. Every channel and every device
// name may appear at most once.
func NewChannelMap(bb ...Binding) (*ChannelMap, error) {
	m := &ChannelMap{
		byName:    make(map[string]uint8, len(bb)),
		byChannel: make(map[uint8]Device, len(bb)),
	}
	for _, b := range bb {
		if b.Device == nil || b.Device.Name() == "" {
			return nil, fmt.Errorf("channel %d: no device", b.Channel)
		}
		name := b.Device.Name()
		if _, dup := m.byChannel[b.Channel]; dup {
			return nil, fmt.Errorf("channel %d bound twice", b.Channel)
		}
		if _, dup := m.byName[name]; dup {
			return nil, fmt.Errorf("device %q bound twice", name)
		}
		m.byChannel[b.Channel] = b.Device
		m.byName[name] = b.Channel
	}
	return m, nil
}

// Channel returns the relay channel of d.
func (m *ChannelMap) Channel(d Device) (uint8, error) {
	if d == nil {
		return 0, fmt.Errorf("nil device: %w", ErrUnresolvedChannel)
	}
	ch, ok := m.byName[d.Name()]
	if !ok {
		return 0, fmt.Errorf("device %q: %w", d.Name(), ErrUnresolvedChannel)
	}
	return ch, nil
}

// Device returns the device bound to channel ch.
func (m *ChannelMap) Device(ch uint8) (Device, error) {
	d, ok := m.byChannel[ch]
	if !ok {
		return nil, fmt.Errorf("channel %d: %w", ch, ErrUnresolvedChannel)
	}
	return d, nil
}

// Len returns the number of bindings.
func (m *ChannelMap) Len() int { return len(m.byChannel) }
