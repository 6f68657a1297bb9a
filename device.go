package relay

// A Device is a logical output device, identified by name. The same name
// refers to the producer-side identity on the central and to the sink
// on the peripheral.
//
// A sink exposes its capabilities by also implementing ValueSetter,
// PayloadSetter, both or neither.
type Device interface {
	Name() string
}

// ValueSetter is implemented by devices that accept a scalar value.
type ValueSetter interface {
	SetValue(v uint8) error
}

// PayloadSetter is implemented by devices that accept a byte payload.
type PayloadSetter interface {
	SetPayload(b []byte) error
}

// DeviceName is a Device with no capabilities, for use where only the
// identity matters.
type DeviceName string

func (n DeviceName) Name() string { return string(n) }

// ValueSetterFunc is an adapter to allow the use of ordinary functions
// as value sinks.
type ValueSetterFunc struct {
	DeviceName
	F func(v uint8) error
}

// SetValue returns f.F(v).
func (f ValueSetterFunc) SetValue(v uint8) error { return f.F(v) }
