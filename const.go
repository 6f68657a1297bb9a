package relay

import "github.com/google/uuid"

// UUIDs of the relay GATT service and its output-state characteristic.
var (
	ServiceUUID     = uuid.MustParse("00000000-0096-7107-c967-c5cfb1c2482a")
	OutputStateUUID = uuid.MustParse("00000001-0096-7107-c967-c5cfb1c2482a")
)

// MaxPayloadLen is the capacity of the payload carried by an Event.
const MaxPayloadLen = 32

// EventSize is the size of an encoded Event on the wire:
// channel, value, payload length and the payload buffer.
const EventSize = 3 + MaxPayloadLen

// The full GATT handle range.
const (
	firstHandle = 0x0001
	lastHandle  = 0xffff
)

// Defaults used when no option overrides them.
const (
	defaultPeripheralCount = 1
	defaultQueueSize       = 5
	defaultBacklog         = 64
)

// The Bluetooth base UUID, 0000xxxx-0000-1000-8000-00805f9b34fb.
var baseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// UUID16 returns the 128-bit form of a 16-bit Bluetooth SIG UUID.
func UUID16(i uint16) uuid.UUID {
	u := baseUUID
	u[2] = byte(i >> 8)
	u[3] = byte(i)
	return u
}
