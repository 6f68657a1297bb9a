// Package relay relays output-state changes from the central half of a
// split BLE device to its peripherals.
//
// A central keeps a fixed table of peripheral slots, one per link. When a
// link comes up the central discovers the relay service and its
// output-state characteristic exactly once and records the characteristic
// value handle in the slot. Producers hand events to the central, which
// queues them and writes each one, without response, to every slot whose
// discovery has completed.
//
// A peripheral exposes the relay service. Its write handler maps the
// channel number carried in the event to a local output device and hands
// the event to a delivery goroutine, which sets the device's value or
// payload.
//
//
// STATUS
//
// Delivery is best effort. Nothing is acknowledged or retried; the queue
// models current output state, so under load the oldest queued event is
// dropped in favour of the newest one.
//
//
// USAGE
//
// Both halves build a channel map from the same static configuration.
// The central binds device names; the peripheral binds its sinks:
//
//     cm, err := relay.NewChannelMap(
//     	relay.Binding{Channel: 3, Device: relay.DeviceName("caps_led")},
//     )
//     pm, err := relay.NewChannelMap(
//     	relay.Binding{Channel: 3, Device: capsLED}, // a relay.ValueSetter
//     )
//
// On the central, connection callbacks are forwarded to the Central and
// outputs are invoked by device:
//
//     c := relay.NewCentral(cm, relay.PeripheralCount(2))
//     defer c.Close()
//     // from the transport:
//     c.Connected(conn, nil)
//     c.Disconnected(conn, reason)
//     // from a producer:
//     err := c.InvokeOutput(relay.DeviceName("caps_led"), relay.NewEvent(1))
//
// On the peripheral, the relay service is registered with the GATT
// server of the transport:
//
//     p := relay.NewPeripheral(pm)
//     defer p.Close()
//     srv := loopback.NewServer(addr, p.Service())
//
// The loopback package provides an in-process transport suitable for
// tests and simulation.
package relay
