// Package loopback is an in-process transport for package relay.
//
// A Server holds the GATT attribute table of a simulated peripheral. A
// Host plays the central: Host.Connect links it to a Server and reports
// the new relay.Conn through the Connected handler, Host.Disconnect tears
// the link down and reports it through the Disconnected handler.
//
// Discovery results are delivered from a separate goroutine, as a radio
// would deliver them. Writes are served synchronously, split into
// MTU-sized fragments with increasing offsets, and may be dropped to
// model a lossy link.
package loopback
