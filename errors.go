package relay

import (
	"errors"
	"fmt"
)

// Error classes. Specific errors below wrap one of these, so callers can
// test the class with errors.Is.
var (
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrNotFound          = errors.New("not found")
	ErrProtocolViolation = errors.New("protocol violation")
	ErrUnresolvedChannel = errors.New("unresolved relay channel")
)

var (
	// ErrNoSlot is returned by SlotTable.Reserve when no slot can take the connection.
	ErrNoSlot = fmt.Errorf("no open peripheral slot: %w", ErrResourceExhausted)

	// ErrBusy is returned by Central.Enqueue when the relay queue stays
	// full even after dropping its oldest event.
	ErrBusy = fmt.Errorf("relay queue busy: %w", ErrResourceExhausted)

	// ErrSlotTaken is returned by SlotTable.Reserve for a connection
	// that already owns a slot.
	ErrSlotTaken = fmt.Errorf("connection already holds a slot: %w", ErrProtocolViolation)

	// ErrSlotOpen is returned when releasing a slot that is already open.
	ErrSlotOpen = errors.New("peripheral slot already open")

	// ErrPayloadTooLong is returned when a payload exceeds MaxPayloadLen.
	ErrPayloadTooLong = fmt.Errorf("payload longer than %d bytes: %w", MaxPayloadLen, ErrProtocolViolation)

	// ErrClosed is returned by operations on a closed Central, Peripheral or connection.
	ErrClosed = errors.New("closed")
)
