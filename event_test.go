package relay

import (
	"bytes"
	"errors"
	"testing"
)

func TestEventBytes(t *testing.T) {
	e := Event{Channel: 3, Value: 1}
	if err := e.SetPayload([]byte("hi")); err != nil {
		t.Fatalf("SetPayload: %v", err)
	}
	b := e.Bytes()
	if len(b) != EventSize {
		t.Fatalf("Bytes: got %d bytes want %d", len(b), EventSize)
	}
	want := append([]byte{3, 1, 2, 'h', 'i'}, make([]byte, MaxPayloadLen-2)...)
	if !bytes.Equal(b, want) {
		t.Errorf("Bytes: got [% X] want [% X]", b, want)
	}

	var got Event
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != e {
		t.Errorf("UnmarshalBinary: got %v want %v", got, e)
	}
}

func TestEventSetPayload(t *testing.T) {
	e := NewEvent(7)
	if err := e.SetPayload(bytes.Repeat([]byte{0xff}, MaxPayloadLen)); err != nil {
		t.Fatalf("SetPayload(max): %v", err)
	}
	if err := e.SetPayload([]byte{1}); err != nil {
		t.Fatalf("SetPayload: %v", err)
	}
	// A shorter payload must not leave bytes of the previous one behind.
	if e.Payload[1] != 0 || !bytes.Equal(e.PayloadBytes(), []byte{1}) {
		t.Errorf("SetPayload: stale payload %v", e.Payload)
	}

	err := e.SetPayload(make([]byte, MaxPayloadLen+1))
	if !errors.Is(err, ErrPayloadTooLong) || !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("SetPayload(too long): got %v", err)
	}
}

func TestEventUnmarshalErrors(t *testing.T) {
	cases := []struct {
		name string
		b    []byte
	}{
		{name: "short", b: make([]byte, EventSize-1)},
		{name: "long", b: make([]byte, EventSize+1)},
		{name: "payload length", b: append([]byte{1, 1, MaxPayloadLen + 1}, make([]byte, MaxPayloadLen)...)},
	}
	for _, tt := range cases {
		var e Event
		if err := e.UnmarshalBinary(tt.b); !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("UnmarshalBinary(%s): got %v want %v", tt.name, err, ErrProtocolViolation)
		}
	}
}

func TestEventMarshalBinary(t *testing.T) {
	if _, err := (Event{PayloadLen: MaxPayloadLen + 1}).MarshalBinary(); !errors.Is(err, ErrPayloadTooLong) {
		t.Errorf("MarshalBinary: got %v want %v", err, ErrPayloadTooLong)
	}
	b, err := (Event{Channel: 9, Value: 4}).MarshalBinary()
	if err != nil || b[0] != 9 || b[1] != 4 || b[2] != 0 {
		t.Errorf("MarshalBinary: got [% X], %v", b, err)
	}
}

func TestEventString(t *testing.T) {
	if got, want := (Event{Channel: 3, Value: 1, PayloadLen: 2}).String(), "rc-3 v-1 p-2"; got != want {
		t.Errorf("String: got %q want %q", got, want)
	}
}

func TestStatusError(t *testing.T) {
	cases := []struct {
		status   byte
		str      string
		protocol bool
	}{
		{status: StatusInvalidOffset, str: "att: invalid offset", protocol: true},
		{status: StatusInvalidAttrValueLen, str: "att: invalid attribute value length", protocol: true},
		{status: StatusInsufficientEncryption, str: "att: insufficient encryption"},
		{status: 0x80, str: "att: status 0x80"},
	}
	for _, tt := range cases {
		err := StatusError(tt.status)
		if err.Error() != tt.str {
			t.Errorf("StatusError(%#x): got %q want %q", tt.status, err.Error(), tt.str)
		}
		if errors.Is(err, ErrProtocolViolation) != tt.protocol {
			t.Errorf("errors.Is(StatusError(%#x), ErrProtocolViolation): got %t", tt.status, !tt.protocol)
		}
	}
}
