package relay

import "fmt"

const (
	attEcodeSuccess           = 0x00
	attEcodeInvalidHandle     = 0x01
	attEcodeReadNotPerm       = 0x02
	attEcodeWriteNotPerm      = 0x03
	attEcodeInvalidPDU        = 0x04
	attEcodeAuthentication    = 0x05
	attEcodeReqNotSupp        = 0x06
	attEcodeInvalidOffset     = 0x07
	attEcodeAuthorization     = 0x08
	attEcodePrepQueueFull     = 0x09
	attEcodeAttrNotFound      = 0x0a
	attEcodeAttrNotLong       = 0x0b
	attEcodeInsuffEncrKeySize = 0x0c
	attEcodeInvalAttrValueLen = 0x0d
	attEcodeUnlikely          = 0x0e
	attEcodeInsuffEnc         = 0x0f
	attEcodeUnsuppGrpType     = 0x10
	attEcodeInsuffResources   = 0x11
)

var attEcodeNames = map[byte]string{
	attEcodeSuccess:           "success",
	attEcodeInvalidHandle:     "invalid handle",
	attEcodeReadNotPerm:       "read not permitted",
	attEcodeWriteNotPerm:      "write not permitted",
	attEcodeInvalidPDU:        "invalid pdu",
	attEcodeAuthentication:    "insufficient authentication",
	attEcodeReqNotSupp:        "request not supported",
	attEcodeInvalidOffset:     "invalid offset",
	attEcodeAuthorization:     "insufficient authorization",
	attEcodePrepQueueFull:     "prepare queue full",
	attEcodeAttrNotFound:      "attribute not found",
	attEcodeAttrNotLong:       "attribute not long",
	attEcodeInsuffEncrKeySize: "insufficient encryption key size",
	attEcodeInvalAttrValueLen: "invalid attribute value length",
	attEcodeUnlikely:          "unlikely error",
	attEcodeInsuffEnc:         "insufficient encryption",
	attEcodeUnsuppGrpType:     "unsupported group type",
	attEcodeInsuffResources:   "insufficient resources",
}

// A StatusError is a non-success ATT status returned across the GATT
// boundary.
type StatusError byte

func (s StatusError) Error() string {
	if name, ok := attEcodeNames[byte(s)]; ok {
		return "att: " + name
	}
	return fmt.Sprintf("att: status 0x%02x", byte(s))
}

// Is lets a StatusError match the protocol-violation class it belongs to.
func (s StatusError) Is(target error) bool {
	switch target {
	case ErrProtocolViolation:
		return byte(s) == attEcodeInvalidOffset || byte(s) == attEcodeInvalAttrValueLen ||
			byte(s) == attEcodeInvalidPDU
	}
	return false
}
