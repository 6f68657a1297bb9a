package relay

// Do not re-order the bit flags below;
// they match the characteristic properties field on the air.

// Characteristic property flags.
const (
	charRead    = 1 << (iota + 1) // the characteristic may be read
	charWriteNR                   // the characteristic may be written to, with no reply
	charWrite                     // the characteristic may be written to, with a reply
	charNotify                    // the characteristic supports notifications
)

// Supported statuses for GATT characteristic write operations.
const (
	StatusSuccess                = attEcodeSuccess
	StatusInvalidHandle          = attEcodeInvalidHandle
	StatusWriteNotPermitted      = attEcodeWriteNotPerm
	StatusInvalidOffset          = attEcodeInvalidOffset
	StatusInvalidAttrValueLen    = attEcodeInvalAttrValueLen
	StatusUnexpectedError        = attEcodeUnlikely
	StatusInsufficientEncryption = attEcodeInsuffEnc
)

// A Request is the context for a request from a connected device.
type Request struct {
	Conn           Conn
	Service        *Service
	Characteristic *Characteristic
}

// A WriteRequest is a characteristic write from a connected device.
// Long values arrive as several requests with increasing offsets.
type WriteRequest struct {
	Request
	Offset int // offset of data in the characteristic value
}

// A WriteHandler handles GATT write requests.
// Write and WriteNR requests are presented identically;
// the transport sends a response when appropriate.
type WriteHandler interface {
	ServeWrite(r WriteRequest, data []byte) (status byte)
}

// WriteHandlerFunc is an adapter to allow the use of
// ordinary functions as WriteHandlers. If f is a function
// with the appropriate signature, WriteHandlerFunc(f) is a
// WriteHandler that calls f.
type WriteHandlerFunc func(r WriteRequest, data []byte) byte

// ServeWrite returns f(r, data).
func (f WriteHandlerFunc) ServeWrite(r WriteRequest, data []byte) byte {
	return f(r, data)
}

// A Characteristic is a BLE characteristic.
type Characteristic struct {
	uuid     UUID
	props    uint // enabled properties
	secure   uint // properties that require an encrypted link
	whandler WriteHandler

	service *Service
}

// HandleWrite makes the characteristic support write and
// write-no-response requests, and routes write requests to h.
// HandleWrite must be called before the service is served.
func (c *Characteristic) HandleWrite(h WriteHandler) {
	c.props |= charWrite | charWriteNR
	c.whandler = h
}

// HandleWriteFunc calls HandleWrite(WriteHandlerFunc(f)).
func (c *Characteristic) HandleWriteFunc(f func(r WriteRequest, data []byte) (status byte)) {
	c.HandleWrite(WriteHandlerFunc(f))
}

// RequireEncryption makes writes to the characteristic require an
// encrypted link.
func (c *Characteristic) RequireEncryption() {
	c.secure |= charWrite | charWriteNR
}

// UUID returns the characteristic's UUID.
func (c *Characteristic) UUID() UUID {
	return c.uuid
}

// Service returns the service the characteristic belongs to.
func (c *Characteristic) Service() *Service {
	return c.service
}

// Writable reports whether the characteristic accepts writes without response.
func (c *Characteristic) Writable() bool {
	return c.props&charWriteNR != 0 && c.whandler != nil
}

// Encrypted reports whether writes require an encrypted link.
func (c *Characteristic) Encrypted() bool {
	return c.secure&charWriteNR != 0
}

// Properties returns the characteristic property bits as declared over GATT.
func (c *Characteristic) Properties() uint8 {
	return uint8(c.props)
}

// ServeWrite routes a write to the characteristic's handler.
func (c *Characteristic) ServeWrite(r WriteRequest, data []byte) byte {
	if c.whandler == nil {
		return StatusWriteNotPermitted
	}
	r.Characteristic = c
	r.Service = c.service
	return c.whandler.ServeWrite(r, data)
}
