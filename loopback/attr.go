package loopback

import (
	"github.com/XC-/relay"
	"github.com/google/uuid"
)

type attrType int

const (
	typService attrType = iota
	typCharacteristic
	typCharacteristicValue
)

// attr is one row of the GATT attribute table.
type attr struct {
	h      uint16 // gatt handle number
	endh   uint16 // last handle of a service
	valueh uint16 // value handle of a characteristic declaration
	typ    attrType
	uuid   uuid.UUID
	char   *relay.Characteristic
}

// matches reports whether a is of type typ and, unless u is zero, has uuid u.
func (a attr) matches(typ attrType, u uuid.UUID) bool {
	return a.typ == typ && (u == uuid.Nil || u == a.uuid)
}

func (a attr) attribute() relay.Attribute {
	return relay.Attribute{
		Handle:      a.h,
		EndHandle:   a.endh,
		ValueHandle: a.valueh,
		UUID:        a.uuid,
	}
}

func generateAttrs(svcs []*relay.Service, base uint16) *attrRange {
	svcs = append(defaultServices(), svcs...)
	var aa []attr
	n := base

	for _, svc := range svcs {
		first := len(aa)
		aa = append(aa, attr{h: n, typ: typService, uuid: svc.UUID()})
		n++
		for _, c := range svc.Characteristics() {
			aa = append(aa,
				attr{h: n, valueh: n + 1, typ: typCharacteristic, uuid: c.UUID(), char: c},
				attr{h: n + 1, typ: typCharacteristicValue, uuid: c.UUID(), char: c},
			)
			n += 2
		}
		aa[first].endh = n - 1
	}

	return &attrRange{aa: aa, base: base}
}

// defaultServices returns the GAP and GATT services every server carries.
func defaultServices() []*relay.Service {
	gap := relay.NewService(relay.UUID16(0x1800))
	gap.AddCharacteristic(relay.UUID16(0x2A00)) // device name
	gap.AddCharacteristic(relay.UUID16(0x2A01)) // appearance
	gatt := relay.NewService(relay.UUID16(0x1801))
	return []*relay.Service{gap, gatt}
}

// An attrRange is a contiguous range of attributes.
type attrRange struct {
	aa   []attr
	base uint16 // handle number for first attr in aa
}

const (
	tooSmall = -1
	tooLarge = -2
)

// idx returns the index into aa corresponding to handle h.
// If h is too small, idx returns tooSmall (-1).
// If h is too large, idx returns tooLarge (-2).
func (r *attrRange) idx(h int) int {
	if h < int(r.base) {
		return tooSmall
	}
	if h >= int(r.base)+len(r.aa) {
		return tooLarge
	}
	return h - int(r.base)
}

// At returns attr h.
func (r *attrRange) At(h uint16) (a attr, ok bool) {
	i := r.idx(int(h))
	if i < 0 {
		return attr{}, false
	}
	return r.aa[i], true
}

// Subrange returns attrs in range [start, end]; it may
// return an empty slice. Subrange does not panic for
// out-of-range start or end.
func (r *attrRange) Subrange(start, end uint16) []attr {
	startidx := r.idx(int(start))
	switch startidx {
	case tooSmall:
		startidx = 0
	case tooLarge:
		return []attr{}
	}

	endidx := r.idx(int(end) + 1) // [start, end] includes its upper bound!
	switch endidx {
	case tooSmall:
		return []attr{}
	case tooLarge:
		endidx = len(r.aa)
	}
	if endidx < startidx {
		return []attr{}
	}
	return r.aa[startidx:endidx]
}
