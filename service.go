package relay

import "github.com/google/uuid"

// UUID is a 128-bit Bluetooth UUID.
type UUID = uuid.UUID

// A Service is a BLE service.
// Calls to AddCharacteristic must occur before the
// service is served.
type Service struct {
	uuid  UUID
	chars []*Characteristic
}

// NewService returns an empty service.
func NewService(u UUID) *Service {
	return &Service{uuid: u}
}

// AddCharacteristic adds a characteristic to a service.
// AddCharacteristic panics if the service already contains
// another characteristic with the same UUID.
func (s *Service) AddCharacteristic(u UUID) *Characteristic {
	for _, char := range s.chars {
		if char.uuid == u {
			panic("service already contains a characteristic with uuid " + u.String())
		}
	}

	char := &Characteristic{
		service: s,
		uuid:    u,
	}
	s.chars = append(s.chars, char)
	return char
}

// Characteristics returns the characteristics of the service, in the
// order they were added.
func (s *Service) Characteristics() []*Characteristic {
	return s.chars
}

// UUID returns the service's UUID.
func (s *Service) UUID() UUID {
	return s.uuid
}
