package net

import "sync"

// A LinkDevice is a handle on a physical or virtual link-layer device.
// It exposes the transmit capability that link-layer protocols such as
// ARP use to emit frames; reading frames is the device driver's job,
// which delivers them through a ProtocolMux.
//
// LinkDevices are safe for concurrent access.
type LinkDevice interface {
	// Name returns the device's name, such as "eth0".
	Name() string
	// MAC returns the device's MAC address, if one has been set.
	MAC() (ok bool, mac MAC)
	// Transmit writes a single frame with the payload b to the
	// destination MAC address dst with the given ether-type. If dst
	// is BroadcastMAC, the frame is broadcast to all devices on the
	// local network. Implementations must not retain b after
	// Transmit returns; callers may reuse the buffer.
	Transmit(b []byte, dst MAC, et EtherType) error
}

// A Family identifies a network-layer address family bound to a device.
type Family uint8

const (
	FamilyIPv4 Family = 0x02
)

// An Interface is the binding of a network-layer address to a LinkDevice.
// Resolution requests are made against an Interface so that replies and
// queued payloads are tied to the device the request went out on.
type Interface struct {
	Dev     LinkDevice
	Family  Family
	Unicast IPv4
}

// An InterfaceSet records which Interfaces are bound to which LinkDevices.
// An InterfaceSet is safe for concurrent access. The zero value
// InterfaceSet is a valid InterfaceSet.
type InterfaceSet struct {
	// since the zero value is valid, byDevice might be nil;
	// make sure to check first when modifying it
	byDevice map[LinkDevice][]*Interface
	mu       sync.RWMutex
}

// Add binds nif to its device, replacing any previous binding for the
// same device and family.
func (s *InterfaceSet) Add(nif *Interface) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byDevice == nil {
		s.byDevice = make(map[LinkDevice][]*Interface)
	}
	ifs := s.byDevice[nif.Dev]
	for i, other := range ifs {
		if other.Family == nif.Family {
			ifs[i] = nif
			return
		}
	}
	s.byDevice[nif.Dev] = append(ifs, nif)
}

// Remove removes the binding for the given device and family, if any.
func (s *InterfaceSet) Remove(dev LinkDevice, family Family) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ifs := s.byDevice[dev]
	for i, nif := range ifs {
		if nif.Family == family {
			copy(ifs[i:], ifs[i+1:])
			s.byDevice[dev] = ifs[:len(ifs)-1]
			return
		}
	}
}

// Get returns the Interface bound to dev for the given family.
func (s *InterfaceSet) Get(dev LinkDevice, family Family) (nif *Interface, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, nif := range s.byDevice[dev] {
		if nif.Family == family {
			return nif, true
		}
	}
	return nil, false
}

// A ProtocolHandler is called once per inbound frame of the ethernet
// protocol type it is registered for. b is the frame payload with the
// ethernet header already stripped, and dev is the device the frame
// arrived on. Handlers never return errors to the device layer;
// malformed input is simply dropped.
type ProtocolHandler func(b []byte, dev LinkDevice)

// A ProtocolMux dispatches inbound frames to the ProtocolHandler
// registered for their ethernet protocol type. A ProtocolMux is safe
// for concurrent access. The zero value ProtocolMux is a valid
// ProtocolMux.
type ProtocolMux struct {
	// since the zero value is valid, byType might be nil;
	// make sure to check first when modifying it
	byType map[EtherType]ProtocolHandler
	mu     sync.RWMutex
}

// Register stores f as the handler for frames of type et, overwriting
// any previously-registered handler. If f is nil, frames of type et
// will be dropped.
func (m *ProtocolMux) Register(et EtherType, f ProtocolHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f == nil {
		if m.byType == nil {
			// the mux is empty, so this delete operation is a no-op
			return
		}
		delete(m.byType, et)
		return
	}
	if m.byType == nil {
		m.byType = make(map[EtherType]ProtocolHandler)
	}
	m.byType[et] = f
}

// Deliver invokes the handler registered for et with the frame payload
// b and the originating device. Frames with no registered handler are
// dropped.
func (m *ProtocolMux) Deliver(et EtherType, b []byte, dev LinkDevice) {
	m.mu.RLock()
	f := m.byType[et]
	m.mu.RUnlock()
	if f != nil {
		f(b, dev)
	}
}
