package net

import "github.com/syo16/Protocol-stack/internal/parse"

// https://en.wikipedia.org/wiki/Address_Resolution_Protocol#Packet_structure

const (
	// length in bytes of an ARP-over-ethernet message
	arpMessageLen = 28

	arpHardwareEthernet = 0x0001
)

type arpOp uint16

const (
	arpOpRequest arpOp = 1
	arpOpReply   arpOp = 2
)

func (op arpOp) String() string {
	switch op {
	case arpOpRequest:
		return "request"
	case arpOpReply:
		return "reply"
	default:
		return "unknown"
	}
}

type arpMessage struct {
	hrd, pro uint16
	hln, pln byte // hln is 6; pln is 4
	op       arpOp
	sha      MAC
	spa      IPv4
	tha      MAC
	tpa      IPv4
}

// valid returns true if the message's fixed fields describe an
// IPv4-over-ethernet mapping; anything else is dropped by the
// receive path.
func (m *arpMessage) valid() bool {
	return m.hrd == arpHardwareEthernet &&
		m.pro == uint16(EtherTypeIPv4) &&
		m.hln == MACAddrLen &&
		m.pln == IPv4AddrLen
}

func parseARPMessage(b []byte) (m arpMessage, err error) {
	// we use GetByte and GetBytes to consume b;
	// they panic with an appropriate error if b
	// is not long enough, and we return that error
	defer func() {
		r := recover()
		if r != nil {
			err = r.(error)
		}
	}()

	m.hrd = parse.GetUint16(&b)
	m.pro = parse.GetUint16(&b)
	m.hln = parse.GetByte(&b)
	m.pln = parse.GetByte(&b)
	m.op = arpOp(parse.GetUint16(&b))
	copy(m.sha[:], parse.GetBytes(&b, MACAddrLen))
	copy(m.spa[:], parse.GetBytes(&b, IPv4AddrLen))
	copy(m.tha[:], parse.GetBytes(&b, MACAddrLen))
	copy(m.tpa[:], parse.GetBytes(&b, IPv4AddrLen))
	return m, nil
}

// assumes that b is long enough to hold the encoding of m
func writeARPMessage(m *arpMessage, b []byte) {
	parse.PutUint16(&b, m.hrd)
	parse.PutUint16(&b, m.pro)
	parse.PutByte(&b, m.hln)
	parse.PutByte(&b, m.pln)
	parse.PutUint16(&b, uint16(m.op))
	copy(parse.GetBytes(&b, MACAddrLen), m.sha[:])
	copy(parse.GetBytes(&b, IPv4AddrLen), m.spa[:])
	copy(parse.GetBytes(&b, MACAddrLen), m.tha[:])
	copy(parse.GetBytes(&b, IPv4AddrLen), m.tpa[:])
}
