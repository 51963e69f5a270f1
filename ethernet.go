package net

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syo16/Protocol-stack/internal/errors"
)

// EtherType is a value of 1536 or greater which indicates
// the protocol type of a packet encapsulated in an ethernet frame.
type EtherType uint16

const (
	EtherTypeIPv4 EtherType = 0x0800
	EtherTypeARP  EtherType = 0x0806
)

// MAC is an ethernet media access control address.
type MAC [6]byte

// MACAddrLen is the length in bytes of a MAC address on the wire.
const MACAddrLen = 6

// BroadcastMAC is the broadcast MAC address.
var BroadcastMAC = MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// The zero MAC doubles as the "unspecified" sentinel: a table entry
// whose hardware address is the zero MAC has not been resolved yet,
// and an ARP request carries it as the unknown target address.

// ParseMAC parses a colon-separated MAC address such as "aa:bb:cc:dd:ee:ff".
func ParseMAC(s string) (MAC, error) {
	var mac MAC
	parts := strings.Split(s, ":")
	if len(parts) != 6 {
		return mac, errors.Errorf("parse MAC address %q: need 6 octets", s)
	}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return mac, errors.Annotatef(err, "parse MAC address %q", s)
		}
		mac[i] = byte(n)
	}
	return mac, nil
}

// String returns mac in colon-separated lowercase hex notation.
func (mac MAC) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x",
		mac[0], mac[1], mac[2], mac[3], mac[4], mac[5])
}
