package net

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syo16/Protocol-stack/internal/errors"
)

// IPv4 is an IPv4 address in network byte order.
type IPv4 [4]byte

// IPv4AddrLen is the length in bytes of an IPv4 address on the wire.
const IPv4AddrLen = 4

// ParseIPv4 parses a dotted-decimal IPv4 address such as "10.0.0.1".
func ParseIPv4(s string) (IPv4, error) {
	var addr IPv4
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return addr, errors.Errorf("parse IPv4 address %q: need 4 octets", s)
	}
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return addr, errors.Annotatef(err, "parse IPv4 address %q", s)
		}
		addr[i] = byte(n)
	}
	return addr, nil
}

// String returns addr in dotted-decimal notation.
func (addr IPv4) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", addr[0], addr[1], addr[2], addr[3])
}
