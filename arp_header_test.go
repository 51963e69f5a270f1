package net

import (
	"testing"
)

func TestARPMessage(t *testing.T) {
	spa, _ := ParseIPv4("10.0.0.1")
	tpa, _ := ParseIPv4("10.0.0.2")
	sha, _ := ParseMAC("02:00:00:00:00:01")
	msg := arpMessage{
		hrd: arpHardwareEthernet,
		pro: uint16(EtherTypeIPv4),
		hln: MACAddrLen,
		pln: IPv4AddrLen,
		op:  arpOpRequest,
		sha: sha,
		spa: spa,
		tha: MAC{},
		tpa: tpa,
	}
	var read arpMessage

	buf := make([]byte, arpMessageLen)
	writeARPMessage(&msg, buf)
	read, err := parseARPMessage(buf)
	if err != nil {
		t.Fatalf("parse ARP message: %v", err)
	}

	if msg != read {
		t.Error("Parsed ARP message isn't equivalent to input")
	}
}

func TestARPMessageShort(t *testing.T) {
	_, err := parseARPMessage(make([]byte, arpMessageLen-1))
	if err == nil {
		t.Error("parse of short buffer succeeded; want error")
	}
}

func TestARPMessageValid(t *testing.T) {
	good := arpMessage{
		hrd: arpHardwareEthernet,
		pro: uint16(EtherTypeIPv4),
		hln: MACAddrLen,
		pln: IPv4AddrLen,
		op:  arpOpReply,
	}
	if !good.valid() {
		t.Error("well-formed message reported invalid")
	}

	bad := good
	bad.hrd = 6 // IEEE 802
	if bad.valid() {
		t.Error("non-ethernet hardware type reported valid")
	}
	bad = good
	bad.pro = uint16(EtherTypeARP)
	if bad.valid() {
		t.Error("non-IPv4 protocol type reported valid")
	}
	bad = good
	bad.hln = 4
	if bad.valid() {
		t.Error("wrong hardware length reported valid")
	}
	bad = good
	bad.pln = 16
	if bad.valid() {
		t.Error("wrong protocol length reported valid")
	}
}

func TestARPOpString(t *testing.T) {
	if got := arpOpRequest.String(); got != "request" {
		t.Errorf("unexpected opcode name: got %q; want %q", got, "request")
	}
	if got := arpOpReply.String(); got != "reply" {
		t.Errorf("unexpected opcode name: got %q; want %q", got, "reply")
	}
	if got := arpOp(7).String(); got != "unknown" {
		t.Errorf("unexpected opcode name: got %q; want %q", got, "unknown")
	}
}
