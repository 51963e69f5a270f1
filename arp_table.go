package net

import (
	"time"

	"github.com/sirupsen/logrus"
)

const (
	arpTableSize    = 4096
	arpTableTimeout = 300 * time.Second
)

type arpEntryState uint8

const (
	// the slot is free
	arpEntryEmpty arpEntryState = iota
	// a request has been sent and no reply has arrived; the
	// hardware address is still the zero MAC sentinel
	arpEntryPending
	// both addresses are known
	arpEntryResolved
)

// An arpEntry is one slot in the resolution table: one protocol
// address, the hardware address it maps to, and the bookkeeping
// needed to age the mapping and to wake callers blocked on it.
type arpEntry struct {
	state     arpEntryState
	pa        IPv4
	ha        MAC // zero until state == arpEntryResolved
	timestamp time.Time

	// data holds at most one payload waiting to be transmitted once
	// the entry resolves. Only pending entries hold data, and the
	// table owns the buffer exclusively.
	data []byte
	// nif is the interface the resolution was requested under. The
	// queued payload is transmitted on nif's device even if the
	// resolving reply arrived elsewhere.
	nif *Interface

	// wake is closed to release every caller blocked on this entry
	// whenever it transitions to resolved or back to empty. It is
	// non-nil exactly while state == arpEntryPending.
	wake chan struct{}
}

func (e *arpEntry) resolved() bool {
	return e.state == arpEntryResolved
}

// broadcast releases all waiters blocked on e.
func (e *arpEntry) broadcast() {
	if e.wake != nil {
		close(e.wake)
		e.wake = nil
	}
}

// An arpTable is a fixed-size resolution table with linear-scan lookup
// and allocation. All methods assume the owning ARP's mutex is held.
//
// The table performs no eviction: when every slot is in use, allocation
// fails until the patrol clears idle entries.
type arpTable struct {
	entries [arpTableSize]arpEntry
}

// lookup returns the non-empty entry for pa, or nil.
func (t *arpTable) lookup(pa IPv4) *arpEntry {
	for i := range t.entries {
		e := &t.entries[i]
		if e.state != arpEntryEmpty && e.pa == pa {
			return e
		}
	}
	return nil
}

// freeSlot returns the first empty slot, or nil if the table is full.
// TODO: evict the least recently used entry instead of failing when
// the table is full.
func (t *arpTable) freeSlot() *arpEntry {
	for i := range t.entries {
		e := &t.entries[i]
		if e.state == arpEntryEmpty {
			return e
		}
	}
	return nil
}

// insert claims a free slot for a mapping learned passively from an
// inbound message, entering it directly in the resolved state. It
// returns false if the table is full.
func (t *arpTable) insert(pa IPv4, ha MAC) bool {
	e := t.freeSlot()
	if e == nil {
		return false
	}
	e.state = arpEntryResolved
	e.pa = pa
	e.ha = ha
	e.timestamp = time.Now()
	e.broadcast()
	return true
}

// update refreshes the entry for pa with the hardware address ha,
// observed on dev. If no entry for pa exists, update returns false and
// changes nothing. Otherwise the entry becomes resolved, any queued
// payload is transmitted exactly once, and all waiters are woken.
func (t *arpTable) update(dev LinkDevice, pa IPv4, ha MAC) bool {
	e := t.lookup(pa)
	if e == nil {
		return false
	}

	e.state = arpEntryResolved
	e.ha = ha
	e.timestamp = time.Now()

	// send the saved payload with the resolved hardware address
	if e.data != nil {
		if e.nif.Dev != dev {
			logrus.Warnf("arp: reply for %v arrived on %v; sending queued payload on %v",
				pa, dev.Name(), e.nif.Dev.Name())
			dev = e.nif.Dev
		}
		err := dev.Transmit(e.data, e.ha, EtherTypeIPv4)
		if err != nil {
			logrus.Debugf("arp: transmit queued payload for %v: %v", pa, err)
		}
		putByteSlice(e.data)
		e.data = nil
	}

	e.broadcast()
	return true
}

// clear releases the entry's queued payload, wakes any blocked
// waiters, and returns the slot to the empty state.
func (t *arpTable) clear(e *arpEntry) {
	if e.data != nil {
		putByteSlice(e.data)
		e.data = nil
	}
	e.state = arpEntryEmpty
	e.pa = IPv4{}
	e.ha = MAC{}
	e.timestamp = time.Time{}
	e.nif = nil
	e.broadcast()
}

// patrol clears every entry which has not been touched within the
// table timeout.
func (t *arpTable) patrol(now time.Time) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.state != arpEntryEmpty && now.Sub(e.timestamp) > arpTableTimeout {
			t.clear(e)
		}
	}
}
