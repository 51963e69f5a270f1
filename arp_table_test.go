package net

import (
	"testing"
	"time"
)

type nullDevice struct {
	name string
	mac  MAC
}

func (d *nullDevice) Name() string { return d.name }

func (d *nullDevice) MAC() (bool, MAC) { return true, d.mac }

func (d *nullDevice) Transmit(b []byte, dst MAC, et EtherType) error { return nil }

func TestTableInsertLookup(t *testing.T) {
	var table arpTable
	pa, _ := ParseIPv4("10.0.0.5")
	ha, _ := ParseMAC("aa:bb:cc:dd:ee:ff")

	if e := table.lookup(pa); e != nil {
		t.Fatal("lookup on empty table returned an entry")
	}
	if !table.insert(pa, ha) {
		t.Fatal("insert into empty table failed")
	}
	e := table.lookup(pa)
	if e == nil {
		t.Fatal("lookup after insert returned nil")
	}
	if !e.resolved() || e.ha != ha {
		t.Errorf("unexpected entry: state=%v ha=%v; want resolved %v", e.state, e.ha, ha)
	}
}

func TestTableUpdateAbsent(t *testing.T) {
	var table arpTable
	pa, _ := ParseIPv4("10.0.0.5")
	ha, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	dev := &nullDevice{name: "test0"}

	if table.update(dev, pa, ha) {
		t.Error("update of absent entry reported success")
	}
	if e := table.lookup(pa); e != nil {
		t.Error("update of absent entry created an entry")
	}
}

func TestTableUpdateIdempotent(t *testing.T) {
	var table arpTable
	pa, _ := ParseIPv4("10.0.0.5")
	ha, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	dev := &nullDevice{name: "test0"}

	table.insert(pa, ha)
	e := table.lookup(pa)
	first := e.timestamp

	if !table.update(dev, pa, ha) {
		t.Fatal("update of present entry failed")
	}
	if !e.resolved() || e.ha != ha || e.pa != pa {
		t.Errorf("repeated update changed observable state: state=%v pa=%v ha=%v",
			e.state, e.pa, e.ha)
	}
	if e.timestamp.Before(first) {
		t.Error("update moved the timestamp backwards")
	}
}

func TestTablePatrol(t *testing.T) {
	var table arpTable
	now := time.Now()
	oldPA, _ := ParseIPv4("10.0.0.5")
	youngPA, _ := ParseIPv4("10.0.0.6")
	ha, _ := ParseMAC("aa:bb:cc:dd:ee:ff")

	table.insert(oldPA, ha)
	table.insert(youngPA, ha)
	table.lookup(oldPA).timestamp = now.Add(-arpTableTimeout - time.Second)
	table.lookup(youngPA).timestamp = now.Add(-arpTableTimeout + time.Second)

	table.patrol(now)

	if table.lookup(oldPA) != nil {
		t.Error("idle entry survived the patrol")
	}
	if table.lookup(youngPA) == nil {
		t.Error("young entry was cleared by the patrol")
	}
}

func TestTableClearWakesAndReleases(t *testing.T) {
	var table arpTable
	pa, _ := ParseIPv4("10.0.0.5")

	e := table.freeSlot()
	if e == nil {
		t.Fatal("freeSlot on empty table failed")
	}
	e.state = arpEntryPending
	e.pa = pa
	e.timestamp = time.Now()
	e.wake = make(chan struct{})
	e.data = getByteSlice(16)
	wake := e.wake

	table.clear(e)

	select {
	case <-wake:
	default:
		t.Error("clear did not wake waiters")
	}
	if e.state != arpEntryEmpty || e.data != nil || e.wake != nil {
		t.Errorf("clear left residue: state=%v data=%v wake=%v", e.state, e.data, e.wake)
	}
	if e.ha != (MAC{}) {
		t.Errorf("clear left a hardware address: %v", e.ha)
	}
}

func TestTableFullAllocation(t *testing.T) {
	var table arpTable
	ha, _ := ParseMAC("aa:bb:cc:dd:ee:ff")
	for i := 0; i < arpTableSize; i++ {
		pa := IPv4{10, byte(i >> 16), byte(i >> 8), byte(i)}
		if !table.insert(pa, ha) {
			t.Fatalf("insert %d failed before the table was full", i)
		}
	}
	if table.freeSlot() != nil {
		t.Error("freeSlot on a full table returned a slot")
	}
	pa := IPv4{192, 168, 0, 1}
	if table.insert(pa, ha) {
		t.Error("insert into a full table succeeded")
	}
}

func TestTableNoDuplicateAddresses(t *testing.T) {
	var table arpTable
	pa, _ := ParseIPv4("10.0.0.5")
	ha1, _ := ParseMAC("aa:bb:cc:dd:ee:01")
	ha2, _ := ParseMAC("aa:bb:cc:dd:ee:02")
	dev := &nullDevice{name: "test0"}

	table.insert(pa, ha1)
	// the receive path only inserts when update reports no entry;
	// a refresh of a known address must go through update
	if !table.update(dev, pa, ha2) {
		t.Fatal("update of present entry failed")
	}

	var count int
	for i := range table.entries {
		e := &table.entries[i]
		if e.state != arpEntryEmpty && e.pa == pa {
			count++
			if e.ha != ha2 {
				t.Errorf("entry not refreshed: got %v; want %v", e.ha, ha2)
			}
		}
	}
	if count != 1 {
		t.Errorf("found %d entries for %v; want 1", count, pa)
	}
}
