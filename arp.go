package net

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/syo16/Protocol-stack/internal/errors"
)

const (
	// how long a Resolve call blocks waiting for a reply
	arpResolveTimeout = time.Second
	// how often, at most, the receive path runs the aging patrol
	arpPatrolInterval = 10 * time.Second
)

// A ResolveResult is the outcome of a Resolve call.
type ResolveResult int

const (
	// ResolveFound means the hardware address was returned, either
	// from the cache or after blocking for a reply.
	ResolveFound ResolveResult = iota
	// ResolveQuery means no mapping was cached; a request has been
	// broadcast, and the queued payload, if any, will be transmitted
	// automatically once a reply arrives.
	ResolveQuery
	// ResolveError means resolution failed: the table is full, or no
	// reply arrived before the timeout.
	ResolveError
)

func (r ResolveResult) String() string {
	switch r {
	case ResolveFound:
		return "found"
	case ResolveQuery:
		return "query"
	case ResolveError:
		return "error"
	default:
		return "unknown"
	}
}

// ARP is an instance of the Address Resolution Protocol: it maps IPv4
// addresses to MAC addresses for the interfaces in an InterfaceSet,
// answering inbound requests for those interfaces' addresses and
// caching what it learns in a bounded table.
//
// An ARP is safe for concurrent access.
type ARP struct {
	ifaces *InterfaceSet
	mux    *ProtocolMux

	// mu guards the table and lastPatrol. Every table operation runs
	// with mu held; blocked Resolve callers release it while waiting
	// on an entry's wake channel and reacquire it before re-checking.
	mu         sync.Mutex
	table      arpTable
	lastPatrol time.Time
}

// NewARP creates a new ARP instance serving the interfaces in ifaces
// and registers its receive handler with mux. It must be called before
// any Resolve call.
func NewARP(ifaces *InterfaceSet, mux *ProtocolMux) *ARP {
	a := &ARP{
		ifaces:     ifaces,
		mux:        mux,
		lastPatrol: time.Now(),
	}
	mux.Register(EtherTypeARP, a.rx)
	return a
}

// Stop unregisters a's receive handler. Callers blocked in Resolve are
// not interrupted; they time out normally.
func (a *ARP) Stop() {
	a.mux.Register(EtherTypeARP, nil)
}

// Resolve resolves pa to a MAC address on behalf of nif.
//
// On a cache hit Resolve returns the mapping immediately with
// ResolveFound. If a resolution for pa is already in flight, Resolve
// re-broadcasts the request (in case the first was lost) and blocks
// until a reply arrives or one second passes; on timeout it clears the
// entry and returns ResolveError. Otherwise Resolve claims a table
// entry, broadcasts a request, and returns ResolveQuery without
// blocking.
//
// If data is non-nil, a copy of it is queued on the pending entry and
// transmitted to the resolved address (ether-type IPv4) as soon as a
// reply arrives. At most one payload is queued per pending address: a
// later Resolve call for the same unresolved address with a new
// payload replaces the queued one.
func (a *ARP) Resolve(nif *Interface, pa IPv4, data []byte) (MAC, ResolveResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	deadline := time.Now().Add(arpResolveTimeout)

	if e := a.table.lookup(pa); e != nil {
		if !e.resolved() {
			if data != nil {
				a.queuePayload(e, nif, data)
			}
			// a request is already outstanding; resend it in case
			// the first one was lost, then wait for the reply
			a.sendRequest(nif, pa)
			for e.state == arpEntryPending && e.pa == pa && time.Now().Before(deadline) {
				a.wait(e.wake, deadline)
			}
			if e.state == arpEntryEmpty || e.pa != pa || !e.resolved() {
				// the entry was cleared, the slot was recycled for
				// another address, or the deadline passed; only
				// clear the entry if it is still ours and still
				// unresolved (a concurrent success wins)
				if e.state == arpEntryPending && e.pa == pa {
					a.table.clear(e)
				}
				return MAC{}, ResolveError
			}
		}
		return e.ha, ResolveFound
	}

	e := a.table.freeSlot()
	if e == nil {
		return MAC{}, ResolveError
	}
	e.state = arpEntryPending
	e.pa = pa
	e.ha = MAC{}
	e.timestamp = time.Now()
	e.nif = nif
	e.wake = make(chan struct{})
	if data != nil {
		a.queuePayload(e, nif, data)
	}

	a.sendRequest(nif, pa)
	return MAC{}, ResolveQuery
}

// queuePayload stores a copy of data on e, replacing any payload
// queued earlier. Assumes a.mu.
func (a *ARP) queuePayload(e *arpEntry, nif *Interface, data []byte) {
	if e.data != nil {
		putByteSlice(e.data)
	}
	buf := getByteSlice(len(data))
	copy(buf, data)
	e.data = buf
	e.nif = nif
}

// wait blocks until ch is closed or the deadline passes, releasing
// a.mu for the duration. A return does not imply resolution: callers
// must re-check their wait condition, since wakeups are broadcast on
// every entry transition.
func (a *ARP) wait(ch <-chan struct{}, deadline time.Time) {
	a.mu.Unlock()
	defer a.mu.Lock()
	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()
	select {
	case <-ch:
	case <-timer.C:
	}
}

// LookupIPv4 resolves pa to a MAC address on behalf of nif, blocking
// through the query phase rather than returning ResolveQuery. No
// payload is queued.
func (a *ARP) LookupIPv4(nif *Interface, pa IPv4) (MAC, error) {
	ha, result := a.Resolve(nif, pa, nil)
	if result == ResolveQuery {
		// the first call broadcast the request; the second joins the
		// pending entry and blocks for the reply
		ha, result = a.Resolve(nif, pa, nil)
	}
	if result != ResolveFound {
		return MAC{}, errors.Errorf("resolve %v: no reply", pa)
	}
	return ha, nil
}

// rx is the receive handler registered for EtherTypeARP. Malformed
// messages are dropped without logging: on a broadcast medium they are
// expected and not actionable.
func (a *ARP) rx(b []byte, dev LinkDevice) {
	if len(b) < arpMessageLen {
		return
	}
	m, err := parseARPMessage(b)
	if err != nil {
		return
	}
	if !m.valid() {
		return
	}
	dumpARPMessage("rx", &m)

	a.mu.Lock()
	now := time.Now()
	if now.Sub(a.lastPatrol) > arpPatrolInterval {
		a.lastPatrol = now
		a.table.patrol(now)
	}
	// any valid message refreshes an already-known sender, whether or
	// not it is addressed to us
	merge := a.table.update(dev, m.spa, m.sha)
	a.mu.Unlock()

	nif, ok := a.ifaces.Get(dev, FamilyIPv4)
	if !ok || nif.Unicast != m.tpa {
		return
	}

	if !merge {
		a.mu.Lock()
		if !a.table.insert(m.spa, m.sha) {
			logrus.Debugf("arp: table full, cannot learn %v", m.spa)
		}
		a.mu.Unlock()
	}
	if m.op == arpOpRequest {
		a.sendReply(nif, m.sha, m.spa, m.sha)
	}
}

// sendRequest broadcasts a request for tpa from nif.
func (a *ARP) sendRequest(nif *Interface, tpa IPv4) {
	ok, src := nif.Dev.MAC()
	if !ok {
		logrus.Debugf("arp: send request on %v: no MAC address set", nif.Dev.Name())
		return
	}
	m := arpMessage{
		hrd: arpHardwareEthernet,
		pro: uint16(EtherTypeIPv4),
		hln: MACAddrLen,
		pln: IPv4AddrLen,
		op:  arpOpRequest,
		sha: src,
		spa: nif.Unicast,
		// tha is the zero MAC: the target address is what we are asking for
		tpa: tpa,
	}
	dumpARPMessage("send request", &m)
	a.transmit(nif.Dev, &m, BroadcastMAC)
}

// sendReply sends a unicast reply to dst carrying nif's addresses as
// the sender fields and the requester's as the target fields.
func (a *ARP) sendReply(nif *Interface, tha MAC, tpa IPv4, dst MAC) {
	ok, src := nif.Dev.MAC()
	if !ok {
		logrus.Debugf("arp: send reply on %v: no MAC address set", nif.Dev.Name())
		return
	}
	m := arpMessage{
		hrd: arpHardwareEthernet,
		pro: uint16(EtherTypeIPv4),
		hln: MACAddrLen,
		pln: IPv4AddrLen,
		op:  arpOpReply,
		sha: src,
		spa: nif.Unicast,
		tha: tha,
		tpa: tpa,
	}
	dumpARPMessage("send reply", &m)
	a.transmit(nif.Dev, &m, dst)
}

func (a *ARP) transmit(dev LinkDevice, m *arpMessage, dst MAC) {
	b := getByteSlice(arpMessageLen)
	writeARPMessage(m, b)
	err := dev.Transmit(b, dst, EtherTypeARP)
	putByteSlice(b)
	if err != nil {
		logrus.Debugf("arp: transmit %v on %v: %v", m.op, dev.Name(), err)
	}
}

func dumpARPMessage(dir string, m *arpMessage) {
	if !logrus.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	logrus.Debugf("arp %s: op=%v sha=%v spa=%v tha=%v tpa=%v",
		dir, m.op, m.sha, m.spa, m.tha, m.tpa)
}
