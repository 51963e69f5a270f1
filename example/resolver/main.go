// Command resolver wires two in-memory link devices back to back and
// resolves each host's hardware address from the other, demonstrating
// the query/reply cycle, the blocking lookup path, and the
// queued-payload flush.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	net "github.com/syo16/Protocol-stack"
)

var (
	ipA     = pflag.String("ip-a", "10.0.0.1", "IPv4 address of host A")
	ipB     = pflag.String("ip-b", "10.0.0.2", "IPv4 address of host B")
	verbose = pflag.BoolP("verbose", "v", false, "log every ARP message")
)

// a frame in flight between the two pipe devices
type frame struct {
	b   []byte
	dst net.MAC
	et  net.EtherType
}

// A pipeDevice is a LinkDevice whose wire is a channel to a peer
// device. Frames are delivered to the peer's ProtocolMux from a
// dedicated reader goroutine, the way a real driver would deliver
// them from its read loop.
type pipeDevice struct {
	name   string
	mac    net.MAC
	mux    *net.ProtocolMux
	peer   chan<- frame
	frames chan frame
}

func (d *pipeDevice) Name() string { return d.name }

func (d *pipeDevice) MAC() (bool, net.MAC) { return true, d.mac }

func (d *pipeDevice) Transmit(b []byte, dst net.MAC, et net.EtherType) error {
	buf := make([]byte, len(b))
	copy(buf, b)
	d.peer <- frame{b: buf, dst: dst, et: et}
	return nil
}

func (d *pipeDevice) run() {
	for f := range d.frames {
		if f.dst != d.mac && f.dst != net.BroadcastMAC {
			continue
		}
		d.mux.Deliver(f.et, f.b, d)
	}
}

// host is one side of the wire: a device, its interface binding, and
// an ARP instance.
type host struct {
	dev *pipeDevice
	nif *net.Interface
	arp *net.ARP
}

func newHost(name string, mac net.MAC, addr net.IPv4) *host {
	dev := &pipeDevice{
		name:   name,
		mac:    mac,
		mux:    &net.ProtocolMux{},
		frames: make(chan frame, 16),
	}
	nif := &net.Interface{Dev: dev, Family: net.FamilyIPv4, Unicast: addr}
	ifaces := &net.InterfaceSet{}
	ifaces.Add(nif)
	return &host{
		dev: dev,
		nif: nif,
		arp: net.NewARP(ifaces, dev.mux),
	}
}

func main() {
	pflag.Parse()
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	addrA, err := net.ParseIPv4(*ipA)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	addrB, err := net.ParseIPv4(*ipB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	macA, _ := net.ParseMAC("02:00:00:00:00:0a")
	macB, _ := net.ParseMAC("02:00:00:00:00:0b")
	hostA := newHost("veth-a", macA, addrA)
	hostB := newHost("veth-b", macB, addrB)
	hostA.dev.peer = hostB.dev.frames
	hostB.dev.peer = hostA.dev.frames
	go hostA.dev.run()
	go hostB.dev.run()

	// fire-and-forget: queue a payload behind the query; it is
	// transmitted to B as soon as the reply resolves the entry
	_, result := hostA.arp.Resolve(hostA.nif, addrB, []byte("hello from A"))
	fmt.Printf("resolve %v: %v\n", addrB, result)

	// blocking lookup: joins the pending entry and waits for the reply
	mac, err := hostA.arp.LookupIPv4(hostA.nif, addrB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("%v is at %v\n", addrB, mac)

	// an address nobody answers for: blocks for the timeout, then fails
	ghost, _ := net.ParseIPv4("10.0.0.99")
	if _, err := hostA.arp.LookupIPv4(hostA.nif, ghost); err != nil {
		fmt.Println(err)
	}
}
