package selection

import (
	"net"
	"time"
)

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newRuntime(strategy Strategy) (*RuntimeState, *fixedClock) {
	clock := &fixedClock{t: epoch}
	return &RuntimeState{
		SelectionStrategy: strategy,
		Clock:             clock,
		Supernodes:        3,
	}, clock
}

func udpAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(192, 0, 2, 1), Port: port}
}

func mac(last byte) net.HardwareAddr {
	return net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, last}
}

// listWithCriteria returns a list whose candidates carry the given criteria
// in registration order.
func listWithCriteria(criteria ...uint64) (*PeerList, []Handle) {
	l := NewPeerList()
	handles := make([]Handle, len(criteria))
	for i, c := range criteria {
		handles[i] = l.Add(udpAddr(7000+i), mac(byte(i+1)))
		l.Get(handles[i]).Criterion = c
	}
	return l, handles
}

func criteriaOf(l *PeerList) []uint64 {
	var out []uint64
	for _, p := range l.Ordered() {
		out = append(out, p.Criterion)
	}
	return out
}
