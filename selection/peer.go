package selection

import (
	"bytes"
	"cmp"
	"net"
	"slices"
	"time"
)

// Handle is a stable reference to a candidate in a PeerList. A handle held
// across a Sort stays valid; after a Remove it stops resolving, and it is not
// handed out again until the 32-bit handle space wraps.
type Handle uint32

// NoHandle is the zero Handle; it never refers to a candidate.
const NoHandle Handle = 0

// Peer is one candidate supernode.
type Peer struct {
	Addr net.Addr
	MAC  net.HardwareAddr

	// Criterion is the current score; lower is preferred. It is only
	// comparable with criteria computed in the same round.
	Criterion uint64

	// LastMeasured is when Criterion was last computed from a valid sample.
	LastMeasured time.Time
	// LastSeen is when the most recent sample arrived.
	LastSeen time.Time

	handle    Handle
	seq       uint64
	sample    uint64
	hasSample bool
	missed    int
}

// Handle returns the peer's stable handle.
func (p *Peer) Handle() Handle { return p.handle }

// MissedRounds returns how many consecutive rounds passed without a sample.
func (p *Peer) MissedRounds() int { return p.missed }

// PeerList owns the candidate supernodes. Peers are stored by Handle; sorting
// only reorders handles, so *Peer pointers obtained from Get stay valid until
// the peer is removed. Removed peers are released immediately.
//
// PeerList is not safe for concurrent use. The selection round must run on
// the goroutine that owns the list.
type PeerList struct {
	peers      map[Handle]*Peer
	order      []Handle
	lastHandle Handle
	nextSeq    uint64
}

// NewPeerList creates an empty candidate list.
func NewPeerList() *PeerList {
	return &PeerList{peers: make(map[Handle]*Peer)}
}

// allocHandle returns the next handle after the last one issued, skipping
// NoHandle and live handles. Handles only repeat after 2^32 registrations,
// and never while the earlier holder is still live.
func (l *PeerList) allocHandle() Handle {
	for {
		l.lastHandle++
		if l.lastHandle == NoHandle {
			continue
		}
		if _, live := l.peers[l.lastHandle]; !live {
			return l.lastHandle
		}
	}
}

// Add registers a candidate seeded with CriterionDefault and returns its
// handle.
func (l *PeerList) Add(addr net.Addr, mac net.HardwareAddr) Handle {
	h := l.allocHandle()
	l.nextSeq++
	l.peers[h] = &Peer{
		Addr:      addr,
		MAC:       mac,
		Criterion: CriterionDefault,
		handle:    h,
		seq:       l.nextSeq,
	}
	l.order = append(l.order, h)
	return h
}

// Remove drops a candidate. It reports whether the handle was live.
func (l *PeerList) Remove(h Handle) bool {
	if l.Get(h) == nil {
		return false
	}
	delete(l.peers, h)
	l.order = slices.DeleteFunc(l.order, func(o Handle) bool { return o == h })
	return true
}

// Get returns the candidate for h, or nil if h is not live.
func (l *PeerList) Get(h Handle) *Peer {
	return l.peers[h]
}

// FindByMAC returns the handle of the candidate with the given identity
// address.
func (l *PeerList) FindByMAC(mac net.HardwareAddr) (Handle, bool) {
	for _, h := range l.order {
		if bytes.Equal(l.peers[h].MAC, mac) {
			return h, true
		}
	}
	return NoHandle, false
}

// Len returns the number of live candidates.
func (l *PeerList) Len() int { return len(l.order) }

// Ordered returns the live candidates in their current order.
func (l *PeerList) Ordered() []*Peer {
	out := make([]*Peer, len(l.order))
	for i, h := range l.order {
		out[i] = l.peers[h]
	}
	return out
}

// Preferred returns the head of the list, the currently preferred supernode.
// After a Sort that is the candidate with the lowest criterion.
func (l *PeerList) Preferred() (*Peer, bool) {
	if len(l.order) == 0 {
		return nil, false
	}
	return l.peers[l.order[0]], true
}

// Record stores a measurement sample that arrived from the candidate at
// time at. It is consumed by the next round. Record reports whether the
// handle was live.
func (l *PeerList) Record(h Handle, sample uint64, at time.Time) bool {
	p := l.Get(h)
	if p == nil {
		return false
	}
	p.sample = sample
	p.hasSample = true
	p.LastSeen = at
	return true
}

// MarkGood forces a temporary preference for the candidate, e.g. right after
// a successful handshake. The next round without a sample decays it back to
// CriterionDefault.
func (l *PeerList) MarkGood(h Handle) bool {
	p := l.Get(h)
	if p == nil {
		return false
	}
	p.Criterion = CriterionGood
	p.missed = 0
	return true
}

// MarkBad deprioritizes the candidate, e.g. when it is known to be
// unreachable, without removing it.
func (l *PeerList) MarkBad(h Handle) bool {
	p := l.Get(h)
	if p == nil {
		return false
	}
	p.Criterion = CriterionBad
	return true
}

// Sort orders the candidates ascending by criterion. Ties keep registration
// order, so sorting is idempotent and reproducible.
func Sort(l *PeerList) {
	slices.SortStableFunc(l.order, func(a, b Handle) int {
		pa, pb := l.peers[a], l.peers[b]
		if c := cmp.Compare(pa.Criterion, pb.Criterion); c != 0 {
			return c
		}
		return cmp.Compare(pa.seq, pb.seq)
	})
}
