package selection

import (
	"encoding/binary"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxMissedRounds is the number of consecutive rounds without a sample after
// which a candidate is pinned at CriterionBad.
const MaxMissedRounds = 3

// RoundState is the normalization data shared by every candidate within one
// round. It is reset by CommonDataDefault.
type RoundState struct {
	Strategy  Strategy
	Baseline  uint64
	StartedAt time.Time
	Round     uint64
}

// RoundResult summarizes one completed round.
type RoundResult struct {
	// Sample is the raw value this node advertises for the round.
	Sample uint64
	// Preferred is the head of the sorted list, nil for an empty list.
	Preferred *Peer
	// Changed reports whether the preferred candidate differs from the
	// previous round.
	Changed bool
}

// Observer receives the outcome of every round.
type Observer interface {
	ObserveRound(state RoundState, ranked []*Peer)
	ObservePreferredChange(prev, next *Peer)
}

// Engine recomputes candidate criteria and ranks them. It holds no locks:
// the whole gather/reset/recompute/sort sequence must run on the goroutine
// that owns the PeerList.
//
//export TunSelectionEngine
type Engine struct {
	state     RoundState
	observer  Observer
	maxMissed int
}

// NewEngine creates an engine. observer may be nil.
func NewEngine(observer Observer) *Engine {
	return &Engine{
		observer:  observer,
		maxMissed: MaxMissedRounds,
	}
}

// State returns the current round state.
func (e *Engine) State() RoundState { return e.state }

// GatherData returns the raw value describing local conditions for this
// round: the served load, the current time in milliseconds for echo based
// RTT measurement, or zero for the MAC strategy. It only reads rt.
func (e *Engine) GatherData(rt Runtime) uint64 {
	switch rt.Strategy() {
	case StrategyLoad:
		return rt.LocalLoad()
	case StrategyRTT:
		return unixMilli(rt.Now())
	default:
		return 0
	}
}

// CommonDataDefault resets the shared round state. It must run once per
// round before any CriterionCalculate of that round.
func (e *Engine) CommonDataDefault(rt Runtime) {
	strategy := rt.Strategy()
	now := rt.Now()

	var baseline uint64
	switch strategy {
	case StrategyLoad:
		pending := uint64(max(rt.PendingPeers(), 0))
		if rt.HeaderEncryption() {
			pending *= 2
		}
		baseline = pending / uint64(max(rt.SupernodeCount(), 1))
	case StrategyRTT:
		baseline = unixMilli(now)
	}

	e.state = RoundState{
		Strategy:  strategy,
		Baseline:  baseline,
		StartedAt: now,
		Round:     e.state.Round + 1,
	}
}

// CriterionCalculate derives peer's criterion from sample under the current
// strategy and round state, stores it in peer.Criterion and returns it.
// Invalid samples move the criterion toward CriterionBad instead of failing.
func (e *Engine) CriterionCalculate(rt Runtime, peer *Peer, sample uint64) uint64 {
	criterion, ok := e.measure(rt, peer, sample)
	if !ok {
		peer.Criterion = degrade(peer.Criterion)
		logrus.WithFields(logrus.Fields{
			"function": "CriterionCalculate",
			"package":  "selection",
			"peer":     peerLabel(peer),
			"strategy": e.state.Strategy.String(),
			"sample":   sample,
		}).Debug("Invalid measurement, degrading candidate")
		return peer.Criterion
	}

	peer.Criterion = clampMeasured(criterion)
	peer.LastMeasured = rt.Now()
	return peer.Criterion
}

func (e *Engine) measure(rt Runtime, peer *Peer, sample uint64) (uint64, bool) {
	switch e.state.Strategy {
	case StrategyLoad:
		c := saturatingAdd(sample, e.state.Baseline)
		// Stickiness: switching supernodes has a cost, so the current one
		// is credited a quarter of its load to damp oscillation.
		if rt.CurrentSupernode() == peer.handle {
			c -= c / 4
		}
		return c, true

	case StrategyRTT:
		arrival := peer.LastSeen
		if arrival.IsZero() {
			arrival = rt.Now()
		}
		now := unixMilli(arrival)
		if sample == 0 || sample > now {
			return 0, false
		}
		return now - sample, true

	case StrategyMAC:
		if len(peer.MAC) < 6 {
			return 0, false
		}
		var buf [8]byte
		copy(buf[2:], peer.MAC[:6])
		return binary.BigEndian.Uint64(buf[:]), true

	default:
		return 0, false
	}
}

// RunRound performs one full round: gather, reset, recompute every
// candidate, sort. Candidates without a fresh sample are degraded and, after
// MaxMissedRounds, pinned at CriterionBad; the MAC strategy needs no samples.
func (e *Engine) RunRound(rt Runtime, list *PeerList) RoundResult {
	prev, _ := list.Preferred()

	sample := e.GatherData(rt)
	e.CommonDataDefault(rt)

	for _, p := range list.Ordered() {
		e.recompute(rt, p)
	}

	Sort(list)

	next, _ := list.Preferred()
	result := RoundResult{
		Sample:    sample,
		Preferred: next,
		Changed:   prev != next,
	}

	fields := logrus.Fields{
		"function":   "RunRound",
		"package":    "selection",
		"round":      e.state.Round,
		"strategy":   e.state.Strategy.String(),
		"candidates": list.Len(),
	}
	if next != nil {
		fields["preferred"] = peerLabel(next)
		fields["criterion"] = next.Criterion
	}
	if result.Changed && next != nil {
		logrus.WithFields(fields).Info("Preferred supernode changed")
	} else {
		logrus.WithFields(fields).Debug("Selection round completed")
	}

	if e.observer != nil {
		e.observer.ObserveRound(e.state, list.Ordered())
		if result.Changed {
			e.observer.ObservePreferredChange(prev, next)
		}
	}
	return result
}

func (e *Engine) recompute(rt Runtime, p *Peer) {
	if e.state.Strategy == StrategyMAC {
		e.CriterionCalculate(rt, p, 0)
		p.hasSample = false
		p.missed = 0
		return
	}

	if p.hasSample {
		e.CriterionCalculate(rt, p, p.sample)
		p.hasSample = false
		p.missed = 0
		return
	}

	p.missed++
	switch {
	case p.missed >= e.maxMissed:
		p.Criterion = CriterionBad
	case p.Criterion == CriterionDefault:
		// never measured, stays neutral until pinned
	default:
		p.Criterion = degrade(p.Criterion)
	}
}

func unixMilli(t time.Time) uint64 {
	ms := t.UnixMilli()
	if ms < 0 {
		return 0
	}
	return uint64(ms)
}

func peerLabel(p *Peer) string {
	switch {
	case p.Addr != nil:
		return p.Addr.String()
	case len(p.MAC) > 0:
		return p.MAC.String()
	default:
		return "unknown"
	}
}
