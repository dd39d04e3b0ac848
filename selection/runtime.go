package selection

import "time"

// Runtime is the view of the hosting edge or supernode the engine reads its
// measurements from. Implementations are read-only from the engine's side.
type Runtime interface {
	// Strategy returns the configured selection strategy.
	Strategy() Strategy
	// Now returns the current time.
	Now() time.Time
	// LocalLoad returns the number of communities plus edges served
	// locally; a supernode advertises it under the load strategy.
	LocalLoad() uint64
	// PendingPeers returns the number of peers still being registered.
	PendingPeers() int
	// SupernodeCount returns the number of known supernodes.
	SupernodeCount() int
	// CurrentSupernode returns the handle of the supernode in use.
	CurrentSupernode() Handle
	// HeaderEncryption reports whether packet headers are encrypted, which
	// doubles the per-peer registration cost.
	HeaderEncryption() bool
}

// TimeProvider abstracts time operations for deterministic testing.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider uses the standard library time functions.
type DefaultTimeProvider struct{}

// Now returns the current time.
func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// RuntimeState is a plain Runtime whose counters are set by the host.
type RuntimeState struct {
	SelectionStrategy Strategy
	Clock             TimeProvider
	Load              uint64
	Pending           int
	Supernodes        int
	Current           Handle
	HeaderEncrypted   bool
}

// Strategy implements Runtime.
func (r *RuntimeState) Strategy() Strategy { return r.SelectionStrategy }

// Now implements Runtime. A nil Clock falls back to the wall clock.
func (r *RuntimeState) Now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

// LocalLoad implements Runtime.
func (r *RuntimeState) LocalLoad() uint64 { return r.Load }

// PendingPeers implements Runtime.
func (r *RuntimeState) PendingPeers() int { return r.Pending }

// SupernodeCount implements Runtime.
func (r *RuntimeState) SupernodeCount() int { return r.Supernodes }

// CurrentSupernode implements Runtime.
func (r *RuntimeState) CurrentSupernode() Handle { return r.Current }

// HeaderEncryption implements Runtime.
func (r *RuntimeState) HeaderEncryption() bool { return r.HeaderEncrypted }
