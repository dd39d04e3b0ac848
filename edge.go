package tuncore

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/tuncore/crypto"
	"github.com/opd-ai/tuncore/limits"
	"github.com/opd-ai/tuncore/selection"
	"github.com/opd-ai/tuncore/transform"
)

// Wire layout of an Edge packet:
//
//	[C|TTTTTTTTTTTTTTTTTTTT]
//	 |  |<-- transform output -->|
//	 compression id, 0 when the payload is not compressed
const headerSize = 1

const noCompression byte = 0

// Edge joins the transform pipeline and supernode selection for one tunnel
// endpoint. The send and receive paths each own their transform contexts
// and are serialized separately, so one goroutine may Encode while another
// Decodes. Supernode bookkeeping is safe for concurrent use.
//
//export TunEdge
type Edge struct {
	options *Options

	registry *transform.Registry
	contexts []transform.Context
	tx       direction
	rx       direction

	mu      sync.Mutex
	engine  *selection.Engine
	peers   *selection.PeerList
	runtime *selection.RuntimeState
	closed  bool
}

// direction is the transform state of one packet path.
type direction struct {
	mu         sync.Mutex
	cipher     *transform.Pipeline
	compressor *transform.Pipeline
}

// SupernodeStatus is one row of the management view of known supernodes.
type SupernodeStatus struct {
	Handle    selection.Handle
	Address   string
	MAC       string
	Criterion string
	Preferred bool
	LastSeen  time.Time
}

// String renders the row the way the management console lists supernodes.
func (s SupernodeStatus) String() string {
	mark := " "
	if s.Preferred {
		mark = "*"
	}
	return fmt.Sprintf("%s %-21s %-17s %s", mark, s.Address, s.MAC, s.Criterion)
}

// New creates an Edge. A nil options uses NewOptions.
//
//export TunEdgeNew
func New(options *Options) (*Edge, error) {
	if options == nil {
		options = NewOptions()
	}
	if options.TimeProvider == nil {
		options.TimeProvider = selection.DefaultTimeProvider{}
	}

	registry := options.Registry
	if registry == nil {
		registry = transform.DefaultRegistry()
	}
	if err := options.validate(registry); err != nil {
		return nil, err
	}

	e := &Edge{
		options:  options,
		registry: registry,
		engine:   selection.NewEngine(options.SelectionObserver),
		peers:    selection.NewPeerList(),
		runtime: &selection.RuntimeState{
			SelectionStrategy: options.Strategy,
			Clock:             options.TimeProvider,
			HeaderEncrypted:   options.HeaderEncryption,
		},
	}

	// the compressor is always set up so compressed packets from peers can
	// be read even when this edge does not compress
	for _, d := range []*direction{&e.tx, &e.rx} {
		cipherCtx, err := e.newContext(options.Transform, options.Key)
		if err != nil {
			return nil, errors.Join(err, e.releaseContexts())
		}
		lz4Ctx, err := e.newContext(transform.IDLZ4, nil)
		if err != nil {
			return nil, errors.Join(err, e.releaseContexts())
		}
		d.cipher = transform.NewPipeline(cipherCtx, options.TransformObserver)
		d.compressor = transform.NewPipeline(lz4Ctx, options.TransformObserver)
	}

	for _, sn := range options.Supernodes {
		e.AddSupernode(sn.Addr, sn.MAC)
	}

	fields := logrus.Fields{
		"function":   "New",
		"package":    "tuncore",
		"transform":  options.Transform.String(),
		"compress":   options.Compress,
		"strategy":   options.Strategy.String(),
		"supernodes": len(options.Supernodes),
	}
	if len(options.Key) > 0 {
		for k, v := range crypto.SecureFieldHash(options.Key, "key") {
			fields[k] = v
		}
	}
	logrus.WithFields(fields).Info("Edge created")

	return e, nil
}

// Encode turns a payload into a wire packet: compress (when enabled and
// useful), then apply the transform.
//
//export TunEdgeEncode
func (e *Edge) Encode(payload []byte) ([]byte, error) {
	e.tx.mu.Lock()
	defer e.tx.mu.Unlock()

	if err := limits.ValidatePacketSize(payload, e.options.MaxPacketSize); err != nil {
		return nil, err
	}

	body := payload
	flag := noCompression
	if e.options.Compress {
		out, compressed, err := e.tx.compressor.EncodeFailSoft(payload)
		if err != nil {
			return nil, err
		}
		if compressed {
			body = out
			flag = byte(transform.IDLZ4)
		}
	}

	sealed, err := e.tx.cipher.Encode(body)
	if err != nil {
		return nil, err
	}

	wire := make([]byte, headerSize+len(sealed))
	wire[0] = flag
	copy(wire[headerSize:], sealed)
	return wire, nil
}

// Decode reverses Encode.
//
//export TunEdgeDecode
func (e *Edge) Decode(wire []byte) ([]byte, error) {
	e.rx.mu.Lock()
	defer e.rx.mu.Unlock()

	if len(wire) < headerSize {
		return nil, fmt.Errorf("%w: packet shorter than header", transform.ErrCorruptInput)
	}
	if err := limits.ValidateWirePacket(wire[headerSize:]); err != nil {
		return nil, err
	}

	body, err := e.rx.cipher.Decode(wire[headerSize:])
	if err != nil {
		return nil, err
	}

	switch flag := wire[0]; flag {
	case noCompression:
	case byte(transform.IDLZ4):
		body, err = e.rx.compressor.Decode(body)
		if err != nil {
			return nil, err
		}
	default:
		logrus.WithFields(logrus.Fields{
			"function":    "Decode",
			"package":     "tuncore",
			"compression": fmt.Sprintf("%#02x", flag),
		}).Warn("Dropping packet with unknown compression")
		return nil, fmt.Errorf("%w: compression %s", transform.ErrUnknownTransform, transform.ID(flag))
	}

	if err := limits.ValidatePacketSize(body, e.options.MaxPacketSize); err != nil {
		return nil, err
	}
	return body, nil
}

// AddSupernode registers a candidate supernode. A candidate with a known MAC
// is only registered once.
//
//export TunEdgeAddSupernode
func (e *Edge) AddSupernode(addr net.Addr, mac net.HardwareAddr) selection.Handle {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(mac) > 0 {
		if h, ok := e.peers.FindByMAC(mac); ok {
			return h
		}
	}
	h := e.peers.Add(addr, mac)
	e.runtime.Supernodes = e.peers.Len()
	if e.runtime.Current == selection.NoHandle {
		e.runtime.Current = h
	}
	return h
}

// RemoveSupernode forgets a candidate.
func (e *Edge) RemoveSupernode(h selection.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok := e.peers.Remove(h)
	e.runtime.Supernodes = e.peers.Len()
	if ok && e.runtime.Current == h {
		e.runtime.Current = selection.NoHandle
		if p, found := e.peers.Preferred(); found {
			e.runtime.Current = p.Handle()
		}
	}
	return ok
}

// Record stores a measurement reported by a supernode; it is consumed by the
// next Tick.
//
//export TunEdgeRecord
func (e *Edge) Record(h selection.Handle, sample uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peers.Record(h, sample, e.runtime.Now())
}

// MarkGood prefers a supernode until the next round without a sample.
func (e *Edge) MarkGood(h selection.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peers.MarkGood(h)
}

// MarkBad ranks a supernode last without removing it.
func (e *Edge) MarkBad(h selection.Handle) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peers.MarkBad(h)
}

// SetLocalLoad updates the counters the load strategy reads.
func (e *Edge) SetLocalLoad(load uint64, pending int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.runtime.Load = load
	e.runtime.Pending = pending
}

// Tick runs one selection round and switches to the new preferred supernode.
//
//export TunEdgeTick
func (e *Edge) Tick() selection.RoundResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	result := e.engine.RunRound(e.runtime, e.peers)
	if result.Preferred != nil {
		e.runtime.Current = result.Preferred.Handle()
	}
	return result
}

// Run calls Tick every round interval until ctx is done.
func (e *Edge) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.options.RoundInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
		}
	}
}

// RoundInterval returns the configured interval between Ticks.
//
//export TunEdgeRoundInterval
func (e *Edge) RoundInterval() time.Duration {
	return e.options.RoundInterval
}

// Preferred returns a snapshot of the supernode currently ranked first.
//
//export TunEdgePreferred
func (e *Edge) Preferred() (selection.Peer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.peers.Preferred()
	if !ok {
		return selection.Peer{}, false
	}
	return *p, true
}

// SupernodeStatus lists the known supernodes in rank order.
func (e *Edge) SupernodeStatus() []SupernodeStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	ranked := e.peers.Ordered()
	rows := make([]SupernodeStatus, 0, len(ranked))
	for i, p := range ranked {
		row := SupernodeStatus{
			Handle:    p.Handle(),
			Criterion: selection.CriterionString(e.runtime.Strategy(), p),
			Preferred: i == 0,
			LastSeen:  p.LastSeen,
		}
		if p.Addr != nil {
			row.Address = p.Addr.String()
		}
		if len(p.MAC) > 0 {
			row.MAC = p.MAC.String()
		}
		rows = append(rows, row)
	}
	return rows
}

// Close releases the edge's transform contexts and wipes the derived keys.
// The registry stays open for other users. Close waits for an in-flight
// Encode or Decode and is safe to call more than once.
//
//export TunEdgeClose
func (e *Edge) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tx.mu.Lock()
	defer e.tx.mu.Unlock()
	e.rx.mu.Lock()
	defer e.rx.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	err := e.releaseContexts()
	logrus.WithFields(logrus.Fields{
		"function": "Close",
		"package":  "tuncore",
	}).Debug("Edge closed")
	return err
}

func (e *Edge) newContext(id transform.ID, secret []byte) (transform.Context, error) {
	ctx, err := e.registry.NewContext(id, secret)
	if err != nil {
		return nil, err
	}
	e.contexts = append(e.contexts, ctx)
	return ctx, nil
}

func (e *Edge) releaseContexts() error {
	var errs []error
	for _, ctx := range e.contexts {
		errs = append(errs, e.registry.Release(ctx))
	}
	e.contexts = nil
	return errors.Join(errs...)
}
