package transform

import (
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/tuncore/limits"
)

// Observer receives the outcome of every transformed packet. Implementations
// must be cheap; they run on the packet path.
type Observer interface {
	ObserveTransform(id ID, dir Direction, in, out int, err error)
	ObserveFallback(id ID)
}

// compressor is implemented by contexts whose zero-length Forward result
// means "send the original payload".
type compressor interface {
	IsCompress() bool
}

// IsCompress reports whether ctx follows the fail-soft compression contract.
func IsCompress(ctx Context) bool {
	c, ok := ctx.(compressor)
	return ok && c.IsCompress()
}

// Pipeline wraps a Context with buffer management and observation. Like
// the Context it wraps, a Pipeline must not be used concurrently.
//
//export TunTransformPipeline
type Pipeline struct {
	ctx      Context
	observer Observer
}

// NewPipeline creates a pipeline over ctx. observer may be nil.
func NewPipeline(ctx Context, observer Observer) *Pipeline {
	return &Pipeline{ctx: ctx, observer: observer}
}

// Context returns the wrapped context.
func (p *Pipeline) Context() Context { return p.ctx }

func (p *Pipeline) observe(dir Direction, in, out int, err error) {
	if p.observer != nil {
		p.observer.ObserveTransform(p.ctx.ID(), dir, in, out, err)
	}
}

// Encode transforms payload into a newly allocated wire buffer.
func (p *Pipeline) Encode(payload []byte) ([]byte, error) {
	out := make([]byte, len(payload)+limits.CipherPreambleSize)
	n, err := p.ctx.Forward(out, payload)
	p.observe(Forward, len(payload), n, err)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// Decode reverses a wire buffer into a newly allocated payload.
func (p *Pipeline) Decode(wire []byte) ([]byte, error) {
	out := make([]byte, max(len(wire), limits.MaxPacketSize))
	n, err := p.ctx.Reverse(out, wire)
	p.observe(Reverse, len(wire), n, err)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// EncodeFailSoft behaves like Encode but substitutes the original payload
// when a compressor yields nothing. transformed reports whether the returned
// bytes are the transform's output; the caller must signal it on the wire so
// the receiver knows whether to Decode.
func (p *Pipeline) EncodeFailSoft(payload []byte) (wire []byte, transformed bool, err error) {
	wire, err = p.Encode(payload)
	if err != nil {
		return nil, false, err
	}
	if len(wire) == 0 && IsCompress(p.ctx) {
		if p.observer != nil {
			p.observer.ObserveFallback(p.ctx.ID())
		}
		logrus.WithFields(logrus.Fields{
			"function":  "EncodeFailSoft",
			"package":   "transform",
			"transform": p.ctx.ID().String(),
			"in_len":    len(payload),
		}).Debug("Compression yielded nothing, sending original payload")
		return payload, false, nil
	}
	return wire, true, nil
}

// Encode transforms payload with ctx into a newly allocated wire buffer.
func Encode(ctx Context, payload []byte) ([]byte, error) {
	return NewPipeline(ctx, nil).Encode(payload)
}

// Decode reverses wire with ctx into a newly allocated payload.
func Decode(ctx Context, wire []byte) ([]byte, error) {
	return NewPipeline(ctx, nil).Decode(wire)
}

// EncodeFailSoft is Pipeline.EncodeFailSoft without an observer.
func EncodeFailSoft(ctx Context, payload []byte) ([]byte, bool, error) {
	return NewPipeline(ctx, nil).EncodeFailSoft(payload)
}
