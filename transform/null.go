package transform

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// NullTransform passes payloads through unchanged. It is the fallback when no
// cipher is configured and the latency/throughput baseline for the others.
var NullTransform = Descriptor{
	ID:           IDNull,
	Name:         "null",
	Kind:         KindNull,
	NoEncryption: true,
	Init:         newNullContext,
}

type nullContext struct {
	closed bool
}

func newNullContext(_ []byte) (Context, error) {
	return &nullContext{}, nil
}

func (c *nullContext) ID() ID { return IDNull }

func (c *nullContext) Forward(dst, src []byte) (int, error) {
	return c.copy("Forward", dst, src)
}

func (c *nullContext) Reverse(dst, src []byte) (int, error) {
	return c.copy("Reverse", dst, src)
}

func (c *nullContext) copy(function string, dst, src []byte) (int, error) {
	if c.closed {
		return 0, ErrContextClosed
	}
	if len(dst) < len(src) {
		logrus.WithFields(logrus.Fields{
			"function": function,
			"package":  "transform",
			"in_len":   len(src),
			"out_cap":  len(dst),
		}).Debug("null transform payload too big for packet buffer")
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferTooSmall, len(src), len(dst))
	}
	return copy(dst, src), nil
}

func (c *nullContext) Deinit() error {
	c.closed = true
	return nil
}
