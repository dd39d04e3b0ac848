package transform

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/sirupsen/logrus"

	"github.com/opd-ai/tuncore/limits"
)

// LZ4Transform compresses payloads with the LZ4 block format.
//
// Compression is fail-soft: when a payload cannot be shrunk, or the
// compressor fails, Forward returns zero bytes and a nil error and the
// caller sends the original payload instead.
var LZ4Transform = Descriptor{
	ID:           IDLZ4,
	Name:         "lz4",
	Kind:         KindBlockCompressor,
	NoEncryption: true,
	IsCompress:   true,
	Init:         newLZ4Context,
}

// lz4Context owns the compressor hash table as its scratch work area.
type lz4Context struct {
	compressor lz4.Compressor
	closed     bool
}

func newLZ4Context(_ []byte) (Context, error) {
	return &lz4Context{}, nil
}

func (c *lz4Context) ID() ID { return IDLZ4 }

// IsCompress reports that a zero-length Forward result means "send the
// original payload".
func (c *lz4Context) IsCompress() bool { return true }

// Forward compresses src into dst. Only output strictly shorter than src is
// useful, so the compressor gets a window of len(src)-1 bytes at most.
func (c *lz4Context) Forward(dst, src []byte) (n int, err error) {
	if c.closed {
		return 0, ErrContextClosed
	}
	if len(src) > limits.MaxPacketSize {
		logrus.WithFields(logrus.Fields{
			"function": "Forward",
			"package":  "transform",
			"in_len":   len(src),
		}).Error("Payload too large to compress")
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrInputTooLarge, len(src), limits.MaxPacketSize)
	}

	window := len(src) - 1
	if window > len(dst) {
		window = len(dst)
	}
	if window <= 0 {
		return 0, nil
	}

	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Forward",
				"package":  "transform",
				"panic":    fmt.Sprint(r),
			}).Error("Compressor panicked, sending uncompressed")
			n, err = 0, nil
		}
	}()

	n, cerr := c.compressor.CompressBlock(src, dst[:window])
	if cerr != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Forward",
			"package":  "transform",
			"in_len":   len(src),
			"error":    cerr.Error(),
		}).Debug("Compressed payload did not fit, sending uncompressed")
		return 0, nil
	}
	return n, nil
}

// Reverse decompresses src into dst. The output bound is the smaller of
// len(dst) and the maximum packet size; anything that would exceed it is
// treated as corrupt.
func (c *lz4Context) Reverse(dst, src []byte) (int, error) {
	if c.closed {
		return 0, ErrContextClosed
	}
	if len(src) > limits.MaxPacketSize {
		logrus.WithFields(logrus.Fields{
			"function": "Reverse",
			"package":  "transform",
			"in_len":   len(src),
		}).Error("Payload too large to decompress")
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrInputTooLarge, len(src), limits.MaxPacketSize)
	}

	bound := len(dst)
	if bound > limits.MaxPacketSize {
		bound = limits.MaxPacketSize
	}

	n, err := lz4.UncompressBlock(src, dst[:bound])
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Reverse",
			"package":  "transform",
			"in_len":   len(src),
			"bound":    bound,
			"error":    err.Error(),
		}).Warn("Rejected corrupt compressed payload")
		return 0, fmt.Errorf("%w: %v", ErrCorruptInput, err)
	}
	return n, nil
}

func (c *lz4Context) Deinit() error {
	c.closed = true
	return nil
}
