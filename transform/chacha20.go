package transform

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/chacha20"

	"github.com/opd-ai/tuncore/crypto"
	"github.com/opd-ai/tuncore/limits"
)

// IVSize is the size of the clear-text preamble in front of every ChaCha20
// payload.
const IVSize = limits.CipherPreambleSize

// counterMask keeps the initial block counter below 2^31 so that a maximum
// size packet can never overflow the 32-bit ChaCha20 counter.
const counterMask = 0x7fffffff

// ChaCha20Transform encrypts payloads with the ChaCha20 stream cipher.
//
// The wire format is
//
//	[IIIIIIIIIIIIIIII|DDDDDDDDDDDDDDDDDDDD]
//	 |<-- 16 IV  -->| |<-- encrypted -->|
//
// IV bytes 0..3 are the little endian initial block counter and bytes 4..15
// are the 96-bit nonce. The ciphertext has the same length as the plaintext.
var ChaCha20Transform = Descriptor{
	ID:   IDChaCha20,
	Name: "ChaCha20",
	Kind: KindStreamCipher,
	Init: newChaCha20Context,
}

type chacha20Context struct {
	key    [crypto.KeySize]byte
	random io.Reader
	closed bool
}

// newChaCha20Context stretches the pass-phrase into key material; the raw
// secret is never handed to the cipher.
func newChaCha20Context(secret []byte) (Context, error) {
	c := &chacha20Context{
		key:    crypto.DeriveKey(secret),
		random: rand.Reader,
	}

	logrus.WithFields(logrus.Fields{
		"function": "newChaCha20Context",
		"package":  "transform",
	}).Debug("ChaCha20 key setup completed")

	return c, nil
}

func (c *chacha20Context) ID() ID { return IDChaCha20 }

// keyStream returns a cipher positioned at the block counter encoded in iv.
func (c *chacha20Context) keyStream(iv []byte) (*chacha20.Cipher, error) {
	s, err := chacha20.NewUnauthenticatedCipher(c.key[:], iv[4:IVSize])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodecFailure, err)
	}
	s.SetCounter(binary.LittleEndian.Uint32(iv[0:4]) & counterMask)
	return s, nil
}

// Forward encrypts src into dst behind a fresh random IV. dst and src must
// not overlap.
func (c *chacha20Context) Forward(dst, src []byte) (int, error) {
	if c.closed {
		return 0, ErrContextClosed
	}
	if len(src) > limits.MaxPacketSize {
		logrus.WithFields(logrus.Fields{
			"function": "Forward",
			"package":  "transform",
			"in_len":   len(src),
		}).Error("Payload too large to encrypt")
		return 0, fmt.Errorf("%w: %d bytes exceeds %d", ErrInputTooLarge, len(src), limits.MaxPacketSize)
	}
	if len(src)+IVSize > len(dst) {
		logrus.WithFields(logrus.Fields{
			"function": "Forward",
			"package":  "transform",
			"in_len":   len(src),
			"out_cap":  len(dst),
		}).Error("Output buffer too small for encryption")
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrOutputTooSmall, len(src)+IVSize, len(dst))
	}

	// two independent 64-bit draws make up the full 128-bit IV
	for i := 0; i < 2; i++ {
		v, err := crypto.RandUint64From(c.random)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrCodecFailure, err)
		}
		binary.LittleEndian.PutUint64(dst[i*8:], v)
	}

	s, err := c.keyStream(dst[:IVSize])
	if err != nil {
		return 0, err
	}
	s.XORKeyStream(dst[IVSize:IVSize+len(src)], src)

	return IVSize + len(src), nil
}

// Reverse reads the IV from the front of src and decrypts the rest into dst.
func (c *chacha20Context) Reverse(dst, src []byte) (int, error) {
	if c.closed {
		return 0, ErrContextClosed
	}
	if len(src) < IVSize {
		logrus.WithFields(logrus.Fields{
			"function": "Reverse",
			"package":  "transform",
			"in_len":   len(src),
		}).Warn("Ciphertext shorter than IV")
		return 0, fmt.Errorf("%w: %d bytes cannot hold a %d byte IV", ErrCorruptInput, len(src), IVSize)
	}

	n := len(src) - IVSize
	if n > limits.MaxPacketSize {
		return 0, fmt.Errorf("%w: %d byte ciphertext exceeds %d", ErrInputTooLarge, n, limits.MaxPacketSize)
	}
	if n > len(dst) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrOutputTooSmall, n, len(dst))
	}

	s, err := c.keyStream(src[:IVSize])
	if err != nil {
		return 0, err
	}
	s.XORKeyStream(dst[:n], src[IVSize:])

	return n, nil
}

func (c *chacha20Context) Deinit() error {
	if c.closed {
		return nil
	}
	crypto.WipeKey(&c.key)
	c.closed = true
	return nil
}
