package transform

import (
	"errors"
	"fmt"
)

// ID identifies one transform algorithm. Compression ids have the high bit
// set so ciphers and compressors share one dispatch table.
type ID uint8

const (
	// IDNull is the pass-through transform.
	IDNull ID = 0x01
	// IDChaCha20 is the ChaCha20 stream cipher transform.
	IDChaCha20 ID = 0x04
	// IDLZ4 is the LZ4 block compression transform.
	IDLZ4 ID = 0x82
)

// String returns the registered-name-independent label of the id.
func (id ID) String() string {
	switch id {
	case IDNull:
		return "null"
	case IDChaCha20:
		return "chacha20"
	case IDLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("transform(%#02x)", uint8(id))
	}
}

// Kind is the closed set of transform families.
type Kind uint8

const (
	// KindNull copies payloads unchanged.
	KindNull Kind = iota
	// KindStreamCipher encrypts payloads behind a clear-text IV preamble.
	KindStreamCipher
	// KindBlockCompressor compresses payloads and fails soft.
	KindBlockCompressor
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindStreamCipher:
		return "stream-cipher"
	case KindBlockCompressor:
		return "block-compressor"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Direction distinguishes encode from decode for observers.
type Direction uint8

const (
	// Forward is the plaintext to wire direction.
	Forward Direction = iota
	// Reverse is the wire to plaintext direction.
	Reverse
)

// String returns the label used in logs and metrics.
func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Context is one keyed instance of a transform. It holds derived cipher state
// or compressor scratch memory and is not safe for concurrent use: each
// goroutine that transforms packets must own its own Context.
//
// Forward and Reverse write into dst and return the number of bytes written.
// len(dst) is the output capacity; neither method reads or writes outside
// the supplied slices.
type Context interface {
	ID() ID
	Forward(dst, src []byte) (int, error)
	Reverse(dst, src []byte) (int, error)
	Deinit() error
}

// InitFunc builds a Context from a pre-shared secret. Transforms that do not
// use key material ignore the secret.
type InitFunc func(secret []byte) (Context, error)

// Descriptor identifies one pluggable algorithm. It is immutable once
// registered.
type Descriptor struct {
	ID           ID
	Name         string
	Kind         Kind
	NoEncryption bool
	IsCompress   bool
	Init         InitFunc
}

var (
	// ErrBufferTooSmall indicates a pass-through destination cannot hold the payload.
	ErrBufferTooSmall = errors.New("buffer too small")

	// ErrOutputTooSmall indicates a destination cannot hold the transformed payload.
	ErrOutputTooSmall = errors.New("output too small")

	// ErrInputTooLarge indicates the input exceeds the maximum packet size.
	ErrInputTooLarge = errors.New("input too large")

	// ErrCodecFailure indicates the underlying cipher or codec reported a failure.
	ErrCodecFailure = errors.New("codec failure")

	// ErrCorruptInput indicates the input is inconsistent with its bounds.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrUnknownTransform indicates no descriptor is registered under an id or name.
	ErrUnknownTransform = errors.New("unknown transform")

	// ErrRegistrySealed indicates a registration after startup.
	ErrRegistrySealed = errors.New("transform registry sealed")

	// ErrContextClosed indicates use of a context after Deinit.
	ErrContextClosed = errors.New("transform context closed")
)
