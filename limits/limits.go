package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPacketSize is the fixed packet buffer size of the data plane.
	MaxPacketSize = 2048

	// CipherPreambleSize is the size of the clear-text IV in front of every
	// stream cipher payload.
	CipherPreambleSize = 16

	// MaxWirePacket is the largest encoded payload accepted from the socket.
	MaxWirePacket = MaxPacketSize + CipherPreambleSize
)

// ErrPacketTooLarge indicates a payload exceeds its size limit.
var ErrPacketTooLarge = errors.New("packet too large")

// ValidatePacketSize validates a payload against the specified maximum size.
// Empty payloads are valid.
func ValidatePacketSize(payload []byte, maxSize int) error {
	if len(payload) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrPacketTooLarge, len(payload), maxSize)
	}
	return nil
}

// ValidateWirePacket validates an encoded payload against MaxWirePacket.
func ValidateWirePacket(payload []byte) error {
	if len(payload) > MaxWirePacket {
		return fmt.Errorf("%w: wire size %d exceeds limit %d", ErrPacketTooLarge, len(payload), MaxWirePacket)
	}
	return nil
}
