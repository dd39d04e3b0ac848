package crypto

import (
	"encoding/binary"
	"fmt"
	"io"
)

// RandUint64From draws one 64-bit value from r, normally crypto/rand.Reader.
// Tests pass a deterministic reader.
func RandUint64From(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		NewLogger("RandUint64From").
			WithError(err, "io", "read_random").
			Error("Random source failed")
		return 0, fmt.Errorf("read random: %w", err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
