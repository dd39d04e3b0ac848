// Package limits provides the centralized packet size constants and validation
// functions for the tunnel data plane. Every buffer handed to a transform is
// bounded by these values, so they define the worst case for all per-packet
// allocations.
//
// # Size Hierarchy
//
//   - MaxPacketSize (2048 bytes): the largest plaintext payload the data plane
//     accepts from the virtual network device. This is the fixed packet buffer
//     size every transform is written against.
//
//   - CipherPreambleSize (16 bytes): the clear-text initialization vector the
//     stream cipher transform prepends to every encrypted payload.
//
//   - MaxWirePacket (2064 bytes): the largest encoded payload that may appear
//     on the wire, MaxPacketSize plus the cipher preamble.
//
// # Validation Functions
//
// Unlike chat messages, empty payloads are legal packets, so validation only
// rejects oversized input:
//
//	if err := limits.ValidatePacketSize(payload, maxSize); err != nil {
//	    // errors.Is(err, limits.ErrPacketTooLarge)
//	}
//
// ValidateWirePacket bounds encoded payloads by MaxWirePacket.
package limits
