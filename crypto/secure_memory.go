package crypto

import "runtime"

// WipeKey erases a derived key in place.
//
//export TunWipeKey
func WipeKey(key *[KeySize]byte) {
	if key == nil {
		NewLogger("WipeKey").Warn("Ignoring wipe of nil key")
		return
	}
	clear(key[:])
	// keep the overwrite from being optimized away
	runtime.KeepAlive(key)
}
