package crypto

// KeySize is the size of symmetric key material produced by DeriveKey.
const KeySize = 32

// DeriveKey stretches a pass-phrase of any length, including empty, into
// KeySize bytes of key material. The same pass-phrase always yields the same
// key.
//
// The pass-phrase is run through PearsonHash256 so short or patterned
// secrets still spread over the whole key space. This is key normalization,
// not a password hardening KDF.
//
//export TunDeriveKey
func DeriveKey(passphrase []byte) [KeySize]byte {
	logger := NewLogger("DeriveKey").WithField("passphrase_size", len(passphrase))
	logger.Debug("Stretching pass-phrase into key material")

	key := PearsonHash256(passphrase)

	logger.WithFields(SecureFieldHash(key[:], "key")).Debug("Key material derived")
	return key
}
