// Package crypto implements the small set of cryptographic helpers the tunnel
// data plane needs around its transforms.
//
// # Pearson-family Hashes
//
// [PearsonHash256], [PearsonHash128], [PearsonHash64], [PearsonHash32] and
// [PearsonHash16] are wide, length-avalanching, non-cryptographic hashes. The
// 256-bit variant is used to normalize pass-phrases of arbitrary length into
// cipher key material:
//
//	key := crypto.DeriveKey([]byte(conf.Key))
//	defer crypto.WipeKey(&key)
//
// # Randomness
//
// [RandUint64From] draws 64-bit values for initialization vectors from
// crypto/rand.Reader, or from any reader in deterministic tests.
//
// # Memory Hygiene
//
// [WipeKey] overwrites key material when a transform context is torn down.
//
// # Logging
//
// [LoggerHelper] attaches the standard function/package fields to logrus
// entries. [SecureFieldHash] produces loggable digests of secrets.
package crypto
