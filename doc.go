// Package tuncore implements the packet transforms and supernode selection
// of a peer-to-peer layer 2 tunnel edge.
//
// An Edge compresses and encrypts outgoing payloads and keeps a ranked list
// of supernodes to register with.
//
// # Getting Started
//
//	options := tuncore.NewOptions()
//	options.Transform = transform.IDChaCha20
//	options.Key = []byte("correct horse battery staple")
//	options.Compress = true
//
//	edge, err := tuncore.New(options)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer edge.Close()
//
//	wire, err := edge.Encode(frame)
//	frame, err = edge.Decode(wire)
//
// # Supernode Selection
//
// Supernodes are registered with AddSupernode; measurements they report are
// passed to Record and consumed by the next Tick:
//
//	h := edge.AddSupernode(addr, mac)
//	edge.Record(h, sample)
//	result := edge.Tick()
//	if result.Changed {
//	    // re-register with result.Preferred
//	}
//
// Run calls Tick on the configured round interval until its context ends.
//
// # Wire Format
//
// Every packet starts with one byte naming the compression applied (zero
// for none), followed by the transform output. ChaCha20 output carries a
// 16 byte clear-text IV before the ciphertext.
//
// # Subpackages
//
//   - [github.com/opd-ai/tuncore/transform]: transform registry and codecs
//   - [github.com/opd-ai/tuncore/selection]: supernode ranking
//   - [github.com/opd-ai/tuncore/crypto]: Pearson hashing and key derivation
//   - [github.com/opd-ai/tuncore/config]: YAML and environment configuration
//   - [github.com/opd-ai/tuncore/metrics]: Prometheus export
//   - [github.com/opd-ai/tuncore/limits]: packet size limits
package tuncore
