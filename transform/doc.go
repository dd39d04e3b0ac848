// Package transform implements the per-packet payload transforms of the
// tunnel data plane: a pass-through, the ChaCha20 stream cipher and LZ4 block
// compression.
//
// # Registry
//
// Each algorithm publishes a [Descriptor] into a [Registry]. The registry is
// built once at startup, sealed, and then only read; dispatch by [ID] is a
// table lookup. [DefaultRegistry] is the shared process-wide instance.
//
//	reg := transform.DefaultRegistry()
//
//	ctx, err := reg.NewContext(transform.IDChaCha20, []byte(conf.Key))
//	if err != nil {
//	    return err
//	}
//	defer reg.Release(ctx)
//
// # Contexts
//
// A [Context] holds derived key state or compressor scratch memory. Forward
// and Reverse only ever touch the caller's buffers and the context itself. A
// Context must not be used by two goroutines at once.
//
// # Wire Formats
//
//   - null: the payload unchanged.
//   - ChaCha20: a 16 byte clear-text IV followed by ciphertext of the same
//     length as the plaintext.
//   - lz4: an LZ4 block. A zero length Forward result means "send the
//     original payload uncompressed".
//
// # Errors
//
// Contract violations and corrupt input are returned as wrapped sentinel
// errors ([ErrBufferTooSmall], [ErrOutputTooSmall], [ErrInputTooLarge],
// [ErrCodecFailure], [ErrCorruptInput]); test them with errors.Is. Nothing in
// this package panics on hostile input.
//
// # Pipelines
//
// [Pipeline] adds buffer allocation, an optional [Observer] for metrics and
// the fail-soft compression contract in [Pipeline.EncodeFailSoft].
package transform
