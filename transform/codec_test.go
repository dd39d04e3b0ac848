package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/tuncore/limits"
)

type recordingObserver struct {
	transforms []observed
	fallbacks  []ID
}

type observed struct {
	id      ID
	dir     Direction
	in, out int
	err     error
}

func (r *recordingObserver) ObserveTransform(id ID, dir Direction, in, out int, err error) {
	r.transforms = append(r.transforms, observed{id, dir, in, out, err})
}

func (r *recordingObserver) ObserveFallback(id ID) {
	r.fallbacks = append(r.fallbacks, id)
}

// TestRoundTripAllSizes checks reverse(forward(p)) == p for every payload
// size up to the packet limit and every registered transform.
func TestRoundTripAllSizes(t *testing.T) {
	reg := NewDefaultRegistry()
	defer reg.Close()

	for _, desc := range reg.Descriptors() {
		t.Run(desc.Name, func(t *testing.T) {
			ctx, err := reg.NewContext(desc.ID, []byte("round trip secret"))
			require.NoError(t, err)
			p := NewPipeline(ctx, nil)

			base := mixedPayload(limits.MaxPacketSize, int64(desc.ID))
			for n := 0; n <= limits.MaxPacketSize; n++ {
				payload := base[:n]

				wire, transformed, err := p.EncodeFailSoft(payload)
				require.NoError(t, err, "size %d", n)

				got := wire
				if transformed {
					got, err = p.Decode(wire)
					require.NoError(t, err, "size %d", n)
				}
				if len(payload) != len(got) || (n > 0 && string(payload) != string(got)) {
					t.Fatalf("size %d: round trip mismatch", n)
				}
			}
		})
	}
}

func TestPipelineObserver(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(newTestContext(t, IDChaCha20, testKey), obs)

	wire, err := p.Encode([]byte("observed"))
	require.NoError(t, err)
	_, err = p.Decode(wire)
	require.NoError(t, err)
	_, err = p.Decode([]byte("short"))
	require.Error(t, err)

	require.Len(t, obs.transforms, 3)
	assert.Equal(t, observed{IDChaCha20, Forward, 8, 24, nil}, obs.transforms[0])
	assert.Equal(t, observed{IDChaCha20, Reverse, 24, 8, nil}, obs.transforms[1])
	assert.True(t, errors.Is(obs.transforms[2].err, ErrCorruptInput))
	assert.Empty(t, obs.fallbacks)
}

func TestPipelineFallbackObserved(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(newTestContext(t, IDLZ4, ""), obs)
	payload := noise(512, 3)

	wire, transformed, err := p.EncodeFailSoft(payload)
	require.NoError(t, err)
	assert.False(t, transformed)
	assert.Equal(t, payload, wire)
	assert.Equal(t, []ID{IDLZ4}, obs.fallbacks)

	wire, transformed, err = p.EncodeFailSoft(pattern32x16())
	require.NoError(t, err)
	assert.True(t, transformed)
	assert.Less(t, len(wire), 512)
	assert.Len(t, obs.fallbacks, 1)
}

func TestEncodeFailSoftPropagatesErrors(t *testing.T) {
	ctx := newTestContext(t, IDChaCha20, testKey)
	_, transformed, err := EncodeFailSoft(ctx, make([]byte, limits.MaxPacketSize+1))
	assert.False(t, transformed)
	assert.True(t, errors.Is(err, ErrInputTooLarge))
}

// TestCompressThenEncrypt exercises the stacking used on the send path.
func TestCompressThenEncrypt(t *testing.T) {
	lz := NewPipeline(newTestContext(t, IDLZ4, ""), nil)
	cc := NewPipeline(newTestContext(t, IDChaCha20, testKey), nil)

	for _, payload := range [][]byte{pattern32x16(), noise(900, 11)} {
		compressed, transformed, err := lz.EncodeFailSoft(payload)
		require.NoError(t, err)

		wire, err := cc.Encode(compressed)
		require.NoError(t, err)

		plain, err := cc.Decode(wire)
		require.NoError(t, err)
		if transformed {
			plain, err = lz.Decode(plain)
			require.NoError(t, err)
		}
		assert.Equal(t, payload, plain)
	}
}
