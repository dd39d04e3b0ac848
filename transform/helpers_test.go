package transform

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// pattern32x16 is sixteen ascending bytes repeated 32 times.
func pattern32x16() []byte {
	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i % 16)
	}
	return data
}

// mixedPayload returns n bytes whose first half is noise and second half a
// repeating pattern, so some sizes compress and others do not.
func mixedPayload(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, n)
	for i := range data {
		if i < n/2 {
			data[i] = byte(r.Intn(256))
		} else {
			data[i] = byte(i % 7)
		}
	}
	return data
}

func noise(n int, seed int64) []byte {
	r := rand.New(rand.NewSource(seed))
	data := make([]byte, n)
	r.Read(data)
	return data
}

func newTestContext(t testing.TB, id ID, secret string) Context {
	t.Helper()
	reg := NewDefaultRegistry()
	ctx, err := reg.NewContext(id, []byte(secret))
	require.NoError(t, err)
	return ctx
}
