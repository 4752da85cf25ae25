package serial

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/typedb/typedb-sub037/fault"
)

func TestOrder(t *testing.T) {
	for range 10000 {
		a, b := frand.Uint64n(math.MaxUint64), frand.Uint64n(math.MaxUint64)
		if a > b {
			a, b = b, a
		}
		cmp := bytes.Compare(New(a).Bytes(), New(b).Bytes())
		if a == b {
			require.Zero(t, cmp)
		} else {
			require.Negative(t, cmp)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 255, 256, math.MaxUint32, math.MaxUint64} {
		s, err := FromBytes(New(v).Bytes())
		require.NoError(t, err)
		require.Equal(t, v, s.Val)
		s2 := New[int]()
		require.NotNil(t, s2.Read(bytes.NewReader(New(v).Bytes())))
		require.Equal(t, v, s2.Val)
	}
	// negative counters keep their bit pattern
	require.Equal(t, int64(-1), New(-1).Int())
	require.Equal(t, bytes.Repeat([]byte{0xff}, Len), New(-1).Bytes())
}

func TestMalformed(t *testing.T) {
	_, err := FromBytes([]byte{1, 2, 3})
	require.ErrorIs(t, err, fault.ErrMalformedKey)
	require.Nil(t, New[int]().Read(bytes.NewReader([]byte{1, 2, 3})))
}
