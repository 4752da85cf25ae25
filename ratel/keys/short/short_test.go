package short

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typedb/typedb-sub037/fault"
)

func TestOrderAndRoundTrip(t *testing.T) {
	prev := New(0).Bytes()
	for v := 1; v <= math.MaxUint16; v++ {
		b := New(v).Bytes()
		require.Negative(t, bytes.Compare(prev, b))
		s, err := FromBytes(b)
		require.NoError(t, err)
		require.Equal(t, uint16(v), s.Val)
		prev = b
	}
	require.Equal(t, int16(-1), New(-1).Int())
	require.Equal(t, []byte{0xff, 0xfe}, New(-2).Bytes())
}

func TestMalformed(t *testing.T) {
	_, err := FromBytes([]byte{1})
	require.ErrorIs(t, err, fault.ErrMalformedKey)
	require.Nil(t, New[int]().Read(bytes.NewReader([]byte{1})))
}
