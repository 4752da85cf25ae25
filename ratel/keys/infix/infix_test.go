package infix

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typedb/typedb-sub037/fault"
)

func TestOf(t *testing.T) {
	for b := 0; b < 256; b++ {
		i, err := Of(byte(b))
		if _, known := names[I(int8(b))]; known {
			require.NoError(t, err)
			require.Equal(t, I(int8(b)), i)
			continue
		}
		require.ErrorIs(t, err, fault.ErrUnrecognisedEncoding, "byte %d", b)
	}
}

func TestPairs(t *testing.T) {
	edges := []I{SubOut, OwnsOut, OwnsKeyOut, PlaysOut, RelatesOut, HasOut, PlayingOut, RelatingOut, RolePlayerOut}
	for _, out := range edges {
		require.True(t, out.IsOut())
		require.True(t, out.IsEdge())
		in, ok := out.In()
		require.True(t, ok)
		require.True(t, in.IsIn())
		require.Equal(t, -out, in)
		back, ok := in.Out()
		require.True(t, ok)
		require.Equal(t, out, back)
	}
	// isa only exists inward
	in, ok := IsaIn.In()
	require.True(t, ok)
	require.Equal(t, IsaIn, in)
	_, ok = IsaIn.Out()
	require.False(t, ok)
	// properties have no direction
	for i := PropertyLabel; i <= PropertyThen; i++ {
		require.True(t, i.IsProperty())
		require.False(t, i.IsEdge())
		require.False(t, i.IsOut())
		_, ok = i.Out()
		require.False(t, ok)
		_, ok = i.In()
		require.False(t, ok)
	}
}

func TestElementRoundTrip(t *testing.T) {
	for i := range names {
		var b [1]byte
		b[0] = i.B()
		got := New()
		require.NotNil(t, got.Read(bytes.NewReader(b[:])))
		require.Equal(t, i, got.Val)
	}
}
