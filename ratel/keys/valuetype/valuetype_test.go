package valuetype

import (
	"bytes"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

func TestOf(t *testing.T) {
	for b := 0; b < 256; b++ {
		_, err := Of(byte(b))
		if _, known := names[V(b)]; known {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, fault.ErrUnrecognisedEncoding)
		}
	}
}

func TestLongOrder(t *testing.T) {
	vals := []int64{math.MinInt64, math.MinInt64 + 1, -1 << 40, -2, -1, 0, 1, 2, 1 << 40, math.MaxInt64}
	for range 1000 {
		vals = append(vals, int64(frand.Uint64n(math.MaxUint64)))
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i] < vals[j] })
	for i := 1; i < len(vals); i++ {
		a, b := EncodeLong(vals[i-1]), EncodeLong(vals[i])
		if vals[i-1] == vals[i] {
			require.Equal(t, a, b)
			continue
		}
		require.Negative(t, bytes.Compare(a, b), "%d < %d", vals[i-1], vals[i])
	}
	for _, v := range vals {
		got, err := DecodeLong(EncodeLong(v))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestDoubleOrder(t *testing.T) {
	vals := []float64{math.Inf(-1), -math.MaxFloat64, -1e300, -1.5, -math.SmallestNonzeroFloat64,
		0, math.SmallestNonzeroFloat64, 1, 1.5, 1e300, math.MaxFloat64, math.Inf(1)}
	for range 1000 {
		f := float64(frand.Uint64n(1<<53))/(1<<53) - 0.5
		vals = append(vals, f*math.Pow(10, float64(frand.Intn(40))))
	}
	sort.Float64s(vals)
	for i := 1; i < len(vals); i++ {
		if vals[i-1] == vals[i] {
			continue
		}
		a, err := EncodeDouble(vals[i-1])
		require.NoError(t, err)
		b, err := EncodeDouble(vals[i])
		require.NoError(t, err)
		require.Negative(t, bytes.Compare(a, b), "%g < %g", vals[i-1], vals[i])
	}
	for _, v := range vals {
		b, err := EncodeDouble(v)
		require.NoError(t, err)
		got, err := DecodeDouble(b)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	_, err := EncodeDouble(math.NaN())
	require.ErrorIs(t, err, fault.ErrUnsupportedValue)
}

func TestRoundTrip(t *testing.T) {
	now := time.UnixMilli(time.Now().UnixMilli()).UTC()
	tests := []struct {
		v     V
		value any
	}{
		{Boolean, true},
		{Boolean, false},
		{Long, int64(-42)},
		{Double, 3.25},
		{String, "héllo wörld"},
		{String, ""},
		{DateTime, now},
		{DateTime, time.Date(1969, 7, 20, 20, 17, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		b, err := Encode(tt.v, tt.value)
		require.NoError(t, err)
		got, err := Decode(tt.v, b)
		require.NoError(t, err)
		require.Equal(t, tt.value, got, tt.v.String())
	}
	// int is accepted for long and comes back as int64
	b, err := Encode(Long, 7)
	require.NoError(t, err)
	got, err := Decode(Long, b)
	require.NoError(t, err)
	require.Equal(t, int64(7), got)
}

func TestEncodeMismatch(t *testing.T) {
	_, err := Encode(Boolean, "true")
	require.ErrorIs(t, err, fault.ErrUnsupportedValue)
	_, err = Encode(Object, 1)
	require.ErrorIs(t, err, fault.ErrUnsupportedValue)
	_, err = Encode(V(99), 1)
	require.ErrorIs(t, err, fault.ErrUnrecognisedEncoding)
	_, err = Encode(String, string([]byte{0xff, 0xfe}))
	require.ErrorIs(t, err, fault.ErrUnsupportedValue)
	_, err = DecodeBoolean([]byte{2})
	require.ErrorIs(t, err, fault.ErrMalformedKey)
	_, err = DecodeLong([]byte{1, 2})
	require.ErrorIs(t, err, fault.ErrMalformedKey)
}

func TestDateTimeOrder(t *testing.T) {
	a := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(1970, 1, 1, 0, 0, 0, 1e6, time.UTC)
	c := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	require.Negative(t, bytes.Compare(EncodeDateTime(a), EncodeDateTime(b)))
	require.Negative(t, bytes.Compare(EncodeDateTime(b), EncodeDateTime(c)))
}

func TestSized(t *testing.T) {
	s1, err := NewSized("name")
	require.NoError(t, err)
	b := keys.Write(s1, New(Long), &Terminal{Val: EncodeLong(5)})
	s2, v, term := &Sized{}, New(), &Terminal{}
	require.NoError(t, keys.Read(b, s2, v, term))
	require.Equal(t, "name", string(s2.Val))
	require.Equal(t, Long, v.Val)
	x, err := DecodeLong(term.Val)
	require.NoError(t, err)
	require.Equal(t, int64(5), x)
	_, err = NewSized(string(make([]byte, MaxStringSize+1)))
	require.ErrorIs(t, err, fault.ErrUnsupportedValue)
}
