package fault_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/typedb/typedb-sub037/fault"
)

func TestClasses(t *testing.T) {
	cause := errors.New("disk on fire")
	tests := []struct {
		name  string
		err   error
		class func(error) bool
	}{
		{"encoding", fault.New(fault.ErrMalformedKey, "read", []byte{1, 2}), fault.IsEncoding},
		{"lifecycle", fault.New(fault.ErrTransactionClosed, "put", nil), fault.IsLifecycle},
		{"conflict", fault.Wrap(fault.ErrConflict, "commit", nil, cause), fault.IsConflict},
		{"resource", fault.Wrap(fault.ErrStorage, "get", []byte{0xff}, cause), fault.IsResource},
	}
	all := []func(error) bool{fault.IsEncoding, fault.IsLifecycle, fault.IsConflict, fault.IsResource}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.True(t, tt.class(tt.err))
			var n int
			for _, is := range all {
				if is(tt.err) {
					n++
				}
			}
			require.Equal(t, 1, n, "an error belongs to exactly one class")
		})
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := error(fault.Wrap(fault.ErrConflict, "commit", []byte{0xab, 0xcd}, cause))
	require.ErrorIs(t, err, fault.ErrConflict)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, fault.ErrStorage)
	require.Equal(t, "commit: transaction conflict [abcd]: underlying", err.Error())
	var fe *fault.Error
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "commit", fe.Op)
	require.Equal(t, []byte{0xab, 0xcd}, fe.Scope)
}

func TestNewHasNoCause(t *testing.T) {
	err := fault.New(fault.ErrEmptySequence, "next", nil)
	require.Equal(t, "next: sequence has no more elements", err.Error())
	require.Len(t, err.Unwrap(), 1)
}
