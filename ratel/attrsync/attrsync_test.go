package attrsync

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/typedb/typedb-sub037/ratel/iid"
)

func TestClaimOnce(t *testing.T) {
	s := New()
	a := iid.T(frand.Bytes(12))
	f := s.Get(a)
	require.False(t, f.Claimed())
	require.True(t, f.ClaimIfUnclaimed())
	require.False(t, f.ClaimIfUnclaimed())
	require.True(t, f.Claimed())
	require.Same(t, f, s.Get(a))
	require.Equal(t, 1, s.Len())
	s.Remove(a)
	require.Zero(t, s.Len())
	require.False(t, s.Get(a).Claimed())
}

func TestRace(t *testing.T) {
	const attributes, racers = 64, 8
	s := New()
	ids := make([]iid.T, attributes)
	for i := range ids {
		ids[i] = iid.T(frand.Bytes(12))
	}
	wins := make([]atomic.Int32, attributes)
	var start sync.WaitGroup
	start.Add(1)
	var eg errgroup.Group
	for range racers {
		eg.Go(func() error {
			start.Wait()
			for i, a := range ids {
				// each racer asks with its own copy of the key
				if s.Get(append(iid.T(nil), a...)).ClaimIfUnclaimed() {
					wins[i].Add(1)
				}
			}
			return nil
		})
	}
	start.Done()
	require.NoError(t, eg.Wait())
	for i := range wins {
		require.Equal(t, int32(1), wins[i].Load(), "attribute %s", ids[i])
	}
	require.Equal(t, attributes, s.Len())
}
