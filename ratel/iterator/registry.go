package iterator

import (
	"io"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/typedb/typedb-sub037/fault"
)

// Registry tracks the iterators open against one transaction, so that the
// transaction can close whatever its callers abandoned before it releases the
// cursors' snapshot.
type Registry struct {
	seq    atomic.Uint64
	live   *xsync.MapOf[uint64, io.Closer]
	closed atomic.Bool
}

// NewRegistry returns an empty, open registry.
func NewRegistry() *Registry {
	return &Registry{live: xsync.NewMapOf[uint64, io.Closer]()}
}

// Add registers an iterator and returns its handle. It fails once the
// registry is closed.
func (r *Registry) Add(c io.Closer) (handle uint64, err error) {
	if r.closed.Load() {
		err = fault.New(fault.ErrTransactionClosed, "register iterator", nil)
		return
	}
	handle = r.seq.Add(1)
	r.live.Store(handle, c)
	// a concurrent Close may have missed the entry
	if r.closed.Load() {
		r.live.Delete(handle)
		err = fault.New(fault.ErrTransactionClosed, "register iterator", nil)
	}
	return
}

// Remove forgets an iterator. Removing an unknown handle is a no-op.
func (r *Registry) Remove(handle uint64) { r.live.Delete(handle) }

// Len is the number of live iterators.
func (r *Registry) Len() int { return r.live.Size() }

// CloseAll closes every live iterator. The registry stays open.
func (r *Registry) CloseAll() {
	var n int
	r.live.Range(func(handle uint64, c io.Closer) bool {
		chk.E(c.Close())
		r.live.Delete(handle)
		n++
		return true
	})
	if n > 0 {
		log.D.F("closed %d abandoned iterators", n)
	}
}

// Close closes every live iterator and refuses new ones.
func (r *Registry) Close() {
	r.closed.Store(true)
	r.CloseAll()
}
