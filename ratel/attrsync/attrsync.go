// Package attrsync coordinates transactions that race to create the same
// attribute.
//
// Attributes are addressed by value, so two transactions that do not see each
// other's writes may both create one and both commit, the puts being
// idempotent. The flag of an attribute lets the side effects of creation run
// once per keyspace however many transactions committed it. The map is an aid
// and not a source of truth: storage is.
package attrsync

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/typedb/typedb-sub037/ratel/iid"
)

// Flag marks whether the creation of one attribute has been claimed.
type Flag struct {
	claimed atomic.Bool
}

// ClaimIfUnclaimed claims the flag. It returns true to exactly one caller.
func (f *Flag) ClaimIfUnclaimed() bool { return f.claimed.CompareAndSwap(false, true) }

// Claimed reports whether the flag has been claimed.
func (f *Flag) Claimed() bool { return f.claimed.Load() }

// T is the flag map of one keyspace. Entries live as long as the keyspace.
type T struct {
	flags *xsync.MapOf[string, *Flag]
}

// New returns an empty synchronizer.
func New() *T { return &T{flags: xsync.NewMapOf[string, *Flag]()} }

// Get returns the flag of an attribute, creating it unclaimed on first use.
// Concurrent callers always receive the same flag.
func (t *T) Get(attribute iid.T) (f *Flag) {
	f, _ = t.flags.LoadOrCompute(string(attribute), func() *Flag { return new(Flag) })
	return
}

// Len is the number of attributes with a flag.
func (t *T) Len() int { return t.flags.Size() }

// Remove drops the flag of an attribute, for instance after the attribute is
// deleted. A later Get returns a fresh unclaimed flag.
func (t *T) Remove(attribute iid.T) {
	if _, ok := t.flags.LoadAndDelete(string(attribute)); ok {
		log.T.F("dropped attribute flag %s", attribute)
	}
}
