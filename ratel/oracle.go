package ratel

import (
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// oracle hands out the timestamps of one keyspace. Badger runs managed under
// it, so a transaction holds its read timestamp for its whole life, across
// rollbacks, and a commit lands at exactly the timestamp it reports.
//
// Commits are written one at a time, and a new reader only ever sees a commit
// that has been fully written.
type oracle struct {
	db        *badger.DB
	mu        sync.Mutex
	committed uint64
	// readers counts the open transactions at each read timestamp.
	readers map[uint64]int
}

func newOracle(db *badger.DB) *oracle {
	return &oracle{
		db:        db,
		committed: db.MaxVersion(),
		readers:   make(map[uint64]int),
	}
}

// begin registers a reader at the latest commit and returns its timestamp.
func (o *oracle) begin() (ts uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ts = o.committed
	o.readers[ts]++
	return
}

// done releases a reader registered by begin.
func (o *oracle) done(ts uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.readers[ts]--; o.readers[ts] <= 0 {
		delete(o.readers, ts)
	}
	o.advance()
}

// commit writes txn at the next timestamp. A conflict leaves the timestamp
// unused.
func (o *oracle) commit(txn *badger.Txn) (ts uint64, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	next := o.committed + 1
	if err = txn.CommitAt(next, nil); err != nil {
		return
	}
	o.committed = next
	o.advance()
	return next, nil
}

// advance lets badger drop the versions and conflict history that no open
// reader can see. The oldest reader never moves backwards, so neither does
// the discard timestamp. The caller holds mu.
func (o *oracle) advance() {
	low := o.committed
	for ts := range o.readers {
		if ts < low {
			low = ts
		}
	}
	o.db.SetDiscardTs(low)
}
