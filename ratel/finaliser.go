package ratel

// Finaliser is the layer above storage that gets to validate and settle a
// write transaction's pending mutations before they are committed.
//
// Finalise runs first. If it needs a step of the commit not to interleave with
// other commits it takes the keyspace CommitLock and reports locked. A
// finaliser that locked is then told the outcome, Committed with the commit
// sequence number or Failed with the error, and releases the lock there.
type Finaliser interface {
	Finalise(tx *Transaction) (locked bool, err error)
	Committed(seq uint64)
	Failed(err error)
}

type nopFinaliser struct{}

func (nopFinaliser) Finalise(*Transaction) (bool, error) { return false, nil }
func (nopFinaliser) Committed(uint64)                    {}
func (nopFinaliser) Failed(error)                        {}

// LockingFinaliser runs Validate under the keyspace commit lock and holds the
// lock until the commit has an outcome.
type LockingFinaliser struct {
	// Validate checks the pending mutations. A nil Validate accepts them.
	Validate func(tx *Transaction) error
	tx       *Transaction
}

func (f *LockingFinaliser) Finalise(tx *Transaction) (locked bool, err error) {
	f.tx = tx
	tx.Keyspace().CommitLock().Lock()
	if f.Validate != nil {
		if err = f.Validate(tx); chk.E(err) {
			return true, err
		}
	}
	return true, nil
}

func (f *LockingFinaliser) Committed(seq uint64) {
	log.T.F("committed transaction %d at %d", f.tx.id, seq)
	f.tx.Keyspace().CommitLock().Unlock()
}

func (f *LockingFinaliser) Failed(err error) {
	log.D.F("transaction %d failed to commit: %s", f.tx.id, err)
	f.tx.Keyspace().CommitLock().Unlock()
}
