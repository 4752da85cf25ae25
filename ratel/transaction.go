package ratel

import (
	"sync/atomic"

	"github.com/typedb/typedb-sub037/fault"
)

// Type is the kind of a transaction.
type Type int

const (
	// Read transactions only read. Writes and Commit fail.
	Read Type = iota
	// Write transactions buffer writes until Commit.
	Write
)

func (t Type) String() string {
	if t == Write {
		return "write"
	}
	return "read"
}

// Option configures a transaction.
type Option func(tx *Transaction)

// WithFinaliser sets the finaliser Commit consults.
func WithFinaliser(f Finaliser) Option {
	return func(tx *Transaction) { tx.finaliser = f }
}

// Transaction is an optimistic transaction under snapshot isolation. Its reads
// see the keyspace as of the snapshot plus its own writes, and its writes are
// invisible to others until Commit. Conflicts are detected at Commit and are
// never retried here.
type Transaction struct {
	id        uint64
	typ       Type
	session   *Session
	storage   *Storage
	finaliser Finaliser
	closed    atomic.Bool
}

func newTransaction(s *Session, id uint64, t Type, opts ...Option) (tx *Transaction) {
	tx = &Transaction{
		id:        id,
		typ:       t,
		session:   s,
		finaliser: nopFinaliser{},
	}
	for _, o := range opts {
		o(tx)
	}
	tx.storage = newStorage(s.keyspace, t)
	return
}

// Type is the transaction type.
func (tx *Transaction) Type() Type { return tx.typ }

// Session is the session that opened the transaction.
func (tx *Transaction) Session() *Session { return tx.session }

// Keyspace is the keyspace the transaction runs against.
func (tx *Transaction) Keyspace() *Keyspace { return tx.session.keyspace }

// Storage is the read and write boundary of the transaction.
func (tx *Transaction) Storage() *Storage { return tx.storage }

// Snapshot is the sequence number the reads are bound to.
func (tx *Transaction) Snapshot() uint64 { return tx.storage.Snapshot() }

// IsOpen reports whether the transaction is neither committed nor closed.
func (tx *Transaction) IsOpen() bool { return !tx.closed.Load() }

// Commit finalises and commits the writes, then closes the transaction
// whatever the outcome. It returns the timestamp the writes were committed
// at, which later snapshots see.
func (tx *Transaction) Commit() (seq uint64, err error) {
	if tx.closed.Load() {
		err = fault.New(fault.ErrTransactionClosed, "commit", nil)
		return
	}
	if tx.typ == Read {
		err = fault.New(fault.ErrIllegalWriteOnReadTransaction, "commit", nil)
		return
	}
	defer func() { chk.E(tx.Close()) }()
	var locked bool
	if locked, err = tx.finaliser.Finalise(tx); err != nil {
		if locked {
			tx.finaliser.Failed(err)
		}
		return
	}
	seq, err = tx.storage.commit()
	if locked {
		if err != nil {
			tx.finaliser.Failed(err)
		} else {
			tx.finaliser.Committed(seq)
		}
	}
	return
}

// Rollback drops every buffered write and closes the open iterators. The
// transaction stays open at the snapshot it began with. Committed data is
// untouched. On a closed transaction it does nothing.
func (tx *Transaction) Rollback() (err error) {
	if tx.closed.Load() {
		return
	}
	if err = tx.storage.reset(); fault.IsLifecycle(err) {
		// closed meanwhile
		return nil
	}
	return
}

// Close closes every iterator, releases the badger transaction and leaves the
// session. Calls after the first do nothing.
func (tx *Transaction) Close() (err error) {
	if !tx.closed.CompareAndSwap(false, true) {
		return
	}
	tx.storage.close()
	tx.session.removeTransaction(tx)
	log.T.F("closed %s transaction %d", tx.typ, tx.id)
	return
}
