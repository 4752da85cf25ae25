package ratel

import (
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/typedb/typedb-sub037/fault"
)

// Session opens transactions against one keyspace and closes whatever it
// opened when it closes.
type Session struct {
	id       uint64
	keyspace *Keyspace
	txs      *xsync.MapOf[uint64, *Transaction]
	seq      atomic.Uint64
	closed   atomic.Bool
}

func newSession(ks *Keyspace, id uint64) *Session {
	return &Session{
		id:       id,
		keyspace: ks,
		txs:      xsync.NewMapOf[uint64, *Transaction](),
	}
}

// Keyspace is the keyspace the session belongs to.
func (s *Session) Keyspace() *Keyspace { return s.keyspace }

// IsOpen reports whether Close has not yet been called.
func (s *Session) IsOpen() bool { return !s.closed.Load() }

// Transaction opens a transaction of the given type.
func (s *Session) Transaction(t Type, opts ...Option) (tx *Transaction, err error) {
	if s.closed.Load() {
		err = fault.New(fault.ErrSessionClosed, "open "+t.String()+" transaction", []byte(s.keyspace.name))
		return
	}
	if s.keyspace.closed.Load() {
		err = fault.New(fault.ErrKeyspaceClosed, "open "+t.String()+" transaction", []byte(s.keyspace.name))
		return
	}
	tx = newTransaction(s, s.seq.Add(1), t, opts...)
	s.txs.Store(tx.id, tx)
	// a concurrent Close may have missed the transaction
	if s.closed.Load() {
		chk.E(tx.Close())
		err = fault.New(fault.ErrSessionClosed, "open "+t.String()+" transaction", []byte(s.keyspace.name))
		return nil, err
	}
	log.T.F("opened %s transaction %d of session %d on %s", t, tx.id, s.id, s.keyspace.name)
	return
}

func (s *Session) removeTransaction(tx *Transaction) { s.txs.Delete(tx.id) }

// Transactions is the number of open transactions.
func (s *Session) Transactions() int { return s.txs.Size() }

// Close closes every open transaction of the session. Calls after the first
// do nothing.
func (s *Session) Close() (err error) {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.txs.Range(func(_ uint64, tx *Transaction) bool {
		chk.E(tx.Close())
		return true
	})
	s.keyspace.removeSession(s)
	log.T.F("closed session %d on %s", s.id, s.keyspace.name)
	return
}
