package ratel

import (
	"bytes"
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/attrsync"
	"github.com/typedb/typedb-sub037/ratel/iterator"
	"github.com/typedb/typedb-sub037/ratel/keygen"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

// KV is a raw key and value.
type KV struct{ Key, Value []byte }

// Storage is the only way a transaction touches the keyspace. It is safe for
// concurrent use.
type Storage struct {
	mu        sync.Mutex
	keyspace  *Keyspace
	typ       Type
	txn       *badger.Txn
	snapshot  uint64
	buffered  *keygen.Buffered
	iterators *iterator.Registry
	// cursors are the badger iterators still open on txn, badger refuses to
	// discard a transaction while any is.
	cursors map[*cursor]struct{}
	closed  bool
}

var (
	_ keygen.Reader   = (*Storage)(nil)
	_ iterator.Opener = (*Storage)(nil)
)

func newStorage(ks *Keyspace, t Type) (s *Storage) {
	s = &Storage{
		keyspace:  ks,
		typ:       t,
		iterators: iterator.NewRegistry(),
		cursors:   make(map[*cursor]struct{}),
	}
	s.begin()
	return
}

// begin takes a read timestamp from the keyspace oracle and starts a badger
// transaction at it. The caller owns s.
func (s *Storage) begin() {
	s.snapshot = s.keyspace.orc.begin()
	s.txn = s.keyspace.DB.NewTransactionAt(s.snapshot, s.typ == Write)
	s.buffered = keygen.NewBuffered()
}

// discard closes the cursors left open and drops the badger transaction. The
// caller holds mu.
func (s *Storage) discard() {
	for c := range s.cursors {
		c.it.Close()
		delete(s.cursors, c)
	}
	s.txn.Discard()
}

func (s *Storage) checkOpen(op string, key []byte) error {
	if s.closed {
		return fault.New(fault.ErrTransactionClosed, op, key)
	}
	return nil
}

func (s *Storage) checkWrite(op string, key []byte) (err error) {
	if err = s.checkOpen(op, key); err != nil {
		return
	}
	if s.typ != Write {
		err = fault.New(fault.ErrIllegalWriteOnReadTransaction, op, key)
	}
	return
}

// track puts key in the read set of the badger transaction. Badger only
// checks reads for conflicts, so a write that was not preceded by a read of
// its key would otherwise lose silently to a concurrent writer of that key.
// The caller holds mu.
func (s *Storage) track(op string, key []byte) (err error) {
	if _, err = s.txn.Get(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		err = fault.Wrap(fault.ErrStorage, op, key, err)
		log.E.F("%s", err)
		return
	}
	return nil
}

// Type is the type of the owning transaction.
func (s *Storage) Type() Type { return s.typ }

// Keyspace is the keyspace the storage reads and writes.
func (s *Storage) Keyspace() *Keyspace { return s.keyspace }

// IsOpen reports whether the storage can still be used.
func (s *Storage) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

// Snapshot is the sequence number the reads are bound to.
func (s *Storage) Snapshot() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// KeyGenerator is the keyspace's persisted identifier generator.
func (s *Storage) KeyGenerator() *keygen.Persisted { return s.keyspace.keyGen }

// BufferedKeyGenerator mints provisional identifiers local to this
// transaction. Rollback replaces it.
func (s *Storage) BufferedKeyGenerator() *keygen.Buffered {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffered
}

// AttributeSync is the keyspace's attribute synchronizer.
func (s *Storage) AttributeSync() *attrsync.T { return s.keyspace.attrs }

// Iterators is the number of iterators open on the storage.
func (s *Storage) Iterators() int { return s.iterators.Len() }

// Get returns the value of a key, nil if the key is absent. A present key with
// an empty value returns an empty, non-nil slice.
func (s *Storage) Get(key []byte) (value []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkOpen("get", key); err != nil {
		return
	}
	var item *badger.Item
	if item, err = s.txn.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		err = fault.Wrap(fault.ErrStorage, "get", key, err)
		log.E.F("%s", err)
		return
	}
	if value, err = item.ValueCopy(nil); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "get", key, err)
		return
	}
	if value == nil {
		value = []byte{}
	}
	return
}

// GetLastKey returns the greatest key with the prefix, nil if there is none.
func (s *Storage) GetLastKey(prefix []byte) (key []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkOpen("get last key", prefix); err != nil {
		return
	}
	it := s.txn.NewIterator(badger.IteratorOptions{Reverse: true})
	defer it.Close()
	// the successor is the least key above the prefix range, a reverse seek
	// lands on it or on the greatest key below it
	if succ := keys.Successor(prefix); succ == nil {
		it.Rewind()
	} else {
		it.Seek(succ)
	}
	for ; it.Valid(); it.Next() {
		k := it.Item().Key()
		if bytes.HasPrefix(k, prefix) {
			return it.Item().KeyCopy(nil), nil
		}
		if bytes.Compare(k, prefix) < 0 {
			return
		}
	}
	return
}

// SeekFirstKey returns the least key with the prefix that is not less than
// from, nil if there is none.
func (s *Storage) SeekFirstKey(from, prefix []byte) (key []byte, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkOpen("seek first key", prefix); err != nil {
		return
	}
	it := s.txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
	defer it.Close()
	if bytes.Compare(from, prefix) < 0 {
		from = prefix
	}
	it.Seek(from)
	if it.ValidForPrefix(prefix) {
		key = it.Item().KeyCopy(nil)
	}
	return
}

// Put buffers a write. The value parts are joined; no parts stores an empty
// value. A concurrent transaction that commits a write of the same key first
// makes this one fail to commit.
func (s *Storage) Put(key []byte, value ...[]byte) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkWrite("put", key); err != nil {
		return
	}
	if err = s.track("put", key); err != nil {
		return
	}
	v := keys.Concat(value...)
	if err = s.txn.Set(bytes.Clone(key), v); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "put", key, err)
	}
	return
}

// Delete buffers the removal of a key. It conflicts like Put.
func (s *Storage) Delete(key []byte) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkWrite("delete", key); err != nil {
		return
	}
	if err = s.track("delete", key); err != nil {
		return
	}
	if err = s.txn.Delete(bytes.Clone(key)); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "delete", key, err)
	}
	return
}

// Iterate returns the raw entries whose keys start with the prefix.
func (s *Storage) Iterate(prefix []byte) *iterator.Prefix[KV] {
	return Iterate(s, prefix, func(k, v []byte) (KV, error) { return KV{k, v}, nil })
}

// Iterate returns the entries whose keys start with the prefix, decoded.
func Iterate[T any](s *Storage, prefix []byte, decode iterator.Decoder[T]) *iterator.Prefix[T] {
	return iterator.New(s, s.iterators, prefix, decode)
}

// OpenCursor opens a badger iterator on the transaction, for a prefix
// iterator.
func (s *Storage) OpenCursor(prefix []byte) (c iterator.Cursor, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkOpen("iterate", prefix); err != nil {
		return
	}
	cur := &cursor{s: s, it: s.txn.NewIterator(badger.IteratorOptions{
		Prefix:         prefix,
		PrefetchValues: true,
		PrefetchSize:   100,
	})}
	s.cursors[cur] = struct{}{}
	return cur, nil
}

// commit commits the badger transaction and returns the timestamp it was
// written at.
func (s *Storage) commit() (seq uint64, err error) {
	s.iterators.CloseAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkWrite("commit", nil); err != nil {
		return
	}
	for c := range s.cursors {
		c.it.Close()
		delete(s.cursors, c)
	}
	if seq, err = s.keyspace.orc.commit(s.txn); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			err = fault.Wrap(fault.ErrConflict, "commit", nil, err)
			log.D.F("%s", err)
			return
		}
		err = fault.Wrap(fault.ErrStorage, "commit", nil, err)
		log.E.F("%s", err)
		return
	}
	return
}

// reset drops the buffered writes and the provisional identifiers. The read
// timestamp is kept, so the transaction goes on seeing the snapshot it began
// with. A read transaction has no writes and keeps its badger transaction.
func (s *Storage) reset() (err error) {
	s.iterators.CloseAll()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err = s.checkOpen("rollback", nil); err != nil {
		return
	}
	s.buffered = keygen.NewBuffered()
	if s.typ == Read {
		return
	}
	s.discard()
	s.txn = s.keyspace.DB.NewTransactionAt(s.snapshot, true)
	return
}

// close closes the iterators, drops the badger transaction and releases the
// read timestamp, once.
func (s *Storage) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()
	s.iterators.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discard()
	s.keyspace.orc.done(s.snapshot)
}

// cursor adapts a badger iterator to iterator.Cursor, taking the storage lock
// around every call.
type cursor struct {
	s  *Storage
	it *badger.Iterator
}

func (c *cursor) open() bool {
	_, ok := c.s.cursors[c]
	return ok
}

func (c *cursor) Seek(key []byte) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.open() {
		c.it.Seek(key)
	}
}

func (c *cursor) ValidForPrefix(prefix []byte) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	return c.open() && c.it.ValidForPrefix(prefix)
}

func (c *cursor) Key() []byte {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.open() {
		return nil
	}
	return c.it.Item().KeyCopy(nil)
}

func (c *cursor) Value() (v []byte, err error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if !c.open() {
		err = fault.New(fault.ErrTransactionClosed, "read value", nil)
		return
	}
	item := c.it.Item()
	if v, err = item.ValueCopy(nil); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "read value", item.KeyCopy(nil), err)
		return
	}
	if v == nil {
		v = []byte{}
	}
	return
}

func (c *cursor) Next() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.open() {
		c.it.Next()
	}
}

func (c *cursor) Close() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.open() {
		c.it.Close()
		delete(c.s.cursors, c)
	}
}
