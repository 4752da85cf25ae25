package ratel

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/attrsync"
	"github.com/typedb/typedb-sub037/ratel/keygen"
)

// Keyspace is one badger instance holding one graph. It owns the persisted
// identifier generator, the attribute synchronizer and the commit lock shared
// by all of its transactions.
type Keyspace struct {
	name     string
	dir      string
	database *Database
	// DB is the badger db, opened managed. Its transactions take their
	// timestamps from orc.
	*badger.DB
	Logger   *logger
	orc      *oracle
	keyGen   *keygen.Persisted
	attrs    *attrsync.T
	version  uint16
	sessions *xsync.MapOf[uint64, *Session]
	seq      atomic.Uint64
	// commit is held by finalisers across the window in which they must not
	// interleave.
	commit sync.RWMutex
	// Flatten triggers a flatten of the LSM tree at close.
	Flatten bool
	stopGC  context.CancelFunc
	gcDone  sync.WaitGroup
	closed  atomic.Bool
}

func newKeyspace(d *Database, name string) (ks *Keyspace, err error) {
	ks = &Keyspace{
		name:     name,
		dir:      d.keyspaceDir(name),
		database: d,
		keyGen:   keygen.NewPersisted(),
		attrs:    attrsync.New(),
		sessions: xsync.NewMapOf[uint64, *Session](),
		Flatten:  d.flattenOnClose,
	}
	if ks.DB, ks.Logger, err = d.opts.open(ks.dir, name); err != nil {
		return
	}
	ks.orc = newOracle(ks.DB)
	return
}

// createKeyspace opens a new directory and writes the encoding markers.
func createKeyspace(d *Database, name string) (ks *Keyspace, err error) {
	if dir := d.keyspaceDir(name); dir != "" {
		if _, statErr := os.Stat(dir); statErr == nil {
			err = fault.New(fault.ErrKeyspaceExists, "create keyspace", []byte(name))
			return
		}
	}
	log.I.F("creating keyspace %s", name)
	if ks, err = newKeyspace(d, name); err != nil {
		return
	}
	if err = initialise(ks.orc); err != nil {
		if !fault.IsLifecycle(err) {
			err = fault.Wrap(fault.ErrStorage, "initialise", []byte(name), err)
		}
		chk.E(ks.release())
		return nil, err
	}
	ks.version = Version
	ks.collect(d.opts.gcInterval, d.opts.gcRatio)
	return
}

// openKeyspace opens an existing keyspace and recovers its generator.
func openKeyspace(d *Database, name string) (ks *Keyspace, err error) {
	log.I.F("opening keyspace %s", name)
	if ks, err = newKeyspace(d, name); err != nil {
		return
	}
	if ks.version, err = checkVersion(ks.orc); chk.E(err) {
		chk.E(ks.release())
		return nil, err
	}
	if err = ks.recover(); chk.E(err) {
		chk.E(ks.release())
		return nil, err
	}
	ks.collect(d.opts.gcInterval, d.opts.gcRatio)
	return
}

// recover resumes the persisted counters from the latest snapshot.
func (ks *Keyspace) recover() (err error) {
	s := newStorage(ks, Read)
	defer s.close()
	return ks.keyGen.Recover(s)
}

// Name is the keyspace name.
func (ks *Keyspace) Name() string { return ks.name }

// Path is the keyspace directory, empty in memory.
func (ks *Keyspace) Path() string { return ks.dir }

// Version is the encoding version of the stored keys.
func (ks *Keyspace) Version() uint16 { return ks.version }

// IsOpen reports whether Close has not yet been called.
func (ks *Keyspace) IsOpen() bool { return !ks.closed.Load() }

// KeyGenerator is the persisted identifier generator.
func (ks *Keyspace) KeyGenerator() *keygen.Persisted { return ks.keyGen }

// AttributeSync is the attribute synchronizer.
func (ks *Keyspace) AttributeSync() *attrsync.T { return ks.attrs }

// CommitLock is the lock finalisers take to serialise their locked window.
func (ks *Keyspace) CommitLock() *sync.RWMutex { return &ks.commit }

// SetLogLevel sets the level of the badger logger.
func (ks *Keyspace) SetLogLevel(level int) { ks.Logger.SetLogLevel(level) }

// Session opens a session.
func (ks *Keyspace) Session() (s *Session, err error) {
	if ks.closed.Load() {
		err = fault.New(fault.ErrKeyspaceClosed, "open session", []byte(ks.name))
		return
	}
	s = newSession(ks, ks.seq.Add(1))
	ks.sessions.Store(s.id, s)
	// a concurrent Close may have missed the session
	if ks.closed.Load() {
		chk.E(s.Close())
		err = fault.New(fault.ErrKeyspaceClosed, "open session", []byte(ks.name))
		return nil, err
	}
	return
}

func (ks *Keyspace) removeSession(s *Session) { ks.sessions.Delete(s.id) }

// Sessions is the number of open sessions.
func (ks *Keyspace) Sessions() int { return ks.sessions.Size() }

// Delete closes the keyspace, drops it from the database and removes its
// directory. This cannot be undone.
func (ks *Keyspace) Delete() (err error) {
	d := ks.database
	d.mu.Lock()
	defer d.mu.Unlock()
	log.W.F("deleting keyspace %s", ks.name)
	if err = ks.release(); chk.E(err) {
		return
	}
	d.forget(ks)
	if ks.dir != "" {
		if err = os.RemoveAll(ks.dir); chk.E(err) {
			err = fault.Wrap(fault.ErrStorage, "delete keyspace", []byte(ks.name), err)
		}
	}
	return
}
