// Package ratel is the transactional storage core of a graph database, built
// on badger.
//
// A Database is a directory of Keyspaces, each its own badger instance. A
// Keyspace hands out Sessions, a Session opens Transactions, and every
// Transaction reads and writes through its Storage: a snapshot bound view of
// the keyspace that sees its own writes, mints identifiers and iterates key
// prefixes. Every resource in the chain closes exactly once, however many
// times Close is called, and closing a parent closes its children.
package ratel

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/typedb/typedb-sub037/config"
	"github.com/typedb/typedb-sub037/fault"
)

// MaxNameLen is the longest keyspace name.
const MaxNameLen = 128

var validName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateName checks that a keyspace name can be used as a directory name.
func ValidateName(name string) (err error) {
	if len(name) == 0 || len(name) > MaxNameLen || !validName.MatchString(name) {
		err = fault.Wrap(fault.ErrInvalidKeyspaceName, "validate name", []byte(name),
			errorf.D("keyspace names are 1 to %d of [A-Za-z0-9_-]", MaxNameLen))
	}
	return
}

// Database is a root directory of keyspaces.
type Database struct {
	dir            string
	opts           engineOptions
	flattenOnClose bool
	// mu serialises Create and Delete of the same name.
	mu        sync.Mutex
	keyspaces *xsync.MapOf[string, *Keyspace]
	closed    atomic.Bool
}

// Open opens the database at the configured directory, creating the
// directory if need be, and opens every keyspace found in it.
func Open(cfg *config.C) (d *Database, err error) {
	if err = cfg.Validate(); chk.E(err) {
		return
	}
	d = &Database{
		dir:            cfg.DataDir,
		opts:           newEngineOptions(cfg),
		flattenOnClose: cfg.FlattenOnClose,
		keyspaces:      xsync.NewMapOf[string, *Keyspace](),
	}
	if cfg.InMemory {
		log.I.Ln("opening in memory database")
		return
	}
	log.I.Ln("opening database at", d.dir)
	if err = os.MkdirAll(d.dir, 0700); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "open database", []byte(d.dir), err)
		return
	}
	var entries []os.DirEntry
	if entries, err = os.ReadDir(d.dir); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "open database", []byte(d.dir), err)
		return
	}
	var g errgroup.Group
	for _, e := range entries {
		if !e.IsDir() || ValidateName(e.Name()) != nil {
			continue
		}
		name := e.Name()
		g.Go(func() (err error) {
			var ks *Keyspace
			if ks, err = openKeyspace(d, name); err != nil {
				return
			}
			d.keyspaces.Store(name, ks)
			return
		})
	}
	if err = g.Wait(); err != nil {
		log.E.F("failed to open database at %s: %s", d.dir, err)
		chk.E(d.Close())
		return nil, err
	}
	log.I.F("opened %d keyspaces", d.keyspaces.Size())
	return
}

// Path is the root directory.
func (d *Database) Path() string { return d.dir }

// IsOpen reports whether Close has not yet been called.
func (d *Database) IsOpen() bool { return !d.closed.Load() }

func (d *Database) checkOpen(op string) error {
	if d.closed.Load() {
		return fault.New(fault.ErrDatabaseClosed, op, []byte(d.dir))
	}
	return nil
}

// Create creates, initialises and opens a new keyspace.
func (d *Database) Create(name string) (ks *Keyspace, err error) {
	if err = d.checkOpen("create keyspace"); err != nil {
		return
	}
	if err = ValidateName(name); err != nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.keyspaces.Load(name); ok {
		err = fault.New(fault.ErrKeyspaceExists, "create keyspace", []byte(name))
		return
	}
	if ks, err = createKeyspace(d, name); err != nil {
		return
	}
	d.keyspaces.Store(name, ks)
	return
}

// Get returns an open keyspace. A keyspace that was closed on its own is
// opened again from its directory.
func (d *Database) Get(name string) (ks *Keyspace, err error) {
	if err = d.checkOpen("get keyspace"); err != nil {
		return
	}
	var ok bool
	if ks, ok = d.keyspaces.Load(name); ok {
		return
	}
	if d.opts.inMemory || ValidateName(name) != nil {
		err = fault.New(fault.ErrKeyspaceNotFound, "get keyspace", []byte(name))
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if ks, ok = d.keyspaces.Load(name); ok {
		return
	}
	if fi, statErr := os.Stat(d.keyspaceDir(name)); statErr != nil || !fi.IsDir() {
		err = fault.New(fault.ErrKeyspaceNotFound, "get keyspace", []byte(name))
		return
	}
	if ks, err = openKeyspace(d, name); err != nil {
		return
	}
	d.keyspaces.Store(name, ks)
	return
}

// Contains reports whether a keyspace is open.
func (d *Database) Contains(name string) (ok bool) {
	_, ok = d.keyspaces.Load(name)
	return
}

// All returns every keyspace, sorted by name.
func (d *Database) All() (all []*Keyspace) {
	d.keyspaces.Range(func(_ string, ks *Keyspace) bool {
		all = append(all, ks)
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].name < all[j].name })
	return
}

// Delete closes a keyspace and removes it from disk. This cannot be undone.
func (d *Database) Delete(name string) (err error) {
	var ks *Keyspace
	if ks, err = d.Get(name); err != nil {
		return
	}
	return ks.Delete()
}

// forget drops a keyspace from the registry. The caller holds mu.
func (d *Database) forget(ks *Keyspace) {
	d.keyspaces.Compute(ks.name, func(old *Keyspace, loaded bool) (*Keyspace, bool) {
		// the name may already belong to a newer keyspace
		return old, !loaded || old == ks
	})
}

func (d *Database) keyspaceDir(name string) string {
	if d.opts.inMemory {
		return ""
	}
	return filepath.Join(d.dir, name)
}

// Close closes every keyspace. Calls after the first do nothing.
func (d *Database) Close() (err error) {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	log.I.F("closing database %s", d.dir)
	var g errgroup.Group
	for _, ks := range d.All() {
		g.Go(ks.Close)
	}
	err = g.Wait()
	log.I.F("database closed")
	return
}
