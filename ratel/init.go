package ratel

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/typedb/typedb-sub037/config"
	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/lol"
	"github.com/typedb/typedb-sub037/ratel/iid"
	"github.com/typedb/typedb-sub037/units"
)

// Version is the newest key encoding this build reads and writes.
const Version uint16 = 1

// engineOptions is the badger configuration shared by every keyspace of a
// database. Only the directory and logger differ between keyspaces.
type engineOptions struct {
	blockCache  int64
	indexCache  int64
	memTable    int64
	compression options.CompressionType
	syncWrites  bool
	inMemory    bool
	logLevel    int
	gcInterval  time.Duration
	gcRatio     float64
}

func newEngineOptions(c *config.C) (o engineOptions) {
	o = engineOptions{
		blockCache: units.MB(c.BlockCacheMB),
		indexCache: units.MB(c.IndexCacheMB),
		memTable:   units.MB(c.MemTableMB),
		syncWrites: c.SyncWrites,
		inMemory:   c.InMemory,
		logLevel:   lol.GetLogLevel(c.DBLogLevel),
		gcInterval: c.GCInterval,
		gcRatio:    float64(c.GCDiscardPercent) / 100,
	}
	switch strings.ToLower(c.Compression) {
	case "snappy":
		o.compression = options.Snappy
	case "zstd":
		o.compression = options.ZSTD
	default:
		o.compression = options.None
	}
	return
}

func (o engineOptions) open(dir, label string) (db *badger.DB, l *logger, err error) {
	path := dir
	if o.inMemory {
		path = ""
	}
	opts := badger.DefaultOptions(path)
	opts.InMemory = o.inMemory
	opts.BlockCacheSize = o.blockCache
	opts.IndexCacheSize = o.indexCache
	if o.memTable > 0 {
		opts.MemTableSize = o.memTable
	}
	opts.BlockSize = units.Mb
	opts.CompactL0OnClose = true
	opts.LmaxCompaction = true
	opts.Compression = o.compression
	opts.SyncWrites = o.syncWrites
	l = NewLogger(o.logLevel, label)
	opts.Logger = l
	log.D.F("opening badger for %s, block cache %s, index cache %s, memtable %s",
		label, units.Format(opts.BlockCacheSize), units.Format(opts.IndexCacheSize),
		units.Format(opts.MemTableSize))
	// timestamps are handed out by the keyspace oracle
	if db, err = badger.OpenManaged(opts); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "open "+label, nil, err)
		return
	}
	return
}

// initialise writes the encoding version into an empty keyspace. A keyspace
// that already holds any key is refused, so an old directory is never taken
// for a fresh one.
func initialise(o *oracle) (err error) {
	ts := o.begin()
	defer o.done(ts)
	txn := o.db.NewTransactionAt(ts, true)
	defer txn.Discard()
	it := txn.NewIterator(badger.IteratorOptions{})
	it.Rewind()
	found := it.Valid()
	var k []byte
	if found {
		k = it.Item().KeyCopy(nil)
	}
	it.Close()
	if found {
		return fault.New(fault.ErrAlreadyInitialised, "initialise", k)
	}
	if err = bumpVersion(txn, Version); err != nil {
		return
	}
	_, err = o.commit(txn)
	return
}

// checkVersion fails if the keyspace was written by a newer encoding, or was
// never initialised.
func checkVersion(o *oracle) (version uint16, err error) {
	ts := o.begin()
	defer o.done(ts)
	txn := o.db.NewTransactionAt(ts, false)
	defer txn.Discard()
	var item *badger.Item
	if item, err = txn.Get(iid.EncodingVersion()); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			err = fault.Wrap(fault.ErrIncompatibleEncoding, "check version",
				iid.EncodingVersion(), errorf.D("no encoding version, not a keyspace"))
			return
		}
		err = fault.Wrap(fault.ErrStorage, "check version", iid.EncodingVersion(), err)
		return
	}
	var val []byte
	if val, err = item.ValueCopy(nil); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "check version", iid.EncodingVersion(), err)
		return
	}
	if len(val) != 2 {
		err = fault.New(fault.ErrMalformedKey, "check version", val)
		return
	}
	version = binary.BigEndian.Uint16(val)
	if version > Version {
		err = fault.Wrap(fault.ErrIncompatibleEncoding, "check version", nil,
			errorf.D("keyspace encoding %d is newer than %d", version, Version))
	}
	return
}

func bumpVersion(txn *badger.Txn, version uint16) error {
	buf := make([]byte, 2)
	binary.BigEndian.PutUint16(buf, version)
	return txn.Set(iid.EncodingVersion(), buf)
}
