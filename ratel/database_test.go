package ratel

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/typedb/typedb-sub037/config"
	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/iid"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
	"github.com/typedb/typedb-sub037/ratel/keys/serial"
	"github.com/typedb/typedb-sub037/ratel/keys/short"
)

func testConfig(t *testing.T, inMemory bool) (cfg *config.C) {
	cfg = config.Default()
	cfg.DataDir = t.TempDir()
	cfg.InMemory = inMemory
	cfg.DBLogLevel = "off"
	cfg.BlockCacheMB = 8
	cfg.MemTableMB = 8
	return
}

func openDB(t *testing.T, cfg *config.C) (d *Database) {
	var err error
	d, err = Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, d.Close()) })
	return
}

// modes runs a test against a database on disk and one in memory.
func modes(t *testing.T, f func(t *testing.T, d *Database)) {
	for _, mem := range []bool{false, true} {
		name := "disk"
		if mem {
			name = "memory"
		}
		t.Run(name, func(t *testing.T) { f(t, openDB(t, testConfig(t, mem))) })
	}
}

func begin(t *testing.T, ks *Keyspace, typ Type, opts ...Option) (tx *Transaction) {
	s, err := ks.Session()
	require.NoError(t, err)
	tx, err = s.Transaction(typ, opts...)
	require.NoError(t, err)
	return
}

func TestPutThenGet(t *testing.T) {
	modes(t, func(t *testing.T, d *Database) {
		ks, err := d.Create("ks1")
		require.NoError(t, err)
		key := []byte{prefix.VertexEntity.B(), 0x00, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}
		w := begin(t, ks, Write)
		require.NoError(t, w.Storage().Put(key))
		_, err = w.Commit()
		require.NoError(t, err)
		require.False(t, w.IsOpen())

		r := begin(t, ks, Read)
		defer r.Close()
		v, err := r.Storage().Get(key)
		require.NoError(t, err)
		require.NotNil(t, v)
		require.Empty(t, v)
		other := append([]byte(nil), key...)
		other[len(other)-1] = 1
		v, err = r.Storage().Get(other)
		require.NoError(t, err)
		require.Nil(t, v)
	})
}

func TestPersistedTypeIDsSurviveReopen(t *testing.T) {
	cfg := testConfig(t, false)
	d := openDB(t, cfg)
	ks, err := d.Create("ks1")
	require.NoError(t, err)
	w := begin(t, ks, Write)
	for want := range uint16(2) {
		var s *short.T
		s, err = w.Storage().KeyGenerator().NextTypeID(prefix.VertexEntityType)
		require.NoError(t, err)
		require.Equal(t, want, s.Val)
		var typ iid.T
		typ, err = iid.Type(prefix.VertexEntityType, s)
		require.NoError(t, err)
		require.NoError(t, w.Storage().Put(typ))
	}
	_, err = w.Commit()
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d = openDB(t, cfg)
	require.True(t, d.Contains("ks1"))
	ks, err = d.Get("ks1")
	require.NoError(t, err)
	s, err := ks.KeyGenerator().NextTypeID(prefix.VertexEntityType)
	require.NoError(t, err)
	require.Equal(t, uint16(2), s.Val)
	// other scopes are untouched
	s, err = ks.KeyGenerator().NextTypeID(prefix.VertexRelationType)
	require.NoError(t, err)
	require.Zero(t, s.Val)
}

func TestPersistedThingIDsSurviveReopen(t *testing.T) {
	cfg := testConfig(t, false)
	d := openDB(t, cfg)
	ks, err := d.Create("things")
	require.NoError(t, err)
	person, err := iid.Type(prefix.VertexEntityType, short.New(0))
	require.NoError(t, err)
	name, err := iid.Type(prefix.VertexAttributeType, short.New(3))
	require.NoError(t, err)
	w := begin(t, ks, Write)
	for range 5 {
		var s *serial.T
		s, err = ks.KeyGenerator().NextThingID(person)
		require.NoError(t, err)
		var thing iid.T
		thing, err = iid.Thing(prefix.VertexEntity, person, s)
		require.NoError(t, err)
		require.NoError(t, w.Storage().Put(thing))
	}
	s, err := ks.KeyGenerator().NextThingID(name)
	require.NoError(t, err)
	attr, err := iid.Attribute(name, s)
	require.NoError(t, err)
	require.NoError(t, w.Storage().Put(attr))
	_, err = w.Commit()
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d = openDB(t, cfg)
	ks, err = d.Get("things")
	require.NoError(t, err)
	next, ok := ks.KeyGenerator().PeekThingID(person)
	require.True(t, ok)
	require.Equal(t, uint64(5), next.Val)
	next, ok = ks.KeyGenerator().PeekThingID(name)
	require.True(t, ok)
	require.Equal(t, uint64(1), next.Val)
}

func TestCreate(t *testing.T) {
	modes(t, func(t *testing.T, d *Database) {
		ks, err := d.Create("ks1")
		require.NoError(t, err)
		require.Equal(t, Version, ks.Version())
		require.Equal(t, "ks1", ks.Name())
		_, err = d.Create("ks1")
		require.ErrorIs(t, err, fault.ErrKeyspaceExists)
		got, err := d.Get("ks1")
		require.NoError(t, err)
		require.Same(t, ks, got)
		_, err = d.Get("missing")
		require.ErrorIs(t, err, fault.ErrKeyspaceNotFound)
		_, err = d.Create("ks2")
		require.NoError(t, err)
		all := d.All()
		require.Len(t, all, 2)
		require.Equal(t, "ks1", all[0].Name())
		require.Equal(t, "ks2", all[1].Name())
	})
}

func TestInitialiseRefusesUsedKeyspace(t *testing.T) {
	d := openDB(t, testConfig(t, true))
	ks, err := d.Create("ks1")
	require.NoError(t, err)
	err = initialise(ks.orc)
	require.ErrorIs(t, err, fault.ErrAlreadyInitialised)
	require.True(t, fault.IsLifecycle(err))
}

func TestOpenRefusesForeignDirectory(t *testing.T) {
	cfg := testConfig(t, false)
	d := openDB(t, cfg)
	_, err := d.Create("ks1")
	require.NoError(t, err)
	// a badger directory without the encoding version is not a keyspace
	w := begin(t, mustGet(t, d, "ks1"), Write)
	require.NoError(t, w.Storage().Delete(iid.EncodingVersion()))
	_, err = w.Commit()
	require.NoError(t, err)
	require.NoError(t, d.Close())
	_, err = Open(cfg)
	require.ErrorIs(t, err, fault.ErrIncompatibleEncoding)
}

func mustGet(t *testing.T, d *Database, name string) (ks *Keyspace) {
	var err error
	ks, err = d.Get(name)
	require.NoError(t, err)
	return
}

func TestValidateName(t *testing.T) {
	for _, name := range []string{"a", "ks_1", "KS-2", strings.Repeat("x", MaxNameLen)} {
		require.NoError(t, ValidateName(name), name)
	}
	for _, name := range []string{"", "a b", "../up", "a/b", "é", strings.Repeat("x", MaxNameLen+1)} {
		require.ErrorIs(t, ValidateName(name), fault.ErrInvalidKeyspaceName, name)
	}
	d := openDB(t, testConfig(t, true))
	_, err := d.Create("no/slashes")
	require.ErrorIs(t, err, fault.ErrInvalidKeyspaceName)
}

func TestDelete(t *testing.T) {
	modes(t, func(t *testing.T, d *Database) {
		ks, err := d.Create("doomed")
		require.NoError(t, err)
		dir := ks.Path()
		tx := begin(t, ks, Read)
		require.NoError(t, d.Delete("doomed"))
		require.False(t, ks.IsOpen())
		require.False(t, tx.IsOpen())
		require.False(t, d.Contains("doomed"))
		_, err = d.Get("doomed")
		require.ErrorIs(t, err, fault.ErrKeyspaceNotFound)
		if dir != "" {
			_, err = os.Stat(dir)
			require.True(t, errors.Is(err, os.ErrNotExist))
		}
		// the name is free again
		_, err = d.Create("doomed")
		require.NoError(t, err)
	})
}

func TestGetReopensClosedKeyspace(t *testing.T) {
	cfg := testConfig(t, false)
	d := openDB(t, cfg)
	ks, err := d.Create("ks1")
	require.NoError(t, err)
	require.NoError(t, ks.Close())
	require.False(t, d.Contains("ks1"))
	again, err := d.Get("ks1")
	require.NoError(t, err)
	require.NotSame(t, ks, again)
	require.True(t, again.IsOpen())
	require.Equal(t, filepath.Join(cfg.DataDir, "ks1"), again.Path())
}

func TestCloseCascades(t *testing.T) {
	modes(t, func(t *testing.T, d *Database) {
		ks, err := d.Create("ks1")
		require.NoError(t, err)
		s, err := ks.Session()
		require.NoError(t, err)
		tx, err := s.Transaction(Write)
		require.NoError(t, err)
		it := tx.Storage().Iterate(prefix.System.Bytes())
		require.True(t, it.HasNext())
		require.Equal(t, 1, s.Transactions())
		require.Equal(t, 1, ks.Sessions())

		require.NoError(t, d.Close())
		require.NoError(t, d.Close())
		require.False(t, d.IsOpen())
		require.False(t, ks.IsOpen())
		require.False(t, s.IsOpen())
		require.False(t, tx.IsOpen())
		require.False(t, it.HasNext())
		require.NoError(t, ks.Close())
		require.NoError(t, s.Close())
		require.NoError(t, tx.Close())

		_, err = d.Create("ks2")
		require.ErrorIs(t, err, fault.ErrDatabaseClosed)
		_, err = d.Get("ks1")
		require.ErrorIs(t, err, fault.ErrDatabaseClosed)
		_, err = ks.Session()
		require.ErrorIs(t, err, fault.ErrKeyspaceClosed)
		_, err = s.Transaction(Read)
		require.ErrorIs(t, err, fault.ErrSessionClosed)
	})
}

func TestValueLogGC(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.GCInterval = 5 * time.Millisecond
	d := openDB(t, cfg)
	ks, err := d.Create("ks1")
	require.NoError(t, err)
	big := make([]byte, 4096)
	for round := range 3 {
		w := begin(t, ks, Write)
		for i := range 64 {
			big[0] = byte(round)
			require.NoError(t, w.Storage().Put(typeKey(t, i), big))
		}
		_, err = w.Commit()
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, ks.GCRun(0.5))
	require.NoError(t, ks.Close())
	require.ErrorIs(t, ks.GCRun(0.5), fault.ErrKeyspaceClosed)

	mem := openDB(t, testConfig(t, true))
	ks, err = mem.Create("ks1")
	require.NoError(t, err)
	require.NoError(t, ks.GCRun(0.5))
}
