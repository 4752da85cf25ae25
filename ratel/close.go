package ratel

import (
	"github.com/typedb/typedb-sub037/fault"
)

// Close closes every session of the keyspace and then badger, and drops the
// keyspace from its database. Calls after the first do nothing.
func (ks *Keyspace) Close() (err error) {
	if err = ks.release(); err != nil {
		return
	}
	d := ks.database
	d.mu.Lock()
	d.forget(ks)
	d.mu.Unlock()
	return
}

// release closes the keyspace once, leaving the database registry alone.
func (ks *Keyspace) release() (err error) {
	if !ks.closed.CompareAndSwap(false, true) {
		return
	}
	ks.sessions.Range(func(_ uint64, s *Session) bool {
		chk.E(s.Close())
		return true
	})
	if ks.stopGC != nil {
		ks.stopGC()
		ks.gcDone.Wait()
	}
	if ks.DB == nil {
		return
	}
	log.I.F("closing keyspace %s", ks.name)
	if ks.dir != "" {
		chk.E(ks.DB.Sync())
		if ks.Flatten {
			if err = ks.DB.Flatten(4); chk.E(err) {
				err = fault.Wrap(fault.ErrStorage, "flatten", []byte(ks.name), err)
				chk.E(ks.DB.Close())
				return
			}
			log.D.F("keyspace %s flattened", ks.name)
		}
	}
	if err = ks.DB.Close(); chk.E(err) {
		err = fault.Wrap(fault.ErrStorage, "close keyspace", []byte(ks.name), err)
		return
	}
	log.I.F("keyspace %s closed", ks.name)
	return
}
