package ratel

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/typedb/typedb-sub037/fault"
)

// collect starts a ticker that rewrites the value log of an on disk keyspace
// and periodically syncs it. It runs until release cancels it.
func (ks *Keyspace) collect(interval time.Duration, ratio float64) {
	if ks.dir == "" || interval <= 0 {
		return
	}
	var c context.Context
	c, ks.stopGC = context.WithCancel(context.Background())
	ks.gcDone.Add(1)
	go func() {
		defer ks.gcDone.Done()
		log.D.F("starting value log GC of %s, every %v, discard ratio %0.2f",
			ks.name, interval, ratio)
		gcTicker := time.NewTicker(interval)
		syncTicker := time.NewTicker(interval * 10)
		defer gcTicker.Stop()
		defer syncTicker.Stop()
		for {
			select {
			case <-c.Done():
				log.D.F("stopping value log GC of %s", ks.name)
				return
			case <-gcTicker.C:
				chk.E(ks.GCRun(ratio))
			case <-syncTicker.C:
				chk.E(ks.DB.Sync())
			}
		}
	}()
}

// GCRun rewrites value log files while badger finds one in which at least
// ratio of the space is stale. An in memory keyspace has nothing to collect.
func (ks *Keyspace) GCRun(ratio float64) (err error) {
	if ks.dir == "" {
		return
	}
	if ks.closed.Load() {
		return fault.New(fault.ErrKeyspaceClosed, "value log gc", []byte(ks.name))
	}
	var rewrites int
	for {
		if err = ks.DB.RunValueLogGC(ratio); err != nil {
			break
		}
		rewrites++
	}
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
		err = nil
	}
	if err != nil {
		err = fault.Wrap(fault.ErrStorage, "value log gc", []byte(ks.name), err)
		return
	}
	if rewrites > 0 {
		log.I.F("value log GC of %s rewrote %d files", ks.name, rewrites)
	} else {
		log.T.F("value log GC of %s found nothing to rewrite", ks.name)
	}
	return
}
