package keygen

import (
	"encoding/binary"

	"github.com/typedb/typedb-sub037/ratel/iid"
	"github.com/typedb/typedb-sub037/ratel/keys"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
	"github.com/typedb/typedb-sub037/ratel/keys/serial"
	"github.com/typedb/typedb-sub037/ratel/keys/short"
)

// Reader is the read access that counter recovery needs.
type Reader interface {
	// GetLastKey returns the greatest key with the given prefix, nil if there
	// is none.
	GetLastKey(prefix []byte) ([]byte, error)
	// SeekFirstKey returns the least key with the given prefix that is not
	// less than from, nil if there is none.
	SeekFirstKey(from, prefix []byte) ([]byte, error)
}

// Persisted is the keyspace wide generator of committed counters.
type Persisted struct{ *generator }

var _ Generator = (*Persisted)(nil)

// NewPersisted returns a generator counting up from 0 in every scope. Call
// Recover before minting from a keyspace that already holds data.
func NewPersisted() *Persisted { return &Persisted{newGenerator(persisted)} }

// resume returns a counter that continues after the highest issued value.
func resume(bits int, highest uint64) (c *counter) {
	c = persisted.make(bits)
	if highest >= c.last {
		c.index.Store(c.last)
		c.done.Store(true)
		return
	}
	c.start = highest + 1
	c.last -= c.start
	return
}

// Recover sets every scope to continue after the highest counter found in
// storage. Each type prefix, the rule prefix and every type that has instances
// is a scope of its own.
func (p *Persisted) Recover(r Reader) (err error) {
	for _, root := range prefix.Types {
		var found bool
		var highest uint64
		if found, highest, err = lastShort(r, root); err != nil {
			return
		}
		if found {
			p.types.Store(root, resume(16, highest))
			log.D.F("recovered %s counter, next %d", root, highest+1)
		}
	}
	var found bool
	var highest uint64
	if found, highest, err = lastShort(r, prefix.StructureRule); err != nil {
		return
	}
	if found {
		p.rules = resume(16, highest)
		log.D.F("recovered %s counter, next %d", prefix.StructureRule, highest+1)
	}
	for _, thing := range prefix.Things {
		if err = p.recoverThings(r, thing); err != nil {
			return
		}
	}
	return
}

func lastShort(r Reader, p prefix.P) (found bool, highest uint64, err error) {
	var k []byte
	if k, err = r.GetLastKey(p.Bytes()); chk.E(err) {
		return
	}
	if k == nil {
		return
	}
	if len(k) < prefix.Len+short.Len {
		log.W.F("ignoring short key %0x under %s", k, p)
		return
	}
	return true, uint64(binary.BigEndian.Uint16(k[prefix.Len:])), nil
}

// recoverThings walks the distinct type IIDs present under a thing prefix,
// jumping over each type's instances with a last key probe.
func (p *Persisted) recoverThings(r Reader, thing prefix.P) (err error) {
	tp, _ := thing.TypeOf()
	pre := thing.Bytes()
	from := pre
	for from != nil {
		var k []byte
		if k, err = r.SeekFirstKey(from, pre); chk.E(err) {
			return
		}
		if k == nil {
			return
		}
		if len(k) < iid.ThingLen || k[prefix.Len] != tp.B() {
			log.W.F("ignoring malformed %s key %0x", thing, k)
			from = keys.Successor(k)
			continue
		}
		scope := k[:prefix.Len+iid.TypeLen]
		var last []byte
		if last, err = r.GetLastKey(scope); chk.E(err) {
			return
		}
		if len(last) >= iid.ThingLen {
			highest := binary.BigEndian.Uint64(last[prefix.Len+iid.TypeLen : iid.ThingLen])
			typeIID := iid.T(scope[prefix.Len:])
			p.things.Store(string(typeIID), resume(64, highest))
			log.D.F("recovered %s counter of type %s, next %d", thing, typeIID, highest+1)
		}
		from = keys.Successor(scope)
	}
	return
}

// PeekTypeID returns the counter NextTypeID would mint, false if the scope is
// exhausted.
func (p *Persisted) PeekTypeID(root prefix.P) (s *short.T, ok bool) {
	var v uint64
	if v, ok = p.typeCounter(root).peek(); ok {
		s = short.New(v)
	}
	return
}

// PeekRuleID returns the counter NextRuleID would mint, false if exhausted.
func (p *Persisted) PeekRuleID() (s *short.T, ok bool) {
	var v uint64
	if v, ok = p.rules.peek(); ok {
		s = short.New(v)
	}
	return
}

// PeekThingID returns the counter NextThingID would mint, false if the scope
// is exhausted.
func (p *Persisted) PeekThingID(typeIID iid.T) (s *serial.T, ok bool) {
	var v uint64
	if v, ok = p.thingCounter(typeIID).peek(); ok {
		s = serial.New(v)
	}
	return
}
