// Package keygen mints the counters that close type, rule and instance IIDs.
//
// There are two lifecycles. A Buffered generator lives inside one transaction
// and counts down from -1, so provisional IIDs of vertices that are not yet
// committed can never equal a persisted one. A Persisted generator belongs to
// a keyspace, counts up from 0, and on open recovers each scope from the
// highest counter already in storage.
//
// Every scope is an independent atomic counter, safe for concurrent callers. A
// counter that reaches the limit of its width is exhausted for good.
package keygen

import (
	"math"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/iid"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
	"github.com/typedb/typedb-sub037/ratel/keys/serial"
	"github.com/typedb/typedb-sub037/ratel/keys/short"
)

// Generator mints counters for new vertices.
type Generator interface {
	// NextTypeID mints the counter of a new type under a root type prefix.
	NextTypeID(root prefix.P) (*short.T, error)
	// NextRuleID mints the counter of a new rule.
	NextRuleID() (*short.T, error)
	// NextThingID mints the counter of a new instance of a type.
	NextThingID(typeIID iid.T) (*serial.T, error)
}

// counter issues the values start, start+step, ... as uint64 bit patterns
// truncated to the width of the scope. last is the index of the final value
// that may be issued; after it the counter is exhausted.
type counter struct {
	start uint64
	step  uint64
	last  uint64
	index atomic.Uint64
	done  atomic.Bool
}

func (c *counter) next() (v uint64, ok bool) {
	for {
		if c.done.Load() {
			return
		}
		i := c.index.Load()
		if i == c.last {
			if c.done.CompareAndSwap(false, true) {
				return c.start + i*c.step, true
			}
			return
		}
		if c.index.CompareAndSwap(i, i+1) {
			return c.start + i*c.step, true
		}
	}
}

// peek is the value next would return, false if exhausted.
func (c *counter) peek() (v uint64, ok bool) {
	if c.done.Load() {
		return
	}
	return c.start + c.index.Load()*c.step, true
}

// scheme fixes the start, direction and limits of a lifecycle.
type scheme struct {
	name string
	// make returns a fresh counter of the given width in bits.
	make func(bits int) *counter
}

var buffered = scheme{
	name: "buffered",
	make: func(bits int) *counter {
		// -1 down to the signed minimum of the width
		c := &counter{start: math.MaxUint64, step: math.MaxUint64}
		c.last = uint64(1)<<(bits-1) - 1
		return c
	},
}

var persisted = scheme{
	name: "persisted",
	make: func(bits int) *counter {
		// 0 up to the unsigned maximum of the width
		c := &counter{start: 0, step: 1}
		if bits == 64 {
			c.last = math.MaxUint64
		} else {
			c.last = uint64(1)<<bits - 1
		}
		return c
	},
}

// generator holds the counters of one lifecycle.
type generator struct {
	scheme
	types  *xsync.MapOf[prefix.P, *counter]
	rules  *counter
	things *xsync.MapOf[string, *counter]
}

func newGenerator(s scheme) *generator {
	return &generator{
		scheme: s,
		types:  xsync.NewMapOf[prefix.P, *counter](),
		rules:  s.make(16),
		things: xsync.NewMapOf[string, *counter](),
	}
}

func (g *generator) typeCounter(root prefix.P) *counter {
	c, _ := g.types.LoadOrCompute(root, func() *counter { return g.make(16) })
	return c
}

func (g *generator) thingCounter(typeIID iid.T) *counter {
	c, _ := g.things.LoadOrCompute(string(typeIID), func() *counter { return g.make(64) })
	return c
}

func (g *generator) NextTypeID(root prefix.P) (s *short.T, err error) {
	if !root.IsType() {
		err = fault.New(fault.ErrUnrecognisedEncoding, g.name+" type id "+root.String(), nil)
		return
	}
	v, ok := g.typeCounter(root).next()
	if !ok {
		err = fault.New(fault.ErrCounterExhausted, g.name+" type id "+root.String(), root.Bytes())
		log.E.F("%s", err)
		return
	}
	return short.New(v), nil
}

func (g *generator) NextRuleID() (s *short.T, err error) {
	v, ok := g.rules.next()
	if !ok {
		err = fault.New(fault.ErrCounterExhausted, g.name+" rule id", prefix.StructureRule.Bytes())
		log.E.F("%s", err)
		return
	}
	return short.New(v), nil
}

func (g *generator) NextThingID(typeIID iid.T) (s *serial.T, err error) {
	if _, _, err = iid.ParseType(typeIID); err != nil {
		return
	}
	v, ok := g.thingCounter(typeIID).next()
	if !ok {
		err = fault.New(fault.ErrCounterExhausted, g.name+" thing id", typeIID)
		log.E.F("%s", err)
		return
	}
	return serial.New(v), nil
}

// Buffered is the transaction local generator of provisional counters.
type Buffered struct{ *generator }

var _ Generator = (*Buffered)(nil)

// NewBuffered returns a generator counting down from -1.
func NewBuffered() *Buffered { return &Buffered{newGenerator(buffered)} }
