// Package iid lays out the identifiers and compound keys of the graph.
//
//	type IID       [ type prefix ][ 2 byte counter ]
//	thing IID      [ thing prefix ][ type IID ][ 8 byte counter ]
//	rule IID       [ STRUCTURE_RULE ][ 2 byte counter ]
//	type edge      [ type IID ][ infix ][ type IID ]
//	thing edge     [ thing IID ][ infix ][ thing IID ]
//	role player    [ thing IID ][ infix ][ role type IID ][ thing IID ][ role IID ]
//	property       [ vertex IID ][ property infix ]
//
// Every component is fixed width, except labels and values which are either
// length prefixed or last, so a key never splits two ways.
package iid

import (
	"bytes"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/hex"
	"github.com/typedb/typedb-sub037/ratel/keys"
	"github.com/typedb/typedb-sub037/ratel/keys/infix"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
	"github.com/typedb/typedb-sub037/ratel/keys/serial"
	"github.com/typedb/typedb-sub037/ratel/keys/short"
)

const (
	TypeLen  = prefix.Len + short.Len
	ThingLen = prefix.Len + TypeLen + serial.Len
	RuleLen  = prefix.Len + short.Len
)

// T is an identifier. Identity is byte equality.
type T []byte

func (t T) Equal(o T) bool     { return bytes.Equal(t, o) }
func (t T) Compare(o T) int    { return bytes.Compare(t, o) }
func (t T) String() string     { return hex.Enc(t) }
func (t T) Bytes() []byte      { return []byte(t) }
func (t T) HasPrefix(p T) bool { return bytes.HasPrefix(t, p) }

// Prefix decodes the leading prefix byte.
func (t T) Prefix() (p prefix.P, err error) {
	if len(t) == 0 {
		err = fault.New(fault.ErrMalformedKey, "iid prefix", nil)
		return
	}
	return prefix.Of(t[0])
}

// Type builds a type IID.
func Type(p prefix.P, counter *short.T) (t T, err error) {
	if !p.IsType() {
		err = fault.New(fault.ErrUnrecognisedEncoding, "type iid "+p.String(), nil)
		return
	}
	return p.Key(counter), nil
}

// Rule builds a rule IID.
func Rule(counter *short.T) T { return prefix.StructureRule.Key(counter) }

// ParseType splits a type IID into its prefix and counter.
func ParseType(b []byte) (p prefix.P, counter *short.T, err error) {
	pr, sh := prefix.New(), short.New[int]()
	if err = keys.Read(b, pr, sh); err != nil {
		return
	}
	if !pr.Val.IsType() {
		err = fault.New(fault.ErrMalformedKey, "parse type iid", b)
		return
	}
	return pr.Val, sh, nil
}

// Thing builds an instance IID of the given type.
func Thing(p prefix.P, typeIID T, counter *serial.T) (t T, err error) {
	var tp prefix.P
	var ok bool
	if tp, ok = p.TypeOf(); !ok {
		err = fault.New(fault.ErrUnrecognisedEncoding, "thing iid "+p.String(), nil)
		return
	}
	if len(typeIID) != TypeLen || typeIID[0] != tp.B() {
		err = fault.New(fault.ErrMalformedKey, "thing iid of "+tp.String(), typeIID)
		return
	}
	t = make(T, 0, ThingLen)
	t = append(t, p.B())
	t = append(t, typeIID...)
	t = append(t, counter.Bytes()...)
	return
}

// Attribute builds an attribute instance IID. Attributes take generated
// counters like every other instance, the value lives in the value index.
func Attribute(typeIID T, counter *serial.T) (T, error) {
	return Thing(prefix.VertexAttribute, typeIID, counter)
}

// ParseThing splits an instance IID into its prefix, type IID and counter.
func ParseThing(b []byte) (p prefix.P, typeIID T, counter *serial.T, err error) {
	if len(b) != ThingLen {
		err = fault.New(fault.ErrMalformedKey, "parse thing iid", b)
		return
	}
	if p, err = prefix.Of(b[0]); err != nil {
		return
	}
	tp, ok := p.TypeOf()
	if !ok || b[1] != tp.B() {
		err = fault.New(fault.ErrMalformedKey, "parse thing iid", b)
		return
	}
	typeIID = T(b[1 : 1+TypeLen])
	if counter, err = serial.FromBytes(b[1+TypeLen:]); err != nil {
		return
	}
	return
}

// VertexLen returns the width of the vertex IID that opens b.
func VertexLen(b []byte) (n int, err error) {
	var p prefix.P
	if p, err = T(b).Prefix(); err != nil {
		return
	}
	switch {
	case !p.HasGeneratedIID():
		err = fault.New(fault.ErrMalformedKey, "vertex "+p.String(), b)
		return
	case p.IsThing():
		n = ThingLen
	default:
		n = TypeLen
	}
	if len(b) < n {
		err = fault.New(fault.ErrMalformedKey, "vertex "+p.String(), b)
	}
	return
}

// Property builds the key of a property slot of a vertex.
func Property(vertex T, i infix.I) (t T, err error) {
	if !i.IsProperty() {
		err = fault.New(fault.ErrUnrecognisedEncoding, "property "+i.String(), vertex)
		return
	}
	return T(keys.Concat(vertex, i.Bytes())), nil
}
