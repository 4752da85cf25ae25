// Package infix implements the signed single byte that names the relationship
// between the identifiers on either side of it inside a compound key.
//
// Edges come in pairs: the outward infix is positive and the inward one is its
// negation, so every edge is stored once from each end. Property infixes name a
// slot on a vertex and have no inward form, and ISA is stored inward only.
package infix

import (
	"io"

	"github.com/pkg/errors"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

const Len = 1

// I is a key infix.
type I int8

const (
	PropertyLabel     I = 0
	PropertyScope     I = 1
	PropertyAbstract  I = 2
	PropertyRegex     I = 3
	PropertyValueType I = 4
	PropertyValueRef  I = 5
	PropertyValue     I = 6
	PropertyWhen      I = 7
	PropertyThen      I = 8

	// type edges
	SubOut     I = 20
	SubIn      I = -20
	OwnsOut    I = 21
	OwnsIn     I = -21
	OwnsKeyOut I = 22
	OwnsKeyIn  I = -22
	PlaysOut   I = 23
	PlaysIn    I = -23
	RelatesOut I = 24
	RelatesIn  I = -24

	// thing edges
	IsaIn         I = -40
	HasOut        I = 41
	HasIn         I = -41
	PlayingOut    I = 42
	PlayingIn     I = -42
	RelatingOut   I = 43
	RelatingIn    I = -43
	RolePlayerOut I = 44
	RolePlayerIn  I = -44
)

var names = map[I]string{
	PropertyLabel:     "PROPERTY_LABEL",
	PropertyScope:     "PROPERTY_SCOPE",
	PropertyAbstract:  "PROPERTY_ABSTRACT",
	PropertyRegex:     "PROPERTY_REGEX",
	PropertyValueType: "PROPERTY_VALUE_TYPE",
	PropertyValueRef:  "PROPERTY_VALUE_REF",
	PropertyValue:     "PROPERTY_VALUE",
	PropertyWhen:      "PROPERTY_WHEN",
	PropertyThen:      "PROPERTY_THEN",
	SubOut:            "EDGE_SUB_OUT",
	SubIn:             "EDGE_SUB_IN",
	OwnsOut:           "EDGE_OWNS_OUT",
	OwnsIn:            "EDGE_OWNS_IN",
	OwnsKeyOut:        "EDGE_OWNS_KEY_OUT",
	OwnsKeyIn:         "EDGE_OWNS_KEY_IN",
	PlaysOut:          "EDGE_PLAYS_OUT",
	PlaysIn:           "EDGE_PLAYS_IN",
	RelatesOut:        "EDGE_RELATES_OUT",
	RelatesIn:         "EDGE_RELATES_IN",
	IsaIn:             "EDGE_ISA_IN",
	HasOut:            "EDGE_HAS_OUT",
	HasIn:             "EDGE_HAS_IN",
	PlayingOut:        "EDGE_PLAYING_OUT",
	PlayingIn:         "EDGE_PLAYING_IN",
	RelatingOut:       "EDGE_RELATING_OUT",
	RelatingIn:        "EDGE_RELATING_IN",
	RolePlayerOut:     "EDGE_ROLEPLAYER_OUT",
	RolePlayerIn:      "EDGE_ROLEPLAYER_IN",
}

// Of decodes an infix byte, failing on any value outside the enumeration.
func Of(b byte) (i I, err error) {
	if _, ok := names[I(int8(b))]; !ok {
		err = errors.WithMessagef(fault.ErrUnrecognisedEncoding, "infix byte %d", b)
		return
	}
	return I(int8(b)), nil
}

// B returns the two's complement byte of the infix.
func (i I) B() byte { return byte(i) }

// Bytes returns the infix as a one byte slice.
func (i I) Bytes() []byte { return []byte{byte(i)} }

func (i I) String() string {
	if n, ok := names[i]; ok {
		return n
	}
	return "UNKNOWN"
}

// IsProperty reports whether i names a vertex property slot.
func (i I) IsProperty() bool { return i >= PropertyLabel && i <= PropertyThen }

// IsEdge reports whether i names an edge.
func (i I) IsEdge() bool { return !i.IsProperty() && i.String() != "UNKNOWN" }

// IsOut reports whether the edge is stored from its start vertex.
func (i I) IsOut() bool { return i > 0 && !i.IsProperty() }

// IsIn reports whether the edge is stored from its end vertex.
func (i I) IsIn() bool { return i < 0 }

// Out returns the outward infix of the edge, false if the edge has none.
func (i I) Out() (o I, ok bool) {
	switch {
	case i.IsProperty():
		return
	case i > 0:
		return i, true
	case i == IsaIn:
		return
	}
	o = -i
	_, ok = names[o]
	return
}

// In returns the inward infix of the edge, false if the edge has none.
func (i I) In() (o I, ok bool) {
	switch {
	case i.IsProperty():
		return
	case i < 0:
		return i, true
	}
	o = -i
	_, ok = names[o]
	return
}

// T is the infix as a keys.Element.
type T struct {
	Val I
}

var _ keys.Element = &T{}

func New(i ...I) (t *T) {
	if len(i) == 0 {
		return &T{}
	}
	return &T{Val: i[0]}
}

func (t *T) Write(buf io.Writer) { _, _ = buf.Write([]byte{t.Val.B()}) }

func (t *T) Read(buf io.Reader) (el keys.Element) {
	b := make([]byte, Len)
	if n, err := buf.Read(b); err != nil || n != Len {
		return nil
	}
	var err error
	if t.Val, err = Of(b[0]); chk.T(err) {
		return nil
	}
	return t
}

func (t *T) Len() int { return Len }
