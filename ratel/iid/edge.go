package iid

import (
	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
	"github.com/typedb/typedb-sub037/ratel/keys/infix"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
)

// Edge is a decoded edge key. RoleType and Role are only set on optimised role
// player edges.
type Edge struct {
	Start    T
	Infix    infix.I
	End      T
	RoleType T
	Role     T
}

// TypeEdge builds the key of an edge between two types.
func TypeEdge(start T, i infix.I, end T) (t T, err error) {
	if err = checkVertex(start, true); err != nil {
		return
	}
	if err = checkVertex(end, true); err != nil {
		return
	}
	if !i.IsEdge() {
		err = fault.New(fault.ErrUnrecognisedEncoding, "type edge "+i.String(), start)
		return
	}
	return T(keys.Concat(start, i.Bytes(), end)), nil
}

// ThingEdge builds the key of an edge between two instances.
func ThingEdge(start T, i infix.I, end T) (t T, err error) {
	if err = checkVertex(start, false); err != nil {
		return
	}
	if err = checkVertex(end, false); err != nil {
		return
	}
	if !i.IsEdge() {
		err = fault.New(fault.ErrUnrecognisedEncoding, "thing edge "+i.String(), start)
		return
	}
	return T(keys.Concat(start, i.Bytes(), end)), nil
}

// RolePlayerEdge builds the optimised edge from a relation to a player (or
// back) that carries the role type and the role instance, so a traversal
// does not have to go through the role vertex.
func RolePlayerEdge(start T, i infix.I, roleType, end, role T) (t T, err error) {
	if i != infix.RolePlayerOut && i != infix.RolePlayerIn {
		err = fault.New(fault.ErrUnrecognisedEncoding, "role player edge "+i.String(), start)
		return
	}
	for _, v := range []T{start, end, role} {
		if err = checkVertex(v, false); err != nil {
			return
		}
	}
	if err = checkVertex(roleType, true); err != nil {
		return
	}
	return T(keys.Concat(start, i.Bytes(), roleType, end, role)), nil
}

// EdgePrefix is the key prefix of every edge of a vertex with the given
// infix.
func EdgePrefix(start T, i infix.I) T { return T(keys.Concat(start, i.Bytes())) }

// ParseEdge decodes an edge key of any of the three layouts.
func ParseEdge(b []byte) (e *Edge, err error) {
	var n int
	if n, err = VertexLen(b); err != nil {
		return
	}
	e = &Edge{Start: T(b[:n])}
	rest := b[n:]
	if len(rest) < infix.Len {
		return nil, fault.New(fault.ErrMalformedKey, "parse edge", b)
	}
	if e.Infix, err = infix.Of(rest[0]); err != nil {
		return nil, err
	}
	if !e.Infix.IsEdge() {
		return nil, fault.New(fault.ErrMalformedKey, "parse edge "+e.Infix.String(), b)
	}
	rest = rest[infix.Len:]
	if e.Infix == infix.RolePlayerOut || e.Infix == infix.RolePlayerIn {
		if len(rest) != TypeLen+2*ThingLen {
			return nil, fault.New(fault.ErrMalformedKey, "parse role player edge", b)
		}
		e.RoleType = T(rest[:TypeLen])
		e.End = T(rest[TypeLen : TypeLen+ThingLen])
		e.Role = T(rest[TypeLen+ThingLen:])
		return
	}
	if n, err = VertexLen(rest); err != nil {
		return nil, err
	}
	if n != len(rest) {
		return nil, fault.New(fault.ErrMalformedKey, "parse edge", b)
	}
	e.End = T(rest)
	return
}

func checkVertex(v T, isType bool) (err error) {
	var p prefix.P
	if p, err = v.Prefix(); err != nil {
		return
	}
	switch {
	case isType && p.IsType() && len(v) == TypeLen:
	case !isType && p.IsThing() && len(v) == ThingLen:
	default:
		err = fault.New(fault.ErrMalformedKey, "edge vertex "+p.String(), v)
	}
	return
}
