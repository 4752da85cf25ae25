// Package prefix implements the single byte prefix that opens every key in a
// keyspace and names the category of entity the key belongs to.
//
// The set of prefixes is closed. Values are spread with gaps so that new
// categories can be added next to their relatives without renumbering; a
// value, once assigned, never changes.
package prefix

import (
	"io"

	"github.com/pkg/errors"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

const Len = 1

// P is a key prefix.
type P byte

const (
	// IndexType maps a type label to its type IID.
	//
	//   [ 0 ][ label ] : [ type IID ]
	IndexType P = 0
	// IndexRule maps a rule label to its rule IID.
	//
	//   [ 1 ][ label ] : [ rule IID ]
	IndexRule P = 1
	// IndexAttribute maps an attribute type label and value to the IID of the
	// attribute holding that value.
	//
	//   [ 2 ][ label length ][ label ][ value type ][ value ] : [ attribute IID ]
	IndexAttribute P = 2

	// StatisticsThings holds the instance count of a type.
	//
	//   [ 50 ][ type IID ] : [ 8 byte count ]
	StatisticsThings P = 50
	// StatisticsCountJob marks a vertex or edge whose statistics are yet to be
	// counted.
	//
	//   [ 51 ][ infix ][ IID ]
	StatisticsCountJob P = 51
	// StatisticsCounted marks a vertex that has been counted.
	//
	//   [ 52 ][ IID ]
	StatisticsCounted P = 52
	// StatisticsSnapshot holds the snapshot the statistics were counted at.
	//
	//   [ 53 ] : [ 8 byte snapshot ]
	StatisticsSnapshot P = 53

	// VertexThingType is the root of the type hierarchy.
	//
	//   [ 100 ][ 2 byte counter ]
	VertexThingType P = 100
	// VertexEntityType is an entity type vertex.
	//
	//   [ 110 ][ 2 byte counter ]
	VertexEntityType P = 110
	// VertexAttributeType is an attribute type vertex.
	//
	//   [ 120 ][ 2 byte counter ]
	VertexAttributeType P = 120
	// VertexRelationType is a relation type vertex.
	//
	//   [ 130 ][ 2 byte counter ]
	VertexRelationType P = 130
	// VertexRoleType is a role type vertex.
	//
	//   [ 140 ][ 2 byte counter ]
	VertexRoleType P = 140

	// VertexEntity is an entity instance.
	//
	//   [ 170 ][ type IID ][ 8 byte counter ]
	VertexEntity P = 170
	// VertexAttribute is an attribute instance.
	//
	//   [ 180 ][ type IID ][ 8 byte counter ]
	VertexAttribute P = 180
	// VertexRelation is a relation instance.
	//
	//   [ 190 ][ type IID ][ 8 byte counter ]
	VertexRelation P = 190
	// VertexRole is a role instance.
	//
	//   [ 200 ][ type IID ][ 8 byte counter ]
	VertexRole P = 200

	// StructureRule is a rule structure.
	//
	//   [ 240 ][ 2 byte counter ]
	StructureRule P = 240

	// System holds keyspace bookkeeping, such as the encoding version.
	//
	//   [ 255 ][ 1 byte system key ]
	System P = 255
)

var names = map[P]string{
	IndexType:           "INDEX_TYPE",
	IndexRule:           "INDEX_RULE",
	IndexAttribute:      "INDEX_ATTRIBUTE",
	StatisticsThings:    "STATISTICS_THINGS",
	StatisticsCountJob:  "STATISTICS_COUNT_JOB",
	StatisticsCounted:   "STATISTICS_COUNTED",
	StatisticsSnapshot:  "STATISTICS_SNAPSHOT",
	VertexThingType:     "VERTEX_THING_TYPE",
	VertexEntityType:    "VERTEX_ENTITY_TYPE",
	VertexAttributeType: "VERTEX_ATTRIBUTE_TYPE",
	VertexRelationType:  "VERTEX_RELATION_TYPE",
	VertexRoleType:      "VERTEX_ROLE_TYPE",
	VertexEntity:        "VERTEX_ENTITY",
	VertexAttribute:     "VERTEX_ATTRIBUTE",
	VertexRelation:      "VERTEX_RELATION",
	VertexRole:          "VERTEX_ROLE",
	StructureRule:       "STRUCTURE_RULE",
	System:              "SYSTEM",
}

// Types is every prefix of a type vertex, in byte order.
var Types = []P{
	VertexThingType,
	VertexEntityType,
	VertexAttributeType,
	VertexRelationType,
	VertexRoleType,
}

// Things is every prefix of an instance vertex, in byte order.
var Things = []P{
	VertexEntity,
	VertexAttribute,
	VertexRelation,
	VertexRole,
}

// ByName looks a prefix up by its name, such as VERTEX_ENTITY_TYPE.
func ByName(name string) (p P, err error) {
	for k, v := range names {
		if v == name {
			return k, nil
		}
	}
	err = errors.WithMessagef(fault.ErrUnrecognisedEncoding, "prefix name %q", name)
	return
}

// Of decodes a prefix byte, failing on any value outside the enumeration.
func Of(b byte) (p P, err error) {
	if _, ok := names[P(b)]; !ok {
		err = errors.WithMessagef(fault.ErrUnrecognisedEncoding, "prefix byte %d", b)
		return
	}
	return P(b), nil
}

// Key writes a key with the P prefix byte and an arbitrary list of
// keys.Element.
func (p P) Key(element ...keys.Element) (b []byte) {
	b = keys.Write(append([]keys.Element{New(p)}, element...)...)
	return
}

// Bytes returns the prefix as a one byte key, the prefix of every key in its
// category.
func (p P) Bytes() []byte { return []byte{byte(p)} }

// B returns the prefix as a byte.
func (p P) B() byte { return byte(p) }

func (p P) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return "UNKNOWN"
}

// IsType reports whether p is the prefix of a type vertex.
func (p P) IsType() bool { return p >= VertexThingType && p <= VertexRoleType && p%10 == 0 }

// IsThing reports whether p is the prefix of an instance vertex.
func (p P) IsThing() bool { return p >= VertexEntity && p <= VertexRole && p%10 == 0 }

// HasGeneratedIID reports whether keys under p open with a vertex IID whose
// counter was minted by the identifier generator.
func (p P) HasGeneratedIID() bool { return p.IsType() || p.IsThing() || p == StructureRule }

// ThingOf returns the prefix of the instances of types under p. The generic
// thing type has no instances.
func (p P) ThingOf() (t P, ok bool) {
	switch p {
	case VertexEntityType:
		return VertexEntity, true
	case VertexAttributeType:
		return VertexAttribute, true
	case VertexRelationType:
		return VertexRelation, true
	case VertexRoleType:
		return VertexRole, true
	}
	return
}

// TypeOf returns the prefix of the types of instances under p.
func (p P) TypeOf() (t P, ok bool) {
	switch p {
	case VertexEntity:
		return VertexEntityType, true
	case VertexAttribute:
		return VertexAttributeType, true
	case VertexRelation:
		return VertexRelationType, true
	case VertexRole:
		return VertexRoleType, true
	}
	return
}

// T is the prefix as a keys.Element.
type T struct {
	Val P
}

var _ keys.Element = &T{}

func New(p ...P) (t *T) {
	if len(p) == 0 {
		return &T{}
	}
	return &T{Val: p[0]}
}

func (t *T) Write(buf io.Writer) { _, _ = buf.Write([]byte{byte(t.Val)}) }

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
