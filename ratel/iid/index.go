package iid

import (
	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
	"github.com/typedb/typedb-sub037/ratel/keys/infix"
	"github.com/typedb/typedb-sub037/ratel/keys/prefix"
	"github.com/typedb/typedb-sub037/ratel/keys/valuetype"
)

// AttributeIndexPrefix is the key prefix of every value of an attribute type.
// The label is length prefixed, so one label never prefixes another's keys.
func AttributeIndexPrefix(label string) (b []byte, err error) {
	var l *valuetype.Sized
	if l, err = attributeLabel(label); err != nil {
		return
	}
	return prefix.IndexAttribute.Key(l), nil
}

func attributeLabel(label string) (l *valuetype.Sized, err error) {
	if len(label) == 0 {
		err = fault.New(fault.ErrMalformedKey, "attribute index label", nil)
		return
	}
	return valuetype.NewSized(label)
}

// AttributeIndex is the key under which an attribute type label and value map
// to the IID of the attribute that holds the value.
//
//	[ IndexAttribute ][ 2 byte label length ][ label ][ value type ][ value ]
func AttributeIndex(label string, v valuetype.V, value any) (b []byte, err error) {
	var l *valuetype.Sized
	if l, err = attributeLabel(label); err != nil {
		return
	}
	if v == valuetype.Object {
		err = fault.New(fault.ErrUnsupportedValue, "attribute index "+v.String(),
			prefix.IndexAttribute.Key(l))
		return
	}
	var enc []byte
	if enc, err = valuetype.Encode(v, value); err != nil {
		return
	}
	return prefix.IndexAttribute.Key(l, valuetype.New(v), &valuetype.Terminal{Val: enc}), nil
}

// ParseAttributeIndex decodes an attribute index key.
func ParseAttributeIndex(b []byte) (label string, v valuetype.V, value any, err error) {
	p, l, vt, enc := prefix.New(), &valuetype.Sized{}, valuetype.New(), &valuetype.Terminal{}
	if err = keys.Read(b, p, l, vt, enc); err != nil {
		return
	}
	if p.Val != prefix.IndexAttribute || len(l.Val) == 0 {
		err = fault.New(fault.ErrMalformedKey, "parse attribute index", b)
		return
	}
	label, v = string(l.Val), vt.Val
	value, err = valuetype.Decode(v, enc.Val)
	return
}

// StatisticsCount is the key of the instance count of a type.
func StatisticsCount(typeIID T) []byte {
	return keys.Concat(prefix.StatisticsThings.Bytes(), typeIID)
}

// StatisticsCountJob is the key marking a vertex or edge for counting.
func StatisticsCountJob(i infix.I, target T) []byte {
	return keys.Concat(prefix.StatisticsCountJob.Bytes(), i.Bytes(), target)
}

// StatisticsCounted is the key marking a vertex as counted.
func StatisticsCounted(target T) []byte {
	return keys.Concat(prefix.StatisticsCounted.Bytes(), target)
}

// StatisticsSnapshot is the key of the snapshot the statistics are at.
func StatisticsSnapshot() []byte { return prefix.StatisticsSnapshot.Bytes() }

// system keys
const (
	SystemEncodingVersion byte = 0
)

// EncodingVersion is the key holding the encoding version of a keyspace.
func EncodingVersion() []byte {
	return []byte{prefix.System.B(), SystemEncodingVersion}
}
