// Package short implements the 2 byte counter that closes a type or rule IID.
package short

import (
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

const Len = 2

// T is a 2 byte counter.
type T struct {
	Val uint16
}

var _ keys.Element = &T{}

// New makes a counter from any integer, negative values keep their two's
// complement bit pattern.
func New[V constraints.Integer](val ...V) (s *T) {
	if len(val) == 0 {
		return new(T)
	}
	return &T{Val: uint16(val[0])}
}

// FromBytes decodes a counter from exactly Len bytes.
func FromBytes(b []byte) (s *T, err error) {
	if len(b) != Len {
		err = fault.Wrap(fault.ErrMalformedKey, "decode short", b,
			errorf.D("short must be %d bytes, got %d", Len, len(b)))
		return
	}
	return &T{Val: binary.BigEndian.Uint16(b)}, nil
}

// Int returns the counter as a signed value.
func (s *T) Int() int16 { return int16(s.Val) }

// Bytes returns the big endian encoding.
func (s *T) Bytes() (b []byte) {
	b = make([]byte, Len)
	binary.BigEndian.PutUint16(b, s.Val)
	return
}

func (s *T) Write(buf io.Writer) { _, _ = buf.Write(s.Bytes()) }

func (s *T) Read(buf io.Reader) (el keys.Element) {
	b := make([]byte, Len)
	if n, err := io.ReadFull(buf, b); err != nil || n != Len {
		return nil
	}
	s.Val = binary.BigEndian.Uint16(b)
	return s
}

func (s *T) Len() int { return Len }
