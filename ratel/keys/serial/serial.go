// Package serial implements the 8 byte instance counter that closes a thing
// IID. The counter is big endian so byte order is numeric order; provisional
// (buffered) counters are negative and are stored in two's complement, which
// places them after every persisted counter.
package serial

import (
	"encoding/binary"
	"io"

	"golang.org/x/exp/constraints"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

const Len = 8

// T is an 8 byte counter.
type T struct {
	Val uint64
}

var _ keys.Element = &T{}

// New makes a counter from any integer, negative values keep their two's
// complement bit pattern.
func New[V constraints.Integer](val ...V) (s *T) {
	if len(val) == 0 {
		return new(T)
	}
	return &T{Val: uint64(val[0])}
}

// FromBytes decodes a counter from exactly Len bytes.
func FromBytes(b []byte) (s *T, err error) {
	if len(b) != Len {
		err = fault.Wrap(fault.ErrMalformedKey, "decode serial", b,
			errorf.D("serial must be %d bytes, got %d", Len, len(b)))
		return
	}
	return &T{Val: binary.BigEndian.Uint64(b)}, nil
}

// Int returns the counter as a signed value.
func (s *T) Int() int64 { return int64(s.Val) }

// Bytes returns the big endian encoding.
func (s *T) Bytes() (b []byte) {
	b = make([]byte, Len)
	binary.BigEndian.PutUint64(b, s.Val)
	return
}

func (s *T) Write(buf io.Writer) { _, _ = buf.Write(s.Bytes()) }

func (s *T) Read(buf io.Reader) (el keys.Element) {
	b := make([]byte, Len)
	if n, err := io.ReadFull(buf, b); err != nil || n != Len {
		return nil
	}
	s.Val = binary.BigEndian.Uint64(b)
	return s
}

func (s *T) Len() int { return Len }
