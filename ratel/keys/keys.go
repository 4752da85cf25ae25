// Package keys composes database keys out of fixed width or terminal
// elements. Every element knows its own encoding, so a key is written by
// concatenating the elements in order and read back by handing a list of
// empty elements of the expected types to Read.
package keys

import (
	"bytes"
	"io"

	"github.com/typedb/typedb-sub037/fault"
)

// Element is an enveloper for a type that can Read and Write its binary form.
type Element interface {
	// Write the binary form of the field into the given bytes.Buffer.
	Write(buf io.Writer)
	// Read accepts a bytes.Buffer and decodes a field from it. It returns nil
	// if the buffer did not hold a complete, legal encoding.
	Read(buf io.Reader) Element
	// Len gives the length of the bytes output by the type. A terminal element
	// reports the length of its current value.
	Len() int
}

// Write the contents of each Element to a byte slice.
func Write(elems ...Element) []byte {
	// get the length of the buffer required
	var length int
	for _, el := range elems {
		length += el.Len()
	}
	buf := bytes.NewBuffer(make([]byte, 0, length))
	// write out the data from each element
	for _, el := range elems {
		el.Write(buf)
	}
	return buf.Bytes()
}

// Read the contents of a byte slice into the provided list of Element types.
// It fails if any element cannot decode or the key has bytes left over.
func Read(b []byte, elems ...Element) (err error) {
	buf := bytes.NewBuffer(b)
	for _, el := range elems {
		if el.Read(buf) == nil {
			return fault.Wrap(fault.ErrMalformedKey, "read key", b, nil)
		}
	}
	if buf.Len() != 0 {
		return fault.Wrap(fault.ErrMalformedKey, "read key", b,
			errorf.D("%d trailing bytes", buf.Len()))
	}
	return
}

// Concat joins raw byte strings into a new key without aliasing any of them.
func Concat(parts ...[]byte) (b []byte) {
	var length int
	for _, p := range parts {
		length += len(p)
	}
	b = make([]byte, 0, length)
	for _, p := range parts {
		b = append(b, p...)
	}
	return
}

// Successor returns the smallest key that sorts after every key starting with
// prefix, or nil if prefix is all 0xff bytes and no such key exists.
func Successor(prefix []byte) []byte {
	s := bytes.Clone(prefix)
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] != 0xff {
			s[i]++
			return s[:i+1]
		}
	}
	return nil
}
