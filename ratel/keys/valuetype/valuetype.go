// Package valuetype names the types an attribute value can have and encodes
// values so that the byte order of two encodings of the same type is the order
// of the values themselves.
package valuetype

import (
	"encoding/binary"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/typedb/typedb-sub037/fault"
	"github.com/typedb/typedb-sub037/ratel/keys"
)

const Len = 1

// V is a value type.
type V byte

const (
	Object   V = 0
	Boolean  V = 10
	Long     V = 20
	Double   V = 30
	String   V = 40
	DateTime V = 50
)

// MaxStringSize is the longest string that can be length prefixed.
const MaxStringSize = math.MaxUint16

var names = map[V]string{
	Object:   "object",
	Boolean:  "boolean",
	Long:     "long",
	Double:   "double",
	String:   "string",
	DateTime: "datetime",
}

// Of decodes a value type byte, failing on any value outside the enumeration.
func Of(b byte) (v V, err error) {
	if _, ok := names[V(b)]; !ok {
		err = errors.WithMessagef(fault.ErrUnrecognisedEncoding, "value type byte %d", b)
		return
	}
	return V(b), nil
}

func (v V) B() byte { return byte(v) }

func (v V) String() string {
	if n, ok := names[v]; ok {
		return n
	}
	return "unknown"
}

// Encode a value of the given type. The Go type of value must match: bool,
// int64 (or int), float64, string and time.Time.
func Encode(v V, value any) (b []byte, err error) {
	switch v {
	case Boolean:
		if x, ok := value.(bool); ok {
			return EncodeBoolean(x), nil
		}
	case Long:
		switch x := value.(type) {
		case int64:
			return EncodeLong(x), nil
		case int:
			return EncodeLong(int64(x)), nil
		}
	case Double:
		if x, ok := value.(float64); ok {
			return EncodeDouble(x)
		}
	case String:
		if x, ok := value.(string); ok {
			return EncodeString(x)
		}
	case DateTime:
		if x, ok := value.(time.Time); ok {
			return EncodeDateTime(x), nil
		}
	default:
		if _, err = Of(byte(v)); err != nil {
			return
		}
	}
	err = errors.WithMessagef(fault.ErrUnsupportedValue, "%T as %s", value, v)
	return
}

// Decode a value of the given type, the result has the Go type Encode
// accepts for it (int64 for Long).
func Decode(v V, b []byte) (value any, err error) {
	switch v {
	case Boolean:
		return DecodeBoolean(b)
	case Long:
		return DecodeLong(b)
	case Double:
		return DecodeDouble(b)
	case String:
		return DecodeString(b)
	case DateTime:
		return DecodeDateTime(b)
	}
	if _, err = Of(byte(v)); err != nil {
		return
	}
	err = errors.WithMessagef(fault.ErrUnsupportedValue, "%s has no encoded value", v)
	return
}

func EncodeBoolean(x bool) []byte {
	if x {
		return []byte{1}
	}
	return []byte{0}
}

func DecodeBoolean(b []byte) (x bool, err error) {
	if len(b) != 1 || b[0] > 1 {
		err = errors.WithMessagef(fault.ErrMalformedKey, "boolean %x", b)
		return
	}
	return b[0] == 1, nil
}

const signBit = uint64(1) << 63

// EncodeLong flips the sign bit so negative numbers sort before positive ones.
func EncodeLong(x int64) (b []byte) {
	b = make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(x)^signBit)
	return
}

func DecodeLong(b []byte) (x int64, err error) {
	if len(b) != 8 {
		err = errors.WithMessagef(fault.ErrMalformedKey, "long must be 8 bytes, got %d", len(b))
		return
	}
	return int64(binary.BigEndian.Uint64(b) ^ signBit), nil
}

// EncodeDouble sets the sign bit of positive numbers and inverts negative
// ones, which makes the IEEE-754 bit pattern sort numerically. NaN has no
// place in that order and is refused.
func EncodeDouble(x float64) (b []byte, err error) {
	if math.IsNaN(x) {
		err = errors.WithMessage(fault.ErrUnsupportedValue, "NaN")
		return
	}
	bits := math.Float64bits(x)
	if bits&signBit != 0 {
		bits = ^bits
	} else {
		bits |= signBit
	}
	b = make([]byte, 8)
	binary.BigEndian.PutUint64(b, bits)
	return
}

func DecodeDouble(b []byte) (x float64, err error) {
	if len(b) != 8 {
		err = errors.WithMessagef(fault.ErrMalformedKey, "double must be 8 bytes, got %d", len(b))
		return
	}
	bits := binary.BigEndian.Uint64(b)
	if bits&signBit != 0 {
		bits &^= signBit
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

// EncodeString is for a string in terminal position of a key.
func EncodeString(x string) (b []byte, err error) {
	if !utf8.ValidString(x) {
		err = errors.WithMessage(fault.ErrUnsupportedValue, "string is not valid utf-8")
		return
	}
	return []byte(x), nil
}

func DecodeString(b []byte) (x string, err error) {
	if !utf8.Valid(b) {
		err = errors.WithMessage(fault.ErrMalformedKey, "string is not valid utf-8")
		return
	}
	return string(b), nil
}

// EncodeDateTime stores milliseconds since the epoch, in UTC.
func EncodeDateTime(x time.Time) []byte { return EncodeLong(x.UnixMilli()) }

func DecodeDateTime(b []byte) (x time.Time, err error) {
	var ms int64
	if ms, err = DecodeLong(b); err != nil {
		return
	}
	return time.UnixMilli(ms).UTC(), nil
}

// T is the value type as a keys.Element.
type T struct {
	Val V
}

var _ keys.Element = &T{}

func New(v ...V) (t *T) {
	if len(v) == 0 {
		return &T{}
	}
	return &T{Val: v[0]}
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

// Sized is a string element with a 2 byte length prefix, for strings that are
// not the last element of a key.
type Sized struct {
	Val []byte
}

var _ keys.Element = &Sized{}

// NewSized fails if s cannot be length prefixed.
func NewSized(s string) (t *Sized, err error) {
	if len(s) > MaxStringSize {
		err = errors.WithMessagef(fault.ErrUnsupportedValue, "string of %d bytes", len(s))
		return
	}
	var b []byte
	if b, err = EncodeString(s); err != nil {
		return
	}
	return &Sized{Val: b}, nil
}

func (t *Sized) Write(buf io.Writer) {
	l := make([]byte, 2)
	binary.BigEndian.PutUint16(l, uint16(len(t.Val)))
	_, _ = buf.Write(l)
	_, _ = buf.Write(t.Val)
}

func (t *Sized) Read(buf io.Reader) (el keys.Element) {
	l := make([]byte, 2)
	if _, err := io.ReadFull(buf, l); err != nil {
		return nil
	}
	t.Val = make([]byte, binary.BigEndian.Uint16(l))
	if _, err := io.ReadFull(buf, t.Val); err != nil {
		return nil
	}
	return t
}

func (t *Sized) Len() int { return 2 + len(t.Val) }

// Terminal is a variable width element that takes the rest of the key.
type Terminal struct {
	Val []byte
}

var _ keys.Element = &Terminal{}

func (t *Terminal) Write(buf io.Writer) { _, _ = buf.Write(t.Val) }

func (t *Terminal) Read(buf io.Reader) (el keys.Element) {
	var err error
	if t.Val, err = io.ReadAll(buf); chk.E(err) {
		return nil
	}
	return t
}

func (t *Terminal) Len() int { return len(t.Val) }
