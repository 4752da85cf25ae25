// Package hex is a set of aliases and helpers for hex encoding keys for
// display, using the SIMD accelerated xhex where it is available.
package hex

import (
	"encoding/hex"

	"github.com/templexxx/xhex"
)

var Dec = hex.DecodeString

// Enc returns the lower case hex encoding of b.
func Enc(b []byte) string { return string(EncAppend(make([]byte, 0, len(b)*2), b)) }

// EncAppend appends the hex encoding of src to dst.
func EncAppend(dst, src []byte) (b []byte) {
	l := len(dst)
	dst = append(dst, make([]byte, len(src)*2)...)
	xhex.Encode(dst[l:], src)
	return dst
}
