// Package label implements the fixed-width bit string labels that address
// positions in the AZKS binary trie. A label stores at most MaxBits bits
// most-significant-bit first; bits past its length are always zero, so
// labels can be compared with == and used as map keys.
package label

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
)

const (
	// MaxBits is the largest supported label length in bits.
	MaxBits = 256
	// Size is the size of the label value in bytes.
	Size = MaxBits / 8
	// EncodedSize is the size of Encode's output.
	EncodedSize = 4 + Size
)

var (
	// ErrTooLong indicates a label longer than MaxBits
	// or longer than the supplied bytes.
	ErrTooLong = errors.New("[label] Label too long")
	// ErrBadEncoding indicates a malformed encoded label.
	ErrBadEncoding = errors.New("[label] Bad label encoding")
)

// Label is a bit string of Len bits stored in Value.
type Label struct {
	Value [Size]byte
	Len   uint32
}

// Root is the label of the trie root: the empty bit string.
var Root = Label{}

// Empty marks an absent child. It is never produced by the
// constructors since its value bits are set past its length.
var Empty = Label{Value: [Size]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}}

// New returns the label made of the first n bits of bs.
func New(bs []byte, n uint32) (Label, error) {
	var l Label
	if n > MaxBits || int(n) > len(bs)*8 {
		return l, ErrTooLong
	}
	copy(l.Value[:], bs[:(n+7)/8])
	l.Len = n
	l.mask()
	return l, nil
}

// FromDigest returns the label made of the first n bits of a 32-byte digest.
// It panics if n exceeds MaxBits.
func FromDigest(d [Size]byte, n uint32) Label {
	l, err := New(d[:], n)
	if err != nil {
		panic(err)
	}
	return l
}

// mask clears every bit past l.Len.
func (l *Label) mask() {
	full := l.Len / 8
	if rem := l.Len % 8; rem != 0 {
		l.Value[full] &= byte(0xff << (8 - rem))
		full++
	}
	for i := full; i < Size; i++ {
		l.Value[i] = 0
	}
}

// IsValid reports whether l could have been built by New: it is at most
// MaxBits long and has no bit set past its length.
func (l Label) IsValid() bool {
	if l.Len > MaxBits {
		return false
	}
	m := l
	m.mask()
	return m == l
}

// IsEmpty reports whether l is the absent-child marker.
func (l Label) IsEmpty() bool {
	return l == Empty
}

// Bit returns the i-th bit of l (MSB first) as 0 or 1.
// It returns 0 past the end of the label.
func (l Label) Bit(i uint32) uint8 {
	if i >= l.Len {
		return 0
	}
	return (l.Value[i/8] >> (7 - i%8)) & 1
}

// Prefix returns the first n bits of l. If n >= l.Len, l is returned.
func (l Label) Prefix(n uint32) Label {
	if n >= l.Len {
		return l
	}
	p := l
	p.Len = n
	p.mask()
	return p
}

// IsPrefixOf reports whether l is a prefix of other.
// Every label is a prefix of itself.
func (l Label) IsPrefixOf(other Label) bool {
	if l.IsEmpty() || other.IsEmpty() || l.Len > other.Len {
		return false
	}
	return other.Prefix(l.Len) == l
}

// LongestCommonPrefix returns the longest label that prefixes both a and b.
func LongestCommonPrefix(a, b Label) Label {
	n := a.Len
	if b.Len < n {
		n = b.Len
	}
	var i uint32
	for ; i < n/8*8; i += 8 {
		if x := a.Value[i/8] ^ b.Value[i/8]; x != 0 {
			return a.Prefix(i + uint32(bits.LeadingZeros8(x)))
		}
	}
	for ; i < n; i++ {
		if a.Bit(i) != b.Bit(i) {
			return a.Prefix(i)
		}
	}
	return a.Prefix(n)
}

// Compare orders labels by their bits, a prefix sorting before its
// extensions. It returns -1, 0 or +1.
func Compare(a, b Label) int {
	for i := 0; i < Size; i++ {
		if a.Value[i] != b.Value[i] {
			if a.Value[i] < b.Value[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case a.Len < b.Len:
		return -1
	case a.Len > b.Len:
		return 1
	}
	return 0
}

// Encode returns the canonical encoding of l:
// 4-byte big-endian length followed by the 32 value bytes.
func (l Label) Encode() []byte {
	buf := make([]byte, EncodedSize)
	binary.BigEndian.PutUint32(buf, l.Len)
	copy(buf[4:], l.Value[:])
	return buf
}

// Decode parses the output of Encode.
func Decode(buf []byte) (Label, error) {
	var l Label
	if len(buf) != EncodedSize {
		return l, ErrBadEncoding
	}
	l.Len = binary.BigEndian.Uint32(buf)
	copy(l.Value[:], buf[4:])
	if l != Empty && !l.IsValid() {
		return l, ErrBadEncoding
	}
	return l, nil
}

// MarshalText encodes l as the hex of Encode.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(l.Encode())), nil
}

// UnmarshalText parses the output of MarshalText.
func (l *Label) UnmarshalText(text []byte) error {
	buf, err := hex.DecodeString(string(text))
	if err != nil {
		return ErrBadEncoding
	}
	*l, err = Decode(buf)
	return err
}

// String renders l as its bit length and the hex of its used bytes.
func (l Label) String() string {
	if l.IsEmpty() {
		return "empty"
	}
	if l.Len > MaxBits {
		return fmt.Sprintf("%d:invalid", l.Len)
	}
	return fmt.Sprintf("%d:%s", l.Len, hex.EncodeToString(l.Value[:(l.Len+7)/8]))
}
