package label

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustNew(t *testing.T, bs []byte, n uint32) Label {
	l, err := New(bs, n)
	require.NoError(t, err)
	return l
}

func TestNewMasksTrailingBits(t *testing.T) {
	l := mustNew(t, []byte{0xff, 0xff}, 11)
	require.Equal(t, byte(0xff), l.Value[0])
	require.Equal(t, byte(0xe0), l.Value[1])
	for i := 2; i < Size; i++ {
		require.Zero(t, l.Value[i])
	}
	require.Equal(t, mustNew(t, []byte{0xff, 0xe0}, 11), l)
}

func TestNewRejectsLongLabels(t *testing.T) {
	_, err := New(make([]byte, 40), MaxBits+1)
	require.ErrorIs(t, err, ErrTooLong)
	_, err = New([]byte{0x01}, 9)
	require.ErrorIs(t, err, ErrTooLong)
}

func TestBit(t *testing.T) {
	l := mustNew(t, []byte{0xa5}, 8) // 1010 0101
	want := []uint8{1, 0, 1, 0, 0, 1, 0, 1}
	for i, b := range want {
		require.Equal(t, b, l.Bit(uint32(i)), "bit %d", i)
	}
	require.Zero(t, l.Bit(8))
}

func TestLongestCommonPrefix(t *testing.T) {
	a := mustNew(t, []byte{0xf0, 0x00}, 16)
	b := mustNew(t, []byte{0xf0, 0x80}, 16)
	lcp := LongestCommonPrefix(a, b)
	require.Equal(t, uint32(8), lcp.Len)
	require.True(t, lcp.IsPrefixOf(a))
	require.True(t, lcp.IsPrefixOf(b))

	c := mustNew(t, []byte{0x70}, 8)
	require.Equal(t, Root, LongestCommonPrefix(a, c))

	require.Equal(t, a, LongestCommonPrefix(a, a))

	short := mustNew(t, []byte{0xf0}, 3)
	require.Equal(t, short, LongestCommonPrefix(short, a))
}

func TestIsPrefixOf(t *testing.T) {
	a := mustNew(t, []byte{0xb0}, 4)
	b := mustNew(t, []byte{0xb7}, 8)
	require.True(t, a.IsPrefixOf(b))
	require.False(t, b.IsPrefixOf(a))
	require.True(t, Root.IsPrefixOf(b))
	require.True(t, b.IsPrefixOf(b))
	require.False(t, Empty.IsPrefixOf(b))
	require.False(t, a.IsPrefixOf(Empty))

	c := mustNew(t, []byte{0xa0}, 4)
	require.False(t, c.IsPrefixOf(b))
}

func TestPrefix(t *testing.T) {
	b := mustNew(t, []byte{0xb7}, 8)
	require.Equal(t, mustNew(t, []byte{0xb0}, 4), b.Prefix(4))
	require.Equal(t, b, b.Prefix(20))
	require.Equal(t, Root, b.Prefix(0))
}

func TestCompare(t *testing.T) {
	a := mustNew(t, []byte{0x80}, 1)
	b := mustNew(t, []byte{0x80}, 2)
	c := mustNew(t, []byte{0xc0}, 2)
	require.Equal(t, -1, Compare(a, b))
	require.Equal(t, 1, Compare(b, a))
	require.Equal(t, -1, Compare(b, c))
	require.Zero(t, Compare(c, c))
}

func TestEncodeDecode(t *testing.T) {
	l := mustNew(t, []byte{0xde, 0xad, 0xbe, 0xef}, 27)
	buf := l.Encode()
	require.Len(t, buf, EncodedSize)
	require.Equal(t, []byte{0, 0, 0, 27}, buf[:4])

	got, err := Decode(buf)
	require.NoError(t, err)
	require.Equal(t, l, got)

	got, err = Decode(Empty.Encode())
	require.NoError(t, err)
	require.True(t, got.IsEmpty())

	// unmasked bits past the length are rejected
	buf[4+5] = 0x01
	_, err = Decode(buf)
	require.ErrorIs(t, err, ErrBadEncoding)

	_, err = Decode(buf[:10])
	require.ErrorIs(t, err, ErrBadEncoding)
}

func TestEmptyIsDistinct(t *testing.T) {
	require.NotEqual(t, Root, Empty)
	require.True(t, Empty.IsEmpty())
	require.False(t, Root.IsEmpty())
	require.Equal(t, "empty", Empty.String())
	require.Equal(t, "4:b0", mustNew(t, []byte{0xb7}, 4).String())
}

func TestIsValid(t *testing.T) {
	require.True(t, Root.IsValid())
	require.True(t, mustNew(t, []byte{0xb7}, 5).IsValid())
	require.False(t, Empty.IsValid())

	l := mustNew(t, []byte{0xb7}, 5)
	l.Value[0] |= 0x01
	require.False(t, l.IsValid())

	l = mustNew(t, []byte{0xb7}, 5)
	l.Len = MaxBits + 1
	require.False(t, l.IsValid())
}

func TestTextEncoding(t *testing.T) {
	l := mustNew(t, []byte{0xde, 0xad, 0xbe, 0xef}, 27)
	text, err := l.MarshalText()
	require.NoError(t, err)
	var got Label
	require.NoError(t, got.UnmarshalText(text))
	require.Equal(t, l, got)

	text, err = Empty.MarshalText()
	require.NoError(t, err)
	require.NoError(t, got.UnmarshalText(text))
	require.True(t, got.IsEmpty())

	require.ErrorIs(t, got.UnmarshalText([]byte("zz")), ErrBadEncoding)
	require.ErrorIs(t, got.UnmarshalText([]byte("0000")), ErrBadEncoding)
}
