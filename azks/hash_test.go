package azks

import (
	"context"
	"crypto/sha512"
	"encoding/binary"
	"testing"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
	"github.com/stretchr/testify/require"
)

func sum(parts ...[]byte) crypto.Digest {
	var buf []byte
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return sha512.Sum512_256(buf)
}

func encodeLabel(n uint32, fill byte) []byte {
	buf := make([]byte, 4, 36)
	binary.BigEndian.PutUint32(buf, n)
	for i := 0; i < 32; i++ {
		buf = append(buf, fill)
	}
	return buf
}

// The commitment layout is part of the published format; these digests
// are computed by hand from it.
func TestFrozenHashLayout(t *testing.T) {
	ctx := context.Background()
	a := NewTestAzks(t, NewTestDB(t), testConfig())

	empty := sum([]byte("akd.empty.v1"))
	emptyLabel := encodeLabel(0, 0xff)
	root0 := sum([]byte("akd.interior.v1"), empty[:], emptyLabel, empty[:], emptyLabel)
	got, err := a.RootHash(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, root0, got)

	value := digestOf("value")
	l := fullLabel(0xff)
	got, err = a.BatchInsert(ctx, []Element{{Label: l, Value: value}}, DirectoryMode)
	require.NoError(t, err)

	leaf := sum([]byte("akd.leaf.v1"), encodeLabel(label.MaxBits, 0xff), value[:])
	root1 := sum([]byte("akd.interior.v1"),
		empty[:], emptyLabel,
		leaf[:], encodeLabel(label.MaxBits, 0xff))
	require.Equal(t, root1, got)
}
