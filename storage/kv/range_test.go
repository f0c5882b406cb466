package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIncrementKey(t *testing.T) {
	require.Equal(t, []byte{0x01, 0x03}, IncrementKey([]byte{0x01, 0x02}))
	require.Equal(t, []byte{0x02}, IncrementKey([]byte{0x01, 0xff}))
	require.Nil(t, IncrementKey([]byte{0xff, 0xff}))
}

func TestBytesPrefix(t *testing.T) {
	rg := BytesPrefix([]byte("ab"))
	require.Equal(t, []byte("ab"), rg.Start)
	require.Equal(t, []byte("ac"), rg.Limit)
}
