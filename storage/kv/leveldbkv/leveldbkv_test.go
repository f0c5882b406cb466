package leveldbkv

import (
	"path/filepath"
	"testing"

	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/coniks-sys/akd-go/storage/kv/kvtest"
	"github.com/stretchr/testify/require"
)

func TestMemConformance(t *testing.T) {
	db, err := OpenMem()
	require.NoError(t, err)
	defer db.Close()
	kvtest.TestDB(t, db)
}

func TestDiskConformance(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	defer db.Close()
	kvtest.TestDB(t, db)
}

func TestDiskReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	db, err := OpenDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Put([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	db, err = OpenDB(path)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

type foreignBatch struct{ kv.Batch }

func TestWriteRejectsForeignBatch(t *testing.T) {
	db, err := OpenMem()
	require.NoError(t, err)
	defer db.Close()
	require.ErrorIs(t, db.Write(foreignBatch{}), kv.ErrBadBatch)
}
