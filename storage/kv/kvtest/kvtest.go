// Package kvtest holds a backend conformance suite and fault injection
// helpers for kv.DB implementations. It is meant for tests only.
package kvtest

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/stretchr/testify/require"
)

// ErrInjected is returned by a FaultyDB when a fault is armed.
var ErrInjected = errors.New("[kvtest] Injected failure")

// TestDB runs the conformance suite against an empty db.
func TestDB(t *testing.T, db kv.DB) {
	t.Helper()

	_, err := db.Get([]byte("missing"))
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	v, err := db.Get([]byte("a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), v)

	require.NoError(t, db.Delete([]byte("a")))
	_, err = db.Get([]byte("a"))
	require.ErrorIs(t, err, kv.ErrNotFound)

	wb := db.NewBatch()
	wb.Put([]byte("p\x01"), []byte("one"))
	wb.Put([]byte("p\x02"), []byte("two"))
	wb.Put([]byte("p\x03"), []byte("three"))
	wb.Put([]byte("q\x01"), []byte("other"))
	wb.Put([]byte("gone"), []byte("x"))
	wb.Delete([]byte("gone"))
	require.Equal(t, 6, wb.Len())
	require.NoError(t, db.Write(wb))
	_, err = db.Get([]byte("gone"))
	require.ErrorIs(t, err, kv.ErrNotFound)

	wb.Reset()
	require.Zero(t, wb.Len())

	// forward iteration over a prefix
	it := db.NewIterator(kv.BytesPrefix([]byte("p")))
	var got []string
	for it.Next() {
		got = append(got, string(it.Value()))
	}
	it.Release()
	require.NoError(t, it.Error())
	require.Equal(t, []string{"one", "two", "three"}, got)

	// Last honours the exclusive limit
	it = db.NewIterator(&kv.Range{Start: []byte("p\x01"), Limit: []byte("p\x03")})
	require.True(t, it.Last())
	require.Equal(t, []byte("p\x02"), it.Key())
	require.True(t, it.First())
	require.Equal(t, []byte("p\x01"), it.Key())
	it.Release()
	require.NoError(t, it.Error())

	it = db.NewIterator(kv.BytesPrefix([]byte("z")))
	require.False(t, it.Last())
	require.False(t, it.First())
	it.Release()
}

// FaultyDB wraps a kv.DB and fails reads or batch writes on demand.
type FaultyDB struct {
	kv.DB
	failReads  atomic.Bool
	failWrites atomic.Bool
}

// NewFaultyDB wraps db with every fault disarmed.
func NewFaultyDB(db kv.DB) *FaultyDB {
	return &FaultyDB{DB: db}
}

// FailReads arms or disarms read failures.
func (f *FaultyDB) FailReads(on bool) { f.failReads.Store(on) }

// FailWrites arms or disarms write failures.
func (f *FaultyDB) FailWrites(on bool) { f.failWrites.Store(on) }

func (f *FaultyDB) Get(key []byte) ([]byte, error) {
	if f.failReads.Load() {
		return nil, ErrInjected
	}
	return f.DB.Get(key)
}

func (f *FaultyDB) NewIterator(rg *kv.Range) kv.Iterator {
	if f.failReads.Load() {
		return failedIterator{}
	}
	return f.DB.NewIterator(rg)
}

func (f *FaultyDB) Write(b kv.Batch) error {
	if f.failWrites.Load() {
		return ErrInjected
	}
	return f.DB.Write(b)
}

type failedIterator struct{}

func (failedIterator) Key() []byte   { return nil }
func (failedIterator) Value() []byte { return nil }
func (failedIterator) First() bool   { return false }
func (failedIterator) Next() bool    { return false }
func (failedIterator) Last() bool    { return false }
func (failedIterator) Release()      {}
func (failedIterator) Error() error  { return ErrInjected }
