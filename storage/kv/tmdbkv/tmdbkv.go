// Package tmdbkv implements the kv interface on top of any tm-db
// database (memdb, goleveldb, ...).
package tmdbkv

import (
	"github.com/coniks-sys/akd-go/storage/kv"
	tmdb "github.com/tendermint/tm-db"
)

type tmdbkv struct {
	db tmdb.DB
}

// Wrap uses a tm-db database as a kv.DB. Batches are written with
// WriteSync.
func Wrap(db tmdb.DB) kv.DB {
	return &tmdbkv{db: db}
}

// OpenMem returns a kv.DB over a fresh tm-db MemDB.
func OpenMem() kv.DB {
	return Wrap(tmdb.NewMemDB())
}

// OpenGoLevelDB opens the tm-db goleveldb database name in dir.
func OpenGoLevelDB(name, dir string) (kv.DB, error) {
	db, err := tmdb.NewGoLevelDB(name, dir)
	if err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

func (t *tmdbkv) Get(key []byte) ([]byte, error) {
	v, err := t.db.Get(key)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, kv.ErrNotFound
	}
	return v, nil
}

func (t *tmdbkv) Put(key, value []byte) error {
	return t.db.SetSync(key, value)
}

func (t *tmdbkv) Delete(key []byte) error {
	return t.db.DeleteSync(key)
}

func (t *tmdbkv) NewBatch() kv.Batch {
	return new(batch)
}

func (t *tmdbkv) Write(b kv.Batch) error {
	wb, ok := b.(*batch)
	if !ok {
		return kv.ErrBadBatch
	}
	tb := t.db.NewBatch()
	defer tb.Close()
	for _, o := range wb.ops {
		var err error
		if o.del {
			err = tb.Delete(o.key)
		} else {
			err = tb.Set(o.key, o.value)
		}
		if err != nil {
			return err
		}
	}
	return tb.WriteSync()
}

func (t *tmdbkv) NewIterator(rg *kv.Range) kv.Iterator {
	var start, end []byte
	if rg != nil {
		start, end = rg.Start, rg.Limit
	}
	it, err := t.db.Iterator(start, end)
	if err != nil {
		return &iterator{idx: -1, err: err}
	}
	defer it.Close()
	res := &iterator{idx: -1}
	for ; it.Valid(); it.Next() {
		res.keys = append(res.keys, append([]byte{}, it.Key()...))
		res.values = append(res.values, append([]byte{}, it.Value()...))
	}
	res.err = it.Error()
	return res
}

func (t *tmdbkv) Close() error {
	return t.db.Close()
}

type op struct {
	del   bool
	key   []byte
	value []byte
}

// batch buffers operations until Write, since a tm-db batch
// cannot be reset or outlive its database handle.
type batch struct {
	ops []op
}

func (b *batch) Reset() { b.ops = b.ops[:0] }

func (b *batch) Put(key, value []byte) {
	b.ops = append(b.ops, op{key: append([]byte{}, key...), value: append([]byte{}, value...)})
}

func (b *batch) Delete(key []byte) {
	b.ops = append(b.ops, op{del: true, key: append([]byte{}, key...)})
}

func (b *batch) Len() int { return len(b.ops) }

// iterator is a snapshot of a key range taken when it was created.
type iterator struct {
	keys   [][]byte
	values [][]byte
	idx    int
	err    error
}

func (it *iterator) valid() bool { return it.idx >= 0 && it.idx < len(it.keys) }

func (it *iterator) Key() []byte {
	if !it.valid() {
		return nil
	}
	return it.keys[it.idx]
}

func (it *iterator) Value() []byte {
	if !it.valid() {
		return nil
	}
	return it.values[it.idx]
}

func (it *iterator) First() bool {
	it.idx = 0
	return it.valid()
}

func (it *iterator) Next() bool {
	if it.idx < len(it.keys) {
		it.idx++
	}
	return it.valid()
}

func (it *iterator) Last() bool {
	it.idx = len(it.keys) - 1
	return it.valid()
}

func (it *iterator) Release() {
	it.keys, it.values = nil, nil
	it.idx = -1
}

func (it *iterator) Error() error { return it.err }
