package azks

import (
	"context"
	"math/rand"
	"testing"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/coniks-sys/akd-go/storage/kv/leveldbkv"
)

// NewTestDB returns an in-memory kv.DB closed when t ends, for _tests_.
func NewTestDB(t testing.TB) kv.DB {
	db, err := leveldbkv.OpenMem()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewTestAzks returns an empty tree over db for _tests_.
func NewTestAzks(t testing.TB, db kv.DB, conf Config, opts ...Option) *Azks {
	store, err := NewKVStore(db, 1024)
	if err != nil {
		t.Fatal(err)
	}
	a, err := New(context.Background(), store, conf, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

// RandomLabel returns a random label of the given length.
func RandomLabel(r *rand.Rand, bits uint32) label.Label {
	var d [label.Size]byte
	r.Read(d[:])
	return label.FromDigest(d, bits)
}

// RandomDigest returns a random digest.
func RandomDigest(r *rand.Rand) crypto.Digest {
	var d crypto.Digest
	r.Read(d[:])
	return d
}

// RandomElements returns n elements with distinct random labels.
func RandomElements(r *rand.Rand, n int, bits uint32) []Element {
	seen := make(map[label.Label]bool, n)
	elems := make([]Element, 0, n)
	for len(elems) < n {
		l := RandomLabel(r, bits)
		if seen[l] {
			continue
		}
		seen[l] = true
		elems = append(elems, Element{Label: l, Value: RandomDigest(r)})
	}
	return elems
}
