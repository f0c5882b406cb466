package directory

import (
	"context"
	"testing"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/storage/kv"
)

var staticVRFKey = crypto.NewStaticTestVRFKey()

// TestConfig returns a Config with a small cache and forked subtrees
// even for small batches, for _tests_.
func TestConfig() Config {
	conf := DefaultConfig()
	conf.Tree.Parallelism = azks.Parallel(2, 1)
	conf.CacheSize = 128
	return conf
}

// NewTestDirectory creates an empty Directory over an in-memory db
// with a static VRF key, for _tests_.
func NewTestDirectory(t testing.TB) (*Directory, kv.DB) {
	db := azks.NewTestDB(t)
	d, err := New(context.Background(), db, staticVRFKey, TestConfig())
	if err != nil {
		t.Fatal(err)
	}
	return d, db
}
