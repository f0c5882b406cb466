package azks

import (
	"context"
	"math/rand"
	"testing"

	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/crypto/hasher/sha512256"
	"github.com/coniks-sys/akd-go/label"
	"github.com/stretchr/testify/require"
)

func testTreeHasher(t *testing.T) *hasher.TreeHasher {
	h, err := hasher.New(sha512256.ID)
	require.NoError(t, err)
	return hasher.NewTreeHasher(h)
}

func TestNodeSerialization(t *testing.T) {
	th := testTreeHasher(t)
	r := rand.New(rand.NewSource(50))

	leaf := newLeaf(th, Element{Label: RandomLabel(r, 200), Value: RandomDigest(r)}, 7)
	got, err := deserializeNode(leaf.Label, leaf.serialize())
	require.NoError(t, err)
	require.Equal(t, leaf, got)

	l := RandomLabel(r, 256)
	children := [2]ChildRef{
		{Label: l.Prefix(9), Hash: RandomDigest(r)},
		emptyRef(th),
	}
	root := newInterior(th, label.Root, Root, children, 3)
	got, err = deserializeNode(label.Root, root.serialize())
	require.NoError(t, err)
	require.Equal(t, root, got)

	_, err = deserializeNode(leaf.Label, nil)
	require.ErrorIs(t, err, ErrCorruptNode)
	buf := leaf.serialize()
	_, err = deserializeNode(leaf.Label, buf[:len(buf)-1])
	require.ErrorIs(t, err, ErrCorruptNode)
	buf[0] = 9
	_, err = deserializeNode(leaf.Label, buf)
	require.ErrorIs(t, err, ErrCorruptNode)
	// a leaf record cannot pass for an interior node
	buf[0] = byte(Interior)
	_, err = deserializeNode(leaf.Label, buf)
	require.ErrorIs(t, err, ErrCorruptNode)

	buf = root.serialize()
	buf[1+8+32+4+31] = 0x01 // stray bit past the child label length
	_, err = deserializeNode(label.Root, buf)
	require.ErrorIs(t, err, ErrCorruptNode)
	require.Equal(t, StorageError, KindOf(err))
}

func TestStateSerialization(t *testing.T) {
	st := State{Epoch: 12, NumNodes: 99, PrunedThrough: 4, LabelBits: 256, HasherID: sha512256.ID}
	got, err := deserializeState(st.serialize())
	require.NoError(t, err)
	require.Equal(t, st, got)

	buf := st.serialize()
	_, err = deserializeState(buf[:10])
	require.Error(t, err)
	_, err = deserializeState(buf[:len(buf)-1])
	require.Error(t, err)
}

func TestKVStoreVersions(t *testing.T) {
	ctx := context.Background()
	th := testTreeHasher(t)
	s, err := NewKVStore(NewTestDB(t), 16)
	require.NoError(t, err)

	_, ok, err := s.LoadState(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	l := fullLabel(0x42)
	var nodes []*TreeNode
	for _, epoch := range []uint64{1, 4, 6} {
		n := newLeaf(th, Element{Label: l, Value: digestOf(string(rune('a' + epoch)))}, epoch)
		nodes = append(nodes, n)
		cs := &CommitSet{
			State: State{Epoch: epoch, LabelBits: 256, HasherID: sha512256.ID},
			Root:  n.Hash,
			Nodes: []*TreeNode{n},
		}
		require.NoError(t, s.Commit(ctx, cs))
	}

	for epoch, want := range map[uint64]*TreeNode{
		1: nodes[0], 2: nodes[0], 3: nodes[0], 4: nodes[1], 5: nodes[1], 6: nodes[2], 100: nodes[2],
	} {
		got, err := s.GetNode(ctx, l, epoch)
		require.NoError(t, err)
		require.Equal(t, want, got, "epoch %d", epoch)
	}
	_, err = s.GetNode(ctx, l, 0)
	require.ErrorIs(t, err, ErrNodeNotFound)

	versions, err := s.NodeVersions(ctx, l)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 4, 6}, versions)

	res, err := s.BatchGetNodes(ctx, []label.Label{l, fullLabel(0x43)}, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.Equal(t, nodes[1], res[l])

	st, ok, err := s.LoadState(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(6), st.Epoch)

	d, err := s.RootHash(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, nodes[1].Hash, d)
	_, err = s.RootHash(ctx, 5)
	require.ErrorIs(t, err, ErrEpochNotFound)

	// superseded versions are removed in the same commit
	cs := &CommitSet{
		State:      State{Epoch: 7, LabelBits: 256, HasherID: sha512256.ID},
		Superseded: []NodeVersion{{Label: l, Epoch: 1}, {Label: l, Epoch: 4}},
		Records:    []Record{{Key: []byte("Vx"), Value: []byte("y")}},
	}
	require.NoError(t, s.Commit(ctx, cs))
	versions, err = s.NodeVersions(ctx, l)
	require.NoError(t, err)
	require.Equal(t, []uint64{6}, versions)
	v, err := s.DB().Get([]byte("Vx"))
	require.NoError(t, err)
	require.Equal(t, []byte("y"), v)
}

// Reading an old epoch must not leave a stale version in the cache that a
// later read at the latest epoch would return.
func TestKVStoreCacheHoldsNewestOnly(t *testing.T) {
	ctx := context.Background()
	r := rand.New(rand.NewSource(51))
	db := NewTestDB(t)
	a := NewTestAzks(t, db, testConfig())

	elems := RandomElements(r, 40, label.MaxBits)
	_, err := a.BatchInsert(ctx, elems, DirectoryMode)
	require.NoError(t, err)
	updated := []Element{{Label: elems[0].Label, Value: RandomDigest(r)}}
	_, err = a.BatchInsert(ctx, updated, DirectoryMode)
	require.NoError(t, err)

	cached, err := NewKVStore(db, 8)
	require.NoError(t, err)
	uncached, err := NewKVStore(db, 0)
	require.NoError(t, err)
	_, _, err = cached.LoadState(ctx)
	require.NoError(t, err)
	_, _, err = uncached.LoadState(ctx)
	require.NoError(t, err)

	old, err := cached.GetNode(ctx, elems[0].Label, 1)
	require.NoError(t, err)
	require.Equal(t, elems[0].Value, old.Value)
	cur, err := cached.GetNode(ctx, elems[0].Label, 2)
	require.NoError(t, err)
	require.Equal(t, updated[0].Value, cur.Value)
	old, err = cached.GetNode(ctx, elems[0].Label, 1)
	require.NoError(t, err)
	require.Equal(t, elems[0].Value, old.Value)

	for _, e := range elems {
		for _, epoch := range []uint64{2, 1, 2} {
			want, err := uncached.GetNode(ctx, e.Label, epoch)
			require.NoError(t, err)
			got, err := cached.GetNode(ctx, e.Label, epoch)
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	}

	// mutating a returned node does not reach the cache
	cur.Value = RandomDigest(r)
	again, err := cached.GetNode(ctx, elems[0].Label, 2)
	require.NoError(t, err)
	require.Equal(t, updated[0].Value, again.Value)
}
