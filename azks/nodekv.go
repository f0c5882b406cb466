package azks

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/storage/kv"
	lru "github.com/hashicorp/golang-lru"
)

// Key prefixes used by KVStore. Extra records must not start with any of them.
const (
	NodeIdentifier  = 'N'
	StateIdentifier = 'A'
	RootIdentifier  = 'R'
)

func isReservedKey(key []byte) bool {
	if len(key) == 0 {
		return true
	}
	switch key[0] {
	case NodeIdentifier, StateIdentifier, RootIdentifier:
		return true
	}
	return false
}

func nodePrefix(l label.Label) []byte {
	// NodeIdentifier + len(label) + label
	key := make([]byte, 0, 1+label.EncodedSize+8)
	key = append(key, NodeIdentifier)
	return append(key, l.Encode()...)
}

func nodeKey(l label.Label, epoch uint64) []byte {
	return binary.BigEndian.AppendUint64(nodePrefix(l), epoch)
}

// nodeRange covers every version of l with LastEpoch <= epoch.
func nodeRange(l label.Label, epoch uint64) *kv.Range {
	if epoch == math.MaxUint64 {
		return kv.BytesPrefix(nodePrefix(l))
	}
	return &kv.Range{Start: nodeKey(l, 0), Limit: nodeKey(l, epoch+1)}
}

func rootKey(epoch uint64) []byte {
	key := make([]byte, 0, 1+8)
	key = append(key, RootIdentifier)
	return binary.BigEndian.AppendUint64(key, epoch)
}

var stateKey = []byte{StateIdentifier}

func (st *State) serialize() []byte {
	buf := make([]byte, 0, 8*3+4+1+len(st.HasherID))
	buf = binary.BigEndian.AppendUint64(buf, st.Epoch)
	buf = binary.BigEndian.AppendUint64(buf, st.NumNodes)
	buf = binary.BigEndian.AppendUint64(buf, st.PrunedThrough)
	buf = binary.BigEndian.AppendUint32(buf, st.LabelBits)
	buf = append(buf, byte(len(st.HasherID)))
	return append(buf, st.HasherID...)
}

func deserializeState(buf []byte) (State, error) {
	var st State
	if len(buf) < 8*3+4+1 {
		return st, errors.New("short state record")
	}
	st.Epoch = binary.BigEndian.Uint64(buf)
	st.NumNodes = binary.BigEndian.Uint64(buf[8:])
	st.PrunedThrough = binary.BigEndian.Uint64(buf[16:])
	st.LabelBits = binary.BigEndian.Uint32(buf[24:])
	n := int(buf[28])
	if len(buf) != 29+n {
		return st, errors.New("bad hasher id length in state record")
	}
	st.HasherID = string(buf[29:])
	return st, nil
}

// KVStore is a NodeStore over a kv.DB. It keeps the newest version of
// recently used nodes in an LRU cache.
type KVStore struct {
	db    kv.DB
	cache *lru.Cache // label.Label -> *TreeNode, newest version only

	// mu orders cache fills by readers against commits.
	mu     sync.Mutex
	latest uint64
}

var _ NodeStore = (*KVStore)(nil)

// NewKVStore wraps db. A cacheSize of 0 disables the node cache.
func NewKVStore(db kv.DB, cacheSize int) (*KVStore, error) {
	s := &KVStore{db: db}
	if cacheSize > 0 {
		c, err := lru.New(cacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// DB returns the underlying database.
func (s *KVStore) DB() kv.DB {
	return s.db
}

func (s *KVStore) cached(l label.Label, epoch uint64) *TreeNode {
	if s.cache == nil {
		return nil
	}
	v, ok := s.cache.Get(l)
	if !ok {
		return nil
	}
	n := v.(*TreeNode)
	if n.LastEpoch > epoch {
		return nil
	}
	cp := *n
	return &cp
}

// fill caches n if it was read at the latest committed epoch, so that it
// is the newest version of its label.
func (s *KVStore) fill(n *TreeNode, epoch uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch == s.latest {
		cp := *n
		s.cache.Add(n.Label, &cp)
	}
}

func (s *KVStore) GetNode(ctx context.Context, l label.Label, epoch uint64) (*TreeNode, error) {
	if n := s.cached(l, epoch); n != nil {
		return n, nil
	}
	it := s.db.NewIterator(nodeRange(l, epoch))
	defer it.Release()
	if !it.Last() {
		if err := it.Error(); err != nil {
			return nil, storageErr("get node "+l.String(), err)
		}
		return nil, ErrNodeNotFound.withf("%s at epoch %d", l, epoch)
	}
	n, err := deserializeNode(l, it.Value())
	if err != nil {
		return nil, err
	}
	s.fill(n, epoch)
	return n, nil
}

func (s *KVStore) BatchGetNodes(ctx context.Context, ls []label.Label, epoch uint64) (map[label.Label]*TreeNode, error) {
	res := make(map[label.Label]*TreeNode, len(ls))
	for _, l := range ls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := s.GetNode(ctx, l, epoch)
		switch {
		case errors.Is(err, ErrNodeNotFound):
			continue
		case err != nil:
			return nil, err
		}
		res[l] = n
	}
	return res, nil
}

func (s *KVStore) NodeVersions(ctx context.Context, l label.Label) ([]uint64, error) {
	prefix := nodePrefix(l)
	it := s.db.NewIterator(kv.BytesPrefix(prefix))
	defer it.Release()
	var epochs []uint64
	for it.Next() {
		key := it.Key()
		if len(key) != len(prefix)+8 {
			return nil, ErrCorruptNode.withf("bad key length %d for %s", len(key), l)
		}
		epochs = append(epochs, binary.BigEndian.Uint64(key[len(prefix):]))
	}
	if err := it.Error(); err != nil {
		return nil, storageErr("list versions of "+l.String(), err)
	}
	return epochs, nil
}

func (s *KVStore) LoadState(ctx context.Context) (State, bool, error) {
	buf, err := s.db.Get(stateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return State{}, false, nil
	} else if err != nil {
		return State{}, false, storageErr("load state", err)
	}
	st, err := deserializeState(buf)
	if err != nil {
		return State{}, false, storageErr("load state", err)
	}
	s.mu.Lock()
	s.latest = st.Epoch
	s.mu.Unlock()
	return st, true, nil
}

func (s *KVStore) RootHash(ctx context.Context, epoch uint64) (crypto.Digest, error) {
	buf, err := s.db.Get(rootKey(epoch))
	if errors.Is(err, kv.ErrNotFound) {
		return crypto.Digest{}, ErrEpochNotFound.withf("epoch %d", epoch)
	} else if err != nil {
		return crypto.Digest{}, storageErr("load root", err)
	}
	d, err := crypto.DigestFromBytes(buf)
	if err != nil {
		return crypto.Digest{}, storageErr("load root", err)
	}
	return d, nil
}

func (s *KVStore) Commit(ctx context.Context, cs *CommitSet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := s.db.NewBatch()
	for _, n := range cs.Nodes {
		wb.Put(nodeKey(n.Label, n.LastEpoch), n.serialize())
	}
	for _, v := range cs.Superseded {
		wb.Delete(nodeKey(v.Label, v.Epoch))
	}
	for _, r := range cs.Records {
		wb.Put(r.Key, r.Value)
	}
	wb.Put(rootKey(cs.State.Epoch), cs.Root[:])
	wb.Put(stateKey, cs.State.serialize())
	if err := s.db.Write(wb); err != nil {
		return storageErr("commit epoch", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = cs.State.Epoch
	if s.cache != nil {
		for _, n := range cs.Nodes {
			cp := *n
			s.cache.Add(n.Label, &cp)
		}
	}
	return nil
}
