package azks

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/utils/binutils"
)

// Azks is an append-only authenticated dictionary stored in a NodeStore.
// BatchInsert must not be called concurrently; every other method may be
// called at any time.
type Azks struct {
	store     NodeStore
	th        *hasher.TreeHasher
	hasherID  string
	labelBits uint32
	pool      *workerPool
	logger    *binutils.Logger
	metrics   *Metrics

	epoch         atomic.Uint64
	prunedThrough atomic.Uint64
	numNodes      atomic.Uint64
}

// Option configures an Azks.
type Option func(*Azks)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *binutils.Logger) Option {
	return func(a *Azks) { a.logger = l }
}

// WithMetrics sets the metrics. The default is NopMetrics.
func WithMetrics(m *Metrics) Option {
	return func(a *Azks) { a.metrics = m }
}

// New opens the tree held by store, or creates an empty one at epoch 0.
// A store created with a different hasher or label length is rejected
// with ErrConfigMismatch.
func New(ctx context.Context, store NodeStore, conf Config, opts ...Option) (*Azks, error) {
	th, err := conf.treeHasher()
	if err != nil {
		return nil, err
	}
	a := &Azks{
		store:     store,
		th:        th,
		hasherID:  conf.HasherID,
		labelBits: conf.LabelBits,
		pool:      newWorkerPool(conf.Parallelism),
		logger:    binutils.NewNopLogger(),
		metrics:   NopMetrics(),
	}
	for _, o := range opts {
		o(a)
	}

	st, ok, err := store.LoadState(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		if st, err = a.initialize(ctx); err != nil {
			return nil, err
		}
	} else if st.HasherID != conf.HasherID || st.LabelBits != conf.LabelBits {
		return nil, ErrConfigMismatch.withf("stored %s/%d bits, configured %s/%d bits",
			st.HasherID, st.LabelBits, conf.HasherID, conf.LabelBits)
	}
	a.epoch.Store(st.Epoch)
	a.prunedThrough.Store(st.PrunedThrough)
	a.numNodes.Store(st.NumNodes)
	a.metrics.Epoch.Set(float64(st.Epoch))
	a.metrics.Nodes.Set(float64(st.NumNodes))
	a.logger.Debug("opened tree", "epoch", st.Epoch, "nodes", st.NumNodes,
		"hasher", st.HasherID, "labelBits", st.LabelBits)
	return a, nil
}

// initialize commits the empty tree: a root with two absent children.
func (a *Azks) initialize(ctx context.Context) (State, error) {
	root := newInterior(a.th, label.Root, Root,
		[2]ChildRef{emptyRef(a.th), emptyRef(a.th)}, 0)
	st := State{
		NumNodes:  1,
		LabelBits: a.labelBits,
		HasherID:  a.hasherID,
	}
	err := a.store.Commit(ctx, &CommitSet{
		State: st,
		Root:  root.Hash,
		Nodes: []*TreeNode{root},
	})
	return st, err
}

// LatestEpoch returns the latest committed epoch.
func (a *Azks) LatestEpoch() uint64 {
	return a.epoch.Load()
}

// PrunedThrough returns the first epoch whose history is fully retained.
func (a *Azks) PrunedThrough() uint64 {
	return a.prunedThrough.Load()
}

// NumNodes returns the number of nodes in the latest tree.
func (a *Azks) NumNodes() uint64 {
	return a.numNodes.Load()
}

// LabelBits returns the configured label length.
func (a *Azks) LabelBits() uint32 {
	return a.labelBits
}

// Hasher returns the tree hasher.
func (a *Azks) Hasher() *hasher.TreeHasher {
	return a.th
}

// Verifier returns a Verifier matching the tree configuration.
func (a *Azks) Verifier() *Verifier {
	return &Verifier{th: a.th, labelBits: a.labelBits}
}

// RootHash returns the root digest committed at epoch.
func (a *Azks) RootHash(ctx context.Context, epoch uint64) (crypto.Digest, error) {
	if epoch > a.LatestEpoch() {
		return crypto.Digest{}, ErrEpochNotFound.withf("epoch %d, latest %d", epoch, a.LatestEpoch())
	}
	return a.store.RootHash(ctx, epoch)
}

// Lookup returns the leaf at l as of epoch.
func (a *Azks) Lookup(ctx context.Context, l label.Label, epoch uint64) (*TreeNode, error) {
	if err := a.checkLabel(l); err != nil {
		return nil, err
	}
	if err := a.checkEpoch(epoch); err != nil {
		return nil, err
	}
	n, err := a.getNode(ctx, l, epoch)
	switch {
	case errors.Is(err, ErrNodeNotFound):
		return nil, ErrLabelNotFound.withf("%s at epoch %d", l, epoch)
	case err != nil:
		return nil, err
	case n.Kind != Leaf:
		return nil, ErrCorruptNode.withf("full-length label %s is a %s", l, n.Kind)
	}
	return n, nil
}

func (a *Azks) checkLabel(l label.Label) error {
	if l.IsEmpty() || l.Len != a.labelBits {
		return ErrLabelLength.withf("label %s, want %d bits", l, a.labelBits)
	}
	return nil
}

// checkEpoch rejects epochs whose tree cannot be walked.
func (a *Azks) checkEpoch(epoch uint64) error {
	if latest := a.LatestEpoch(); epoch > latest {
		return ErrEpochNotFound.withf("epoch %d, latest %d", epoch, latest)
	}
	if pruned := a.PrunedThrough(); epoch < pruned {
		return ErrHistoryPruned.withf("epoch %d, history kept from %d", epoch, pruned)
	}
	return nil
}

// getNode reads the version of l at epoch. The epoch is checked again
// after the read: a bulk insertion that committed meanwhile may have
// deleted versions the read saw or skipped.
func (a *Azks) getNode(ctx context.Context, l label.Label, epoch uint64) (*TreeNode, error) {
	n, err := a.store.GetNode(ctx, l, epoch)
	if pruned := a.PrunedThrough(); epoch < pruned {
		return nil, ErrHistoryPruned.withf("%s at epoch %d, history kept from %d", l, epoch, pruned)
	}
	return n, err
}

// path is the result of walking the tree towards a label.
type path struct {
	// siblings of every node below the root on the walk, root first
	siblings []ChildRef
	// last is the deepest node whose label prefixes the target
	last *TreeNode
	// leaf is set when the target label is present
	leaf *TreeNode
}

// descend walks the tree at epoch from the root towards l.
func (a *Azks) descend(ctx context.Context, l label.Label, epoch uint64) (*path, error) {
	n, err := a.getNode(ctx, label.Root, epoch)
	if err != nil {
		return nil, err
	}
	p := new(path)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if n.Kind == Leaf {
			if n.Label != l {
				return nil, ErrCorruptNode.withf("leaf %s on the path of %s", n.Label, l)
			}
			p.leaf = n
			return p, nil
		}
		b := l.Bit(n.Label.Len)
		c := n.Children[b]
		if c.IsEmpty() || !c.Label.IsPrefixOf(l) {
			p.last = n
			return p, nil
		}
		child, err := a.getNode(ctx, c.Label, epoch)
		if err != nil {
			return nil, err
		}
		if child.Hash != c.Hash {
			return nil, ErrCorruptNode.withf("%s at epoch %d does not match its parent", c.Label, epoch)
		}
		p.siblings = append(p.siblings, n.Children[1-b])
		n = child
	}
}
