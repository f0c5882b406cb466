package azks

import (
	"context"
	"sort"
	"time"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// InsertMode selects how much history a batch insertion keeps.
type InsertMode int

const (
	// DirectoryMode keeps every node version, so any epoch can be proven.
	DirectoryMode InsertMode = iota
	// BulkMode deletes the versions it supersedes. Roots are identical
	// to DirectoryMode, but earlier epochs can no longer be proven.
	BulkMode
)

func (m InsertMode) String() string {
	if m == BulkMode {
		return "bulk"
	}
	return "directory"
}

// BatchInsert inserts elems as one new epoch and returns its root digest.
// Labels already in the tree get a new leaf version, which must carry a
// different value (ErrUnchangedValue otherwise). records are written
// in the same atomic commit; their keys must not use the tree's prefixes.
// On error nothing is written and the epoch is unchanged.
func (a *Azks) BatchInsert(ctx context.Context, elems []Element, mode InsertMode,
	records ...Record) (crypto.Digest, error) {
	start := time.Now()
	root, err := a.batchInsert(ctx, elems, mode, records)
	if err != nil {
		a.metrics.FailedInsertions.Inc()
		a.logger.Debug("batch insertion failed", "epoch", a.LatestEpoch()+1, "error", err)
		return crypto.Digest{}, err
	}
	a.metrics.InsertSeconds.Observe(time.Since(start).Seconds())
	return root, nil
}

func (a *Azks) batchInsert(ctx context.Context, elems []Element, mode InsertMode,
	records []Record) (crypto.Digest, error) {
	sorted, err := a.prepare(elems, records)
	if err != nil {
		return crypto.Digest{}, err
	}

	cur := a.LatestEpoch()
	ins := &inserter{a: a, epoch: cur, next: cur + 1}
	if err := ins.preload(ctx, sorted); err != nil {
		return crypto.Digest{}, err
	}
	root, err := ins.node(ctx, label.Root)
	if err != nil {
		return crypto.Digest{}, err
	}
	res, err := ins.split(ctx, root.Label, Root, root.Children, sorted, root)
	if err != nil {
		return crypto.Digest{}, err
	}
	if err := ctx.Err(); err != nil {
		return crypto.Digest{}, err
	}

	st := State{
		Epoch:         ins.next,
		NumNodes:      a.NumNodes() + res.created,
		PrunedThrough: a.PrunedThrough(),
		LabelBits:     a.labelBits,
		HasherID:      a.hasherID,
	}
	cs := &CommitSet{Root: res.ref.Hash, Nodes: res.nodes, Records: records}
	if mode == BulkMode {
		st.PrunedThrough = ins.next
		cs.Superseded = res.superseded
	}
	cs.State = st
	// the pruning point moves before the deletion becomes visible
	prevPruned := a.PrunedThrough()
	a.prunedThrough.Store(st.PrunedThrough)
	if err := a.store.Commit(ctx, cs); err != nil {
		a.prunedThrough.Store(prevPruned)
		return crypto.Digest{}, err
	}

	a.numNodes.Store(st.NumNodes)
	a.epoch.Store(st.Epoch)

	a.metrics.Epoch.Set(float64(st.Epoch))
	a.metrics.Nodes.Set(float64(st.NumNodes))
	a.metrics.InsertedElements.Add(float64(len(sorted)))
	a.metrics.NodesWritten.Add(float64(len(res.nodes)))
	a.logger.Debug("committed epoch", "epoch", st.Epoch, "elements", len(sorted),
		"nodesWritten", len(res.nodes), "mode", mode, "root", res.ref.Hash)
	return res.ref.Hash, nil
}

// prepare validates a batch and returns its elements sorted by label.
func (a *Azks) prepare(elems []Element, records []Record) ([]Element, error) {
	if len(elems) == 0 {
		return nil, ErrEmptyBatch
	}
	for _, e := range elems {
		if err := a.checkLabel(e.Label); err != nil {
			return nil, err
		}
	}
	for _, r := range records {
		if isReservedKey(r.Key) {
			return nil, ErrReservedKey.withf("key %x", r.Key)
		}
	}
	sorted := append([]Element(nil), elems...)
	sort.Slice(sorted, func(i, j int) bool {
		return label.Compare(sorted[i].Label, sorted[j].Label) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Label == sorted[i-1].Label {
			return nil, ErrDuplicateLabel.withf("%s", sorted[i].Label)
		}
	}
	return sorted, nil
}

// subtree is what one recursion step hands back to its parent.
type subtree struct {
	ref        ChildRef
	nodes      []*TreeNode
	superseded []NodeVersion
	created    uint64
}

func (s *subtree) absorb(o *subtree) {
	s.nodes = append(s.nodes, o.nodes...)
	s.superseded = append(s.superseded, o.superseded...)
	s.created += o.created
}

// inserter carries one batch insertion. loaded is read-only once
// preload returns, so recursion steps share it without locking.
type inserter struct {
	a      *Azks
	epoch  uint64
	next   uint64
	loaded map[label.Label]*TreeNode
}

func (ins *inserter) node(ctx context.Context, l label.Label) (*TreeNode, error) {
	if n, ok := ins.loaded[l]; ok {
		return n, nil
	}
	return ins.a.store.GetNode(ctx, l, ins.epoch)
}

// partition splits sorted elements sharing a prefix of depth bits by
// their bit at depth.
func partition(elems []Element, depth uint32) [2][]Element {
	i := sort.Search(len(elems), func(i int) bool {
		return elems[i].Label.Bit(depth) == 1
	})
	return [2][]Element{elems[:i], elems[i:]}
}

func commonPrefix(elems []Element) label.Label {
	return label.LongestCommonPrefix(elems[0].Label, elems[len(elems)-1].Label)
}

// preload reads, level by level, every node the insertion will visit.
func (ins *inserter) preload(ctx context.Context, elems []Element) error {
	type job struct {
		l     label.Label
		elems []Element
	}
	ins.loaded = make(map[label.Label]*TreeNode)
	frontier := []job{{label.Root, elems}}
	for len(frontier) > 0 {
		ls := make([]label.Label, len(frontier))
		for i, j := range frontier {
			ls[i] = j.l
		}
		got, err := ins.a.store.BatchGetNodes(ctx, ls, ins.epoch)
		if err != nil {
			return err
		}
		var next []job
		for _, j := range frontier {
			n, ok := got[j.l]
			if !ok {
				return ErrNodeNotFound.withf("%s at epoch %d", j.l, ins.epoch)
			}
			ins.loaded[j.l] = n
			if n.Kind == Leaf || !n.Label.IsPrefixOf(commonPrefix(j.elems)) {
				continue
			}
			for b, part := range partition(j.elems, n.Label.Len) {
				if c := n.Children[b]; len(part) > 0 && !c.IsEmpty() {
					next = append(next, job{c.Label, part})
				}
			}
		}
		frontier = next
	}
	return nil
}

// insert places elems, which all belong below slot, and returns the
// subtree that replaces slot.
func (ins *inserter) insert(ctx context.Context, slot ChildRef, elems []Element) (*subtree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if slot.IsEmpty() {
		return ins.build(ctx, elems)
	}
	prefix := commonPrefix(elems)
	if slot.Label.IsPrefixOf(prefix) {
		n, err := ins.node(ctx, slot.Label)
		if err != nil {
			return nil, err
		}
		if n.Kind != Leaf {
			return ins.split(ctx, n.Label, n.Kind, n.Children, elems, n)
		}
		if len(elems) != 1 {
			return nil, ErrCorruptNode.withf("leaf %s prefixes %d labels", n.Label, len(elems))
		}
		if n.Value == elems[0].Value {
			return nil, ErrUnchangedValue.withf("%s", n.Label)
		}
		leaf := newLeaf(ins.a.th, elems[0], ins.next)
		return &subtree{
			ref:        leaf.Ref(),
			nodes:      []*TreeNode{leaf},
			superseded: []NodeVersion{{n.Label, n.LastEpoch}},
		}, nil
	}
	// elems diverge from slot above it: relocate slot under a new
	// interior node at the common prefix
	p := label.LongestCommonPrefix(slot.Label, prefix)
	children := [2]ChildRef{emptyRef(ins.a.th), emptyRef(ins.a.th)}
	children[slot.Label.Bit(p.Len)] = slot
	return ins.split(ctx, p, Interior, children, elems, nil)
}

// build returns a fresh subtree holding elems.
func (ins *inserter) build(ctx context.Context, elems []Element) (*subtree, error) {
	if len(elems) == 1 {
		leaf := newLeaf(ins.a.th, elems[0], ins.next)
		return &subtree{ref: leaf.Ref(), nodes: []*TreeNode{leaf}, created: 1}, nil
	}
	children := [2]ChildRef{emptyRef(ins.a.th), emptyRef(ins.a.th)}
	return ins.split(ctx, commonPrefix(elems), Interior, children, elems, nil)
}

// split writes a new version of the interior node at p after inserting
// elems into its children. old is the version it replaces, nil for a new
// node.
func (ins *inserter) split(ctx context.Context, p label.Label, kind NodeKind,
	children [2]ChildRef, elems []Element, old *TreeNode) (*subtree, error) {
	parts := partition(elems, p.Len)
	var results [2]*subtree
	side := func(b int) func() error {
		return func() error {
			if len(parts[b]) == 0 {
				return nil
			}
			st, err := ins.insert(ctx, children[b], parts[b])
			if err != nil {
				return err
			}
			results[b] = st
			return nil
		}
	}
	n := 0
	if len(parts[0]) > 0 && len(parts[1]) > 0 {
		n = len(elems)
	}
	if err := ins.a.pool.fork(n, side(0), side(1)); err != nil {
		return nil, err
	}

	st := new(subtree)
	for b, r := range results {
		if r != nil {
			children[b] = r.ref
			st.absorb(r)
		}
	}
	node := newInterior(ins.a.th, p, kind, children, ins.next)
	st.ref = node.Ref()
	st.nodes = append(st.nodes, node)
	if old != nil {
		st.superseded = append(st.superseded, NodeVersion{old.Label, old.LastEpoch})
	} else {
		st.created++
	}
	return st, nil
}
