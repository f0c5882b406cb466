package azks

import (
	"context"
	"errors"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// UpdatedLeaf is a leaf whose hash changed between two epochs.
type UpdatedLeaf struct {
	Label label.Label
	Old   crypto.Digest
	New   crypto.Digest
}

// AppendOnlyProof shows that the tree at End extends the tree at Start.
// Unchanged are the maximal subtrees of the End tree untouched since
// Start; Updated and Inserted are the leaves written in (Start, End].
type AppendOnlyProof struct {
	Start     uint64
	End       uint64
	Unchanged []ChildRef
	Updated   []UpdatedLeaf
	Inserted  []ChildRef
}

// GetAppendOnlyProof proves that the tree at end extends the tree at start.
func (a *Azks) GetAppendOnlyProof(ctx context.Context, start, end uint64) (*AppendOnlyProof, error) {
	if start >= end {
		return nil, ErrBadEpochRange.withf("%d -> %d", start, end)
	}
	if err := a.checkEpoch(start); err != nil {
		return nil, err
	}
	if err := a.checkEpoch(end); err != nil {
		return nil, err
	}
	root, err := a.getNode(ctx, label.Root, end)
	if err != nil {
		return nil, err
	}
	p := &AppendOnlyProof{Start: start, End: end}
	if err := a.diff(ctx, root, p); err != nil {
		return nil, err
	}
	a.metrics.Proofs.WithLabelValues(proofAppendOnly).Inc()
	return p, nil
}

// diff walks the part of the End tree changed since Start.
func (a *Azks) diff(ctx context.Context, n *TreeNode, p *AppendOnlyProof) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.Kind == Leaf {
		old, err := a.getNode(ctx, n.Label, p.Start)
		switch {
		case errors.Is(err, ErrNodeNotFound):
			p.Inserted = append(p.Inserted, n.Ref())
		case err != nil:
			return err
		default:
			p.Updated = append(p.Updated, UpdatedLeaf{Label: n.Label, Old: old.Hash, New: n.Hash})
		}
		return nil
	}
	for _, c := range n.Children {
		if c.IsEmpty() {
			continue
		}
		child, err := a.getNode(ctx, c.Label, p.End)
		if err != nil {
			return err
		}
		if child.LastEpoch <= p.Start {
			p.Unchanged = append(p.Unchanged, c)
			continue
		}
		if err := a.diff(ctx, child, p); err != nil {
			return err
		}
	}
	return nil
}

// VerifyAppendOnly replays p: the unchanged subtrees with the old leaf
// hashes must rebuild startRoot, and with the new and inserted leaves
// must rebuild endRoot.
func (v *Verifier) VerifyAppendOnly(startRoot, endRoot crypto.Digest, p *AppendOnlyProof) error {
	if p == nil || p.Start >= p.End {
		return ErrMalformedProof.withf("bad append-only proof")
	}
	seen := make(map[label.Label]bool, len(p.Updated)+len(p.Inserted))
	leaf := func(l label.Label) error {
		if err := v.checkLeafLabel(l); err != nil {
			return err
		}
		if seen[l] {
			return ErrMalformedProof.withf("leaf %s listed twice", l)
		}
		seen[l] = true
		return nil
	}

	n := len(p.Unchanged) + len(p.Updated)
	before := make([]ChildRef, 0, n)
	after := make([]ChildRef, 0, n+len(p.Inserted))
	for _, c := range p.Unchanged {
		if c.IsEmpty() || c.Label.Len == 0 || c.Label.Len > v.labelBits {
			return ErrMalformedProof.withf("bad unchanged subtree %s", c.Label)
		}
		before = append(before, c)
		after = append(after, c)
	}
	for _, u := range p.Updated {
		if err := leaf(u.Label); err != nil {
			return err
		}
		before = append(before, ChildRef{Label: u.Label, Hash: u.Old})
		after = append(after, ChildRef{Label: u.Label, Hash: u.New})
	}
	for _, c := range p.Inserted {
		if err := leaf(c.Label); err != nil {
			return err
		}
		after = append(after, c)
	}

	r, err := v.rootOf(before)
	if err != nil {
		return err
	}
	if r != startRoot {
		return ErrRootMismatch.withf("epoch %d", p.Start)
	}
	if r, err = v.rootOf(after); err != nil {
		return err
	}
	if r != endRoot {
		return ErrRootMismatch.withf("epoch %d", p.End)
	}
	return nil
}
