package azks

import (
	"sort"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/label"
)

// Verifier checks proofs against published root digests. It holds no
// tree state.
type Verifier struct {
	th        *hasher.TreeHasher
	labelBits uint32
}

// NewVerifier returns a Verifier for trees built with the given hasher
// and label length.
func NewVerifier(hasherID string, labelBits uint32) (*Verifier, error) {
	th, err := Config{HasherID: hasherID, LabelBits: labelBits}.treeHasher()
	if err != nil {
		return nil, err
	}
	return &Verifier{th: th, labelBits: labelBits}, nil
}

// Hasher returns the tree hasher of v.
func (v *Verifier) Hasher() *hasher.TreeHasher {
	return v.th
}

func (v *Verifier) checkLeafLabel(l label.Label) error {
	if l.IsEmpty() || l.Len != v.labelBits {
		return ErrMalformedProof.withf("label %s is not %d bits long", l, v.labelBits)
	}
	return nil
}

// checkRef rejects child labels no tree could contain.
func (v *Verifier) checkRef(c ChildRef) error {
	if c.IsEmpty() {
		return nil
	}
	if !c.Label.IsValid() || c.Label.Len > v.labelBits {
		return ErrMalformedProof.withf("bad label %s", c.Label)
	}
	return nil
}

// VerifyMembership checks that p proves its label and value under root.
func (v *Verifier) VerifyMembership(root crypto.Digest, p *MembershipProof) error {
	if p == nil {
		return ErrMalformedProof.withf("nil membership proof")
	}
	if err := v.checkLeafLabel(p.Label); err != nil {
		return err
	}
	leaf := ChildRef{Label: p.Label, Hash: v.th.HashLeaf(p.Label, p.Value)}
	return v.climb(root, leaf, p.Siblings)
}

// VerifyNonMembership checks that p proves its label absent under root.
func (v *Verifier) VerifyNonMembership(root crypto.Digest, p *NonMembershipProof) error {
	if p == nil {
		return ErrMalformedProof.withf("nil non-membership proof")
	}
	if err := v.checkLeafLabel(p.Label); err != nil {
		return err
	}
	w := p.Witness
	if err := v.checkRef(ChildRef{Label: w}); err != nil {
		return err
	}
	if !w.IsPrefixOf(p.Label) || w == p.Label {
		return ErrMalformedProof.withf("witness %s does not prefix %s", w, p.Label)
	}
	for b, c := range p.Children {
		if err := v.checkRef(c); err != nil {
			return err
		}
		if c.IsEmpty() {
			if w.Len != 0 {
				return ErrMalformedProof.withf("absent child below %s", w)
			}
			if c.Hash != v.th.EmptyHash() {
				return ErrMalformedProof.withf("absent child with a non-empty hash")
			}
			continue
		}
		if c.Label == w || !w.IsPrefixOf(c.Label) || int(c.Label.Bit(w.Len)) != b {
			return ErrMalformedProof.withf("child %s is not the %d-child of %s", c.Label, b, w)
		}
	}
	if w.Len != 0 && label.LongestCommonPrefix(p.Children[0].Label, p.Children[1].Label) != w {
		return ErrMalformedProof.withf("children of %s do not diverge at it", w)
	}
	if c := p.Children[p.Label.Bit(w.Len)]; !c.IsEmpty() && c.Label.IsPrefixOf(p.Label) {
		return ErrNotAbsent.withf("child %s leads to %s", c.Label, p.Label)
	}
	witness := ChildRef{Label: w, Hash: hashChildren(v.th, p.Children)}
	return v.climb(root, witness, p.Siblings)
}

// climb recomputes the root digest from cur and the siblings of the path
// above it, root first. Each parent label is the longest common prefix of
// the two children, so a sibling must branch off at the parent.
func (v *Verifier) climb(root crypto.Digest, cur ChildRef, siblings []ChildRef) error {
	for i := len(siblings) - 1; i >= 0; i-- {
		s := siblings[i]
		if err := v.checkRef(s); err != nil {
			return err
		}
		var parent label.Label
		if s.IsEmpty() {
			if i != 0 {
				return ErrMalformedProof.withf("absent sibling at depth %d", i)
			}
			if s.Hash != v.th.EmptyHash() {
				return ErrMalformedProof.withf("absent sibling with a non-empty hash")
			}
			parent = label.Root
		} else {
			parent = label.LongestCommonPrefix(cur.Label, s.Label)
		}
		if parent == cur.Label || parent == s.Label {
			return ErrMalformedProof.withf("sibling %s does not branch off %s", s.Label, cur.Label)
		}
		if parent == label.Root && i != 0 {
			return ErrMalformedProof.withf("path reaches the root at depth %d", i)
		}
		var children [2]ChildRef
		b := cur.Label.Bit(parent.Len)
		children[b], children[1-b] = cur, s
		cur = ChildRef{Label: parent, Hash: hashChildren(v.th, children)}
	}
	if cur.Label != label.Root {
		return ErrMalformedProof.withf("path ends at %s", cur.Label)
	}
	if cur.Hash != root {
		return ErrRootMismatch
	}
	return nil
}

// rootOf returns the root digest of the tree made of the disjoint
// subtrees refs.
func (v *Verifier) rootOf(refs []ChildRef) (crypto.Digest, error) {
	for _, c := range refs {
		if c.IsEmpty() {
			return crypto.Digest{}, ErrMalformedProof.withf("absent subtree")
		}
		if err := v.checkRef(c); err != nil {
			return crypto.Digest{}, err
		}
	}
	sorted := append([]ChildRef(nil), refs...)
	sort.Slice(sorted, func(i, j int) bool {
		return label.Compare(sorted[i].Label, sorted[j].Label) < 0
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Label.IsPrefixOf(sorted[i].Label) {
			return crypto.Digest{}, ErrMalformedProof.withf("subtrees %s and %s overlap",
				sorted[i-1].Label, sorted[i].Label)
		}
	}
	children := [2]ChildRef{emptyRef(v.th), emptyRef(v.th)}
	for b, part := range splitRefs(sorted, 0) {
		if len(part) > 0 {
			children[b] = v.subtreeOf(part)
		}
	}
	return hashChildren(v.th, children), nil
}

// subtreeOf folds sorted, prefix-free refs into their common ancestor.
func (v *Verifier) subtreeOf(refs []ChildRef) ChildRef {
	if len(refs) == 1 {
		return refs[0]
	}
	p := label.LongestCommonPrefix(refs[0].Label, refs[len(refs)-1].Label)
	parts := splitRefs(refs, p.Len)
	children := [2]ChildRef{v.subtreeOf(parts[0]), v.subtreeOf(parts[1])}
	return ChildRef{Label: p, Hash: hashChildren(v.th, children)}
}

func splitRefs(refs []ChildRef, depth uint32) [2][]ChildRef {
	i := sort.Search(len(refs), func(i int) bool {
		return refs[i].Label.Bit(depth) == 1
	})
	return [2][]ChildRef{refs[:i], refs[i:]}
}
