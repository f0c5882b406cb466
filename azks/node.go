package azks

import (
	"encoding/binary"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/label"
)

// NodeKind distinguishes leaves, interior nodes and the root.
type NodeKind uint8

const (
	// Leaf holds an inserted element.
	Leaf NodeKind = iota + 1
	// Interior has exactly two non-empty children.
	Interior
	// Root is the interior node at label.Root; its children may be absent.
	Root
)

func (k NodeKind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Interior:
		return "interior"
	case Root:
		return "root"
	}
	return "unknown"
}

// Element is one (label, value) pair to insert. The value digest is
// opaque to the tree, but an update must change it: history proofs
// reject consecutive versions with the same value.
type Element struct {
	Label label.Label
	Value crypto.Digest
}

// ChildRef is the (label, hash) pair a parent keeps for each child.
// An absent child has label.Empty and the empty hash.
type ChildRef struct {
	Label label.Label
	Hash  crypto.Digest
}

func emptyRef(th *hasher.TreeHasher) ChildRef {
	return ChildRef{Label: label.Empty, Hash: th.EmptyHash()}
}

// IsEmpty reports whether r refers to an absent child.
func (r ChildRef) IsEmpty() bool {
	return r.Label.IsEmpty()
}

// TreeNode is one stored version of a trie node. Children are indexed by
// bit: Children[0] is the 0-bit (left) branch.
type TreeNode struct {
	Label     label.Label
	Kind      NodeKind
	LastEpoch uint64
	Value     crypto.Digest // leaves only
	Hash      crypto.Digest
	Children  [2]ChildRef // interior and root only
}

// Ref returns the reference a parent keeps for n.
func (n *TreeNode) Ref() ChildRef {
	return ChildRef{Label: n.Label, Hash: n.Hash}
}

func newLeaf(th *hasher.TreeHasher, e Element, epoch uint64) *TreeNode {
	return &TreeNode{
		Label:     e.Label,
		Kind:      Leaf,
		LastEpoch: epoch,
		Value:     e.Value,
		Hash:      th.HashLeaf(e.Label, e.Value),
	}
}

func newInterior(th *hasher.TreeHasher, l label.Label, kind NodeKind,
	children [2]ChildRef, epoch uint64) *TreeNode {
	return &TreeNode{
		Label:     l,
		Kind:      kind,
		LastEpoch: epoch,
		Children:  children,
		Hash:      hashChildren(th, children),
	}
}

func hashChildren(th *hasher.TreeHasher, c [2]ChildRef) crypto.Digest {
	return th.HashInterior(c[0].Label, c[0].Hash, c[1].Label, c[1].Hash)
}

const (
	leafNodeSize     = 1 + 8 + 2*crypto.HashSizeByte
	interiorNodeSize = 1 + 8 + crypto.HashSizeByte + 2*(label.EncodedSize+crypto.HashSizeByte)
)

// serialize encodes n without its label, which is part of the storage key:
// kind + lastEpoch + hash + (value | 2 * (child label + child hash)).
func (n *TreeNode) serialize() []byte {
	size := interiorNodeSize
	if n.Kind == Leaf {
		size = leafNodeSize
	}
	buf := make([]byte, 0, size)
	buf = append(buf, byte(n.Kind))
	buf = binary.BigEndian.AppendUint64(buf, n.LastEpoch)
	buf = append(buf, n.Hash[:]...)
	if n.Kind == Leaf {
		return append(buf, n.Value[:]...)
	}
	for _, c := range n.Children {
		buf = append(buf, c.Label.Encode()...)
		buf = append(buf, c.Hash[:]...)
	}
	return buf
}

func deserializeNode(l label.Label, buf []byte) (*TreeNode, error) {
	if len(buf) < 1 {
		return nil, ErrCorruptNode.withf("empty record for %s", l)
	}
	n := &TreeNode{Label: l, Kind: NodeKind(buf[0])}
	switch n.Kind {
	case Leaf:
		if len(buf) != leafNodeSize {
			return nil, ErrCorruptNode.withf("leaf %s has %d bytes", l, len(buf))
		}
	case Interior, Root:
		if len(buf) != interiorNodeSize {
			return nil, ErrCorruptNode.withf("node %s has %d bytes", l, len(buf))
		}
	default:
		return nil, ErrCorruptNode.withf("node %s has kind %d", l, buf[0])
	}
	buf = buf[1:]
	n.LastEpoch = binary.BigEndian.Uint64(buf[:8])
	buf = buf[8:]
	copy(n.Hash[:], buf[:crypto.HashSizeByte])
	buf = buf[crypto.HashSizeByte:]
	if n.Kind == Leaf {
		copy(n.Value[:], buf)
		return n, nil
	}
	for i := range n.Children {
		cl, err := label.Decode(buf[:label.EncodedSize])
		if err != nil {
			return nil, ErrCorruptNode.withf("child of %s: %w", l, err)
		}
		buf = buf[label.EncodedSize:]
		n.Children[i].Label = cl
		copy(n.Children[i].Hash[:], buf[:crypto.HashSizeByte])
		buf = buf[crypto.HashSizeByte:]
	}
	return n, nil
}
