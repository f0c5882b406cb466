package hasher

import (
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// Domain separation tags of the tree hashing rules. They are part of the
// commitment format; changing any of them changes every root.
const (
	EmptyTag    = "akd.empty.v1"
	LeafTag     = "akd.leaf.v1"
	InteriorTag = "akd.interior.v1"
)

// TreeHasher computes node commitments with the wrapped Hasher:
//
//	empty    = H(EmptyTag)
//	leaf     = H(LeafTag || label || value)
//	interior = H(InteriorTag || left.hash || left.label || right.hash || right.label)
//
// where labels use label.Encode (4-byte big-endian bit length followed by
// 32 value bytes). An absent child is (EmptyHash, label.Empty).
type TreeHasher struct {
	Hasher
	empty crypto.Digest
}

// NewTreeHasher wraps h.
func NewTreeHasher(h Hasher) *TreeHasher {
	th := &TreeHasher{Hasher: h}
	th.empty = th.sum([]byte(EmptyTag))
	return th
}

func (th *TreeHasher) sum(ms ...[]byte) crypto.Digest {
	var d crypto.Digest
	copy(d[:], th.Digest(ms...))
	return d
}

// Sum hashes ms into a Digest.
func (th *TreeHasher) Sum(ms ...[]byte) crypto.Digest {
	return th.sum(ms...)
}

// EmptyHash returns the commitment of an absent subtree.
func (th *TreeHasher) EmptyHash() crypto.Digest {
	return th.empty
}

// HashLeaf computes the commitment of the leaf at l holding value.
func (th *TreeHasher) HashLeaf(l label.Label, value crypto.Digest) crypto.Digest {
	return th.sum([]byte(LeafTag), l.Encode(), value[:])
}

// HashInterior computes the commitment of an interior node from its
// children, left (0-bit) first.
func (th *TreeHasher) HashInterior(leftLabel label.Label, leftHash crypto.Digest,
	rightLabel label.Label, rightHash crypto.Digest) crypto.Digest {
	return th.sum(
		[]byte(InteriorTag),
		leftHash[:],
		leftLabel.Encode(),
		rightHash[:],
		rightLabel.Encode(),
	)
}
