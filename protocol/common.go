package protocol

import (
	"encoding/binary"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// ValueTag domain-separates leaf values from the tree's own hashes.
const ValueTag = "akd.value.v1"

// ComputeLabel returns the tree label of a name from its VRF output:
// the first bits bits of H(vrfOutput).
func ComputeLabel(h crypto.Digester, vrfOutput []byte, bits uint32) label.Label {
	var d [label.Size]byte
	copy(d[:], h.Digest(vrfOutput))
	return label.FromDigest(d, bits)
}

// CommitValue computes H(salt || label || len(value) || value), the
// length 4-byte big-endian. salt must be crypto.HashSizeByte long.
func CommitValue(h crypto.Digester, salt []byte, l label.Label, value []byte) []byte {
	return crypto.OpenCommit(h, salt, l.Encode(), valueLength(value), value).Value
}

// NewValueCommit commits to value at l under a fresh random salt.
func NewValueCommit(h crypto.Digester, l label.Label, value []byte) (*crypto.Commit, error) {
	return crypto.NewCommit(h, l.Encode(), valueLength(value), value)
}

func valueLength(value []byte) []byte {
	return binary.BigEndian.AppendUint32(nil, uint32(len(value)))
}

// LeafValue computes the tree value of one version of a name:
// H(ValueTag || commitment || version || epoch || prevEpoch), integers
// 8-byte big-endian. prevEpoch is the epoch of the previous version,
// 0 for the first one.
func LeafValue(h crypto.Digester, commitment []byte, version, epoch, prevEpoch uint64) crypto.Digest {
	buf := make([]byte, 0, 24)
	buf = binary.BigEndian.AppendUint64(buf, version)
	buf = binary.BigEndian.AppendUint64(buf, epoch)
	buf = binary.BigEndian.AppendUint64(buf, prevEpoch)
	var d crypto.Digest
	copy(d[:], h.Digest([]byte(ValueTag), commitment, buf))
	return d
}

// ValueState is one stored version of a name.
type ValueState struct {
	Name      string
	Version   uint64
	Epoch     uint64
	PrevEpoch uint64
	Value     []byte
	Salt      []byte
}

// Update returns the proof material of s.
func (s *ValueState) Update() UpdateProof {
	return UpdateProof{
		Version:   s.Version,
		Epoch:     s.Epoch,
		PrevEpoch: s.PrevEpoch,
		Value:     s.Value,
		Salt:      s.Salt,
	}
}

// ValidSalt reports whether u carries a salt of the size Publish draws.
func (u *UpdateProof) ValidSalt() bool {
	return len(u.Salt) == crypto.HashSizeByte
}

// LeafValue recomputes the tree value of u for the name at l.
func (u *UpdateProof) LeafValue(h crypto.Digester, l label.Label) crypto.Digest {
	return LeafValue(h, CommitValue(h, u.Salt, l, u.Value), u.Version, u.Epoch, u.PrevEpoch)
}
