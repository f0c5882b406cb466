// Defines the proofs a directory returns to
// clients and auditors.

package protocol

import (
	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
)

// EpochHash is the root digest the directory published for an epoch.
type EpochHash struct {
	Epoch uint64
	Root  crypto.Digest
}

// LabelProof proves that a label was computed from a name with the
// directory's VRF key.
type LabelProof struct {
	Output []byte
	Proof  []byte
}

// UpdateProof opens the leaf value of one version of a name.
type UpdateProof struct {
	Version   uint64
	Epoch     uint64
	PrevEpoch uint64
	Value     []byte
	Salt      []byte
}

// A LookupProof proves the latest version of a name at Epoch.
type LookupProof struct {
	Epoch      uint64
	Name       string
	VRF        LabelProof
	Update     UpdateProof
	Membership *azks.MembershipProof
}

// An AbsenceProof proves that a name has no version at Epoch.
type AbsenceProof struct {
	Epoch         uint64
	Name          string
	VRF           LabelProof
	NonMembership *azks.NonMembershipProof
}

// A HistoryProof proves the versions of a name selected by a
// azks.HistoryParams. Updates[i] opens Tree.Versions[i].
type HistoryProof struct {
	Name    string
	VRF     LabelProof
	Updates []UpdateProof
	Tree    *azks.HistoryProof
}

// An AuditProof proves that the tree at End.Epoch extends the tree
// at Start.Epoch.
type AuditProof struct {
	Start EpochHash
	End   EpochHash
	Proof *azks.AppendOnlyProof
}
