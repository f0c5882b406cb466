// Implements the checks a client performs on proofs
// received from a key directory: the VRF label of a name,
// the opening of its value commitments and the tree proofs
// against the epoch hashes the client trusts.

package client

import (
	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/label"
	"github.com/coniks-sys/akd-go/protocol"
)

// ConsistencyChecks verifies directory proofs against the directory's
// pinned policies. It keeps no state between calls and is safe for
// concurrent use.
type ConsistencyChecks struct {
	policies *protocol.Policies
	verifier *azks.Verifier
	th       *hasher.TreeHasher
}

// New creates the checks for a directory with the given policies.
func New(policies *protocol.Policies) (*ConsistencyChecks, error) {
	v, err := policies.Verifier()
	if err != nil {
		return nil, err
	}
	return &ConsistencyChecks{policies: policies, verifier: v, th: v.Hasher()}, nil
}

// checkLabel verifies that l is the label of name.
func (cc *ConsistencyChecks) checkLabel(name string, lp protocol.LabelProof, l label.Label) error {
	if !cc.policies.VRFPublicKey.Verify([]byte(name), lp.Output, lp.Proof) {
		return protocol.CheckBadVRFProof
	}
	if protocol.ComputeLabel(cc.th, lp.Output, cc.policies.LabelBits) != l {
		return protocol.CheckBadVRFProof
	}
	return nil
}

// VerifyLookup checks that p proves the value of p.Name at eh.
func (cc *ConsistencyChecks) VerifyLookup(eh protocol.EpochHash, p *protocol.LookupProof) error {
	if p == nil || p.Membership == nil {
		return azks.ErrMalformedProof
	}
	if p.Epoch != eh.Epoch || p.Update.Epoch > p.Epoch {
		return protocol.CheckBadEpoch
	}
	l := p.Membership.Label
	if err := cc.checkLabel(p.Name, p.VRF, l); err != nil {
		return err
	}
	if !p.Update.ValidSalt() || p.Update.LeafValue(cc.th, l) != p.Membership.Value {
		return protocol.CheckBadCommitment
	}
	return cc.verifier.VerifyMembership(eh.Root, p.Membership)
}

// VerifyAbsence checks that p proves p.Name had no version at eh.
func (cc *ConsistencyChecks) VerifyAbsence(eh protocol.EpochHash, p *protocol.AbsenceProof) error {
	if p == nil || p.NonMembership == nil {
		return azks.ErrMalformedProof
	}
	if p.Epoch != eh.Epoch {
		return protocol.CheckBadEpoch
	}
	if err := cc.checkLabel(p.Name, p.VRF, p.NonMembership.Label); err != nil {
		return err
	}
	return cc.verifier.VerifyNonMembership(eh.Root, p.NonMembership)
}

// VerifyHistory checks that p holds every version of p.Name selected by
// params, each against the root of the epoch that wrote it. roots must
// hold those epochs and p.Tree.AsOf, as verified by an auditor.
func (cc *ConsistencyChecks) VerifyHistory(params azks.HistoryParams,
	roots map[uint64]crypto.Digest, p *protocol.HistoryProof) error {
	if p == nil || p.Tree == nil {
		return azks.ErrMalformedProof
	}
	l := p.Tree.Label
	if err := cc.checkLabel(p.Name, p.VRF, l); err != nil {
		return err
	}
	if err := cc.verifier.VerifyHistory(params, roots, p.Tree); err != nil {
		return err
	}
	if len(p.Updates) != len(p.Tree.Versions) {
		return protocol.CheckBadVersions
	}
	for i, u := range p.Updates {
		v := p.Tree.Versions[i]
		if u.Epoch != v.Epoch {
			return protocol.CheckBadEpoch
		}
		if !u.ValidSalt() || u.LeafValue(cc.th, l) != v.Proof.Value {
			return protocol.CheckBadCommitment
		}
		if i > 0 {
			prev := p.Updates[i-1]
			if u.Version != prev.Version+1 || u.PrevEpoch != prev.Epoch {
				return protocol.CheckBadVersions
			}
		}
	}
	return checkOldestVersion(params, p.Updates)
}

// checkOldestVersion rejects a history that leaves out selected versions
// older than its first update.
func checkOldestVersion(params azks.HistoryParams, updates []protocol.UpdateProof) error {
	first := updates[0]
	switch {
	case first.Version == 0:
		return protocol.CheckBadVersions
	case first.Version == 1:
		if first.PrevEpoch != 0 {
			return protocol.CheckBadVersions
		}
		return nil
	case first.PrevEpoch == 0 || first.PrevEpoch >= first.Epoch:
		return protocol.CheckBadVersions
	}
	if n := params.Limit(); n > 0 {
		if len(updates) != n {
			return protocol.CheckBadVersions
		}
		return nil
	}
	// the previous version must predate the selection
	if first.PrevEpoch >= params.Since() {
		return protocol.CheckBadVersions
	}
	return nil
}
