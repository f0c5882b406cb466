package azks

import (
	"context"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// MembershipProof shows that Label maps to Value at some epoch. Siblings
// are the references of the nodes next to the path from the root to the
// leaf, root first.
type MembershipProof struct {
	Label    label.Label
	Value    crypto.Digest
	Siblings []ChildRef
}

// NonMembershipProof shows that Label is absent at some epoch. Witness is
// the deepest node whose label prefixes Label; neither of its Children
// can lead to Label. Siblings prove the witness the way a
// MembershipProof proves a leaf.
type NonMembershipProof struct {
	Label    label.Label
	Witness  label.Label
	Children [2]ChildRef
	Siblings []ChildRef
}

// GetMembershipProof proves the value of l at epoch.
func (a *Azks) GetMembershipProof(ctx context.Context, l label.Label, epoch uint64) (*MembershipProof, error) {
	if err := a.checkLabel(l); err != nil {
		return nil, err
	}
	if err := a.checkEpoch(epoch); err != nil {
		return nil, err
	}
	p, err := a.descend(ctx, l, epoch)
	if err != nil {
		return nil, err
	}
	if p.leaf == nil {
		return nil, ErrLabelNotFound.withf("%s at epoch %d", l, epoch)
	}
	a.metrics.Proofs.WithLabelValues(proofMembership).Inc()
	return &MembershipProof{
		Label:    l,
		Value:    p.leaf.Value,
		Siblings: p.siblings,
	}, nil
}

// GetNonMembershipProof proves that l is absent at epoch.
func (a *Azks) GetNonMembershipProof(ctx context.Context, l label.Label, epoch uint64) (*NonMembershipProof, error) {
	if err := a.checkLabel(l); err != nil {
		return nil, err
	}
	if err := a.checkEpoch(epoch); err != nil {
		return nil, err
	}
	p, err := a.descend(ctx, l, epoch)
	if err != nil {
		return nil, err
	}
	if p.leaf != nil {
		return nil, ErrLabelPresent.withf("%s at epoch %d", l, epoch)
	}
	a.metrics.Proofs.WithLabelValues(proofNonMembership).Inc()
	return &NonMembershipProof{
		Label:    l,
		Witness:  p.last.Label,
		Children: p.last.Children,
		Siblings: p.siblings,
	}, nil
}
