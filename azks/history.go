package azks

import (
	"context"
	"fmt"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

type historyKind int

const (
	historyComplete historyKind = iota
	historyMostRecent
	historySince
)

// HistoryParams selects which versions of a label a history proof covers.
type HistoryParams struct {
	kind  historyKind
	n     int
	since uint64
}

// Complete selects every retained version.
func Complete() HistoryParams {
	return HistoryParams{kind: historyComplete}
}

// MostRecent selects the n latest versions.
func MostRecent(n int) HistoryParams {
	return HistoryParams{kind: historyMostRecent, n: n}
}

// SinceEpoch selects the versions written at epoch e or later.
func SinceEpoch(e uint64) HistoryParams {
	return HistoryParams{kind: historySince, since: e}
}

func (hp HistoryParams) String() string {
	switch hp.kind {
	case historyMostRecent:
		return fmt.Sprintf("most-recent(%d)", hp.n)
	case historySince:
		return fmt.Sprintf("since(%d)", hp.since)
	}
	return "complete"
}

// Limit returns n for MostRecent(n) and 0 otherwise.
func (hp HistoryParams) Limit() int {
	if hp.kind == historyMostRecent {
		return hp.n
	}
	return 0
}

// Since returns e for SinceEpoch(e) and 0 otherwise.
func (hp HistoryParams) Since() uint64 {
	if hp.kind == historySince {
		return hp.since
	}
	return 0
}

func (hp HistoryParams) validate() error {
	if hp.kind == historyMostRecent && hp.n <= 0 {
		return ErrBadHistoryParams.withf("%s", hp)
	}
	return nil
}

// filter applies hp to increasing version epochs.
func (hp HistoryParams) filter(epochs []uint64) []uint64 {
	switch hp.kind {
	case historyMostRecent:
		if len(epochs) > hp.n {
			return epochs[len(epochs)-hp.n:]
		}
	case historySince:
		for i, e := range epochs {
			if e >= hp.since {
				return epochs[i:]
			}
		}
		return nil
	}
	return epochs
}

// HistoryEntry is the membership proof of one version against the root
// of the epoch that wrote it.
type HistoryEntry struct {
	Epoch uint64
	Proof *MembershipProof
}

// HistoryProof proves the versions of Label, oldest first, and that the
// last of them is still current at AsOf.
type HistoryProof struct {
	Label    label.Label
	AsOf     uint64
	Versions []HistoryEntry
	Current  *MembershipProof
}

// Epochs returns the version epochs covered by p.
func (p *HistoryProof) Epochs() []uint64 {
	epochs := make([]uint64, len(p.Versions))
	for i, v := range p.Versions {
		epochs[i] = v.Epoch
	}
	return epochs
}

// GetHistoryProof proves the versions of l selected by params, as of epoch asOf.
func (a *Azks) GetHistoryProof(ctx context.Context, l label.Label, params HistoryParams,
	asOf uint64) (*HistoryProof, error) {
	if err := a.checkLabel(l); err != nil {
		return nil, err
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	if err := a.checkEpoch(asOf); err != nil {
		return nil, err
	}
	all, err := a.store.NodeVersions(ctx, l)
	if err != nil {
		return nil, err
	}
	var epochs []uint64
	for _, e := range all {
		if e <= asOf {
			epochs = append(epochs, e)
		}
	}
	epochs = params.filter(epochs)
	if len(epochs) == 0 {
		return nil, ErrLabelNotFound.withf("no %s version of %s at epoch %d", params, l, asOf)
	}

	p := &HistoryProof{Label: l, AsOf: asOf}
	for _, e := range epochs {
		mp, err := a.GetMembershipProof(ctx, l, e)
		if err != nil {
			return nil, err
		}
		p.Versions = append(p.Versions, HistoryEntry{Epoch: e, Proof: mp})
	}
	if p.Current, err = a.GetMembershipProof(ctx, l, asOf); err != nil {
		return nil, err
	}
	a.metrics.Proofs.WithLabelValues(proofHistory).Inc()
	return p, nil
}

// VerifyHistory checks p against the published roots, which must include
// every version epoch and p.AsOf.
func (v *Verifier) VerifyHistory(params HistoryParams, roots map[uint64]crypto.Digest, p *HistoryProof) error {
	if err := params.validate(); err != nil {
		return err
	}
	if p == nil || len(p.Versions) == 0 || p.Current == nil {
		return ErrMalformedProof.withf("empty history proof")
	}
	switch params.kind {
	case historyMostRecent:
		if len(p.Versions) > params.n {
			return ErrBadHistory.withf("%d versions for %s", len(p.Versions), params)
		}
	case historySince:
		if p.Versions[0].Epoch < params.since {
			return ErrBadHistory.withf("version at epoch %d for %s", p.Versions[0].Epoch, params)
		}
	}

	check := func(epoch uint64, mp *MembershipProof) error {
		if mp == nil || mp.Label != p.Label {
			return ErrMalformedProof.withf("proof at epoch %d is not for %s", epoch, p.Label)
		}
		root, ok := roots[epoch]
		if !ok {
			return ErrMalformedProof.withf("no root for epoch %d", epoch)
		}
		return v.VerifyMembership(root, mp)
	}
	for i, e := range p.Versions {
		if i > 0 {
			prev := p.Versions[i-1]
			if e.Epoch <= prev.Epoch {
				return ErrBadHistory.withf("epoch %d after %d", e.Epoch, prev.Epoch)
			}
			if e.Proof != nil && prev.Proof != nil && e.Proof.Value == prev.Proof.Value {
				return ErrBadHistory.withf("epoch %d repeats the previous value", e.Epoch)
			}
		}
		if e.Epoch > p.AsOf {
			return ErrBadHistory.withf("epoch %d after %d", e.Epoch, p.AsOf)
		}
		if err := check(e.Epoch, e.Proof); err != nil {
			return err
		}
	}
	if err := check(p.AsOf, p.Current); err != nil {
		return err
	}
	if last := p.Versions[len(p.Versions)-1]; last.Proof.Value != p.Current.Value {
		return ErrBadHistory.withf("value at epoch %d is not the latest version", p.AsOf)
	}
	return nil
}
