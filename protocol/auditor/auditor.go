// This module implements a generic auditor, i.e. the
// functionality that clients and auditors need to verify
// that a directory's epoch hashes form an append-only history.

package auditor

import (
	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
	p "github.com/coniks-sys/akd-go/protocol"
)

// Auditor tracks the verified epoch hashes of a specific directory.
// It is not safe for concurrent use.
type Auditor struct {
	verifier *azks.Verifier
	verified p.EpochHash
	// trusted is the old verified epoch hash, which is the value
	// of verified before it gets updated.
	trusted p.EpochHash
	roots   map[uint64]crypto.Digest
}

// New instantiates an auditor pinned to the trusted epoch hash of a
// directory with the given policies.
func New(policies *p.Policies, trusted p.EpochHash) (*Auditor, error) {
	v, err := policies.Verifier()
	if err != nil {
		return nil, err
	}
	return &Auditor{
		verifier: v,
		verified: trusted,
		trusted:  trusted,
		roots:    map[uint64]crypto.Digest{trusted.Epoch: trusted.Root},
	}, nil
}

// Verified returns the latest verified epoch hash.
func (a *Auditor) Verified() p.EpochHash {
	return a.verified
}

// Trusted returns the previous verified epoch hash, which is the value
// of Verified() before the last successful Update.
func (a *Auditor) Trusted() p.EpochHash {
	return a.trusted
}

// Roots returns a copy of every verified root, by epoch.
func (a *Auditor) Roots() map[uint64]crypto.Digest {
	roots := make(map[uint64]crypto.Digest, len(a.roots))
	for e, r := range a.roots {
		roots[e] = r
	}
	return roots
}

// Update verifies that the tree at pr.End extends the verified one and
// makes pr.End the verified epoch hash. The verified state does not
// change if a check fails.
func (a *Auditor) Update(pr *p.AuditProof) error {
	if pr == nil || pr.Proof == nil {
		return azks.ErrMalformedProof
	}
	switch {
	case pr.Start.Epoch != a.verified.Epoch:
		return p.CheckBadEpoch
	case pr.Start.Root != a.verified.Root:
		return p.CheckBadEpochHash
	case pr.End.Epoch <= pr.Start.Epoch,
		pr.Proof.Start != pr.Start.Epoch,
		pr.Proof.End != pr.End.Epoch:
		return p.CheckBadEpoch
	}
	if err := a.verifier.VerifyAppendOnly(pr.Start.Root, pr.End.Root, pr.Proof); err != nil {
		return err
	}
	a.trusted = a.verified
	a.verified = pr.End
	a.roots[pr.End.Epoch] = pr.End.Root
	return nil
}

// Audit checks an epoch hash received from elsewhere, e.g. by a client,
// against the verified history to detect equivocation.
func (a *Auditor) Audit(eh p.EpochHash) error {
	root, ok := a.roots[eh.Epoch]
	if !ok {
		return p.CheckUnverifiedEpoch
	}
	if root != eh.Root {
		return p.CheckBadEpochHash
	}
	return nil
}
