package client

import (
	"context"
	"errors"
	"testing"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/protocol/directory"
)

var ctx = context.Background()

// setup publishes alice at epochs 1, 3 and 5, bob at 2 and 3 and carol
// at 4, and returns the directory, the checks and every epoch hash.
func setup(t *testing.T) (*directory.Directory, *ConsistencyChecks, map[uint64]crypto.Digest) {
	d, _ := directory.NewTestDirectory(t)
	roots := make(map[uint64]crypto.Digest)
	for i, names := range [][]string{{"alice"}, {"bob"}, {"alice", "bob"}, {"carol"}, {"alice"}} {
		var updates []directory.Update
		for _, n := range names {
			updates = append(updates, directory.Update{Name: n, Value: []byte{byte(i)}})
		}
		eh, err := d.Publish(ctx, updates)
		if err != nil {
			t.Fatal(err)
		}
		roots[eh.Epoch] = eh.Root
	}
	cc, err := New(d.Policies())
	if err != nil {
		t.Fatal(err)
	}
	return d, cc, roots
}

func epochHash(t *testing.T, d *directory.Directory, epoch uint64) protocol.EpochHash {
	eh, err := d.EpochHash(ctx, epoch)
	if err != nil {
		t.Fatal(err)
	}
	return eh
}

func TestVerifyLookup(t *testing.T) {
	d, cc, _ := setup(t)
	eh := epochHash(t, d, 5)

	p, err := d.Lookup(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyLookup(eh, p); err != nil {
		t.Fatal(err)
	}
	past, err := d.LookupInEpoch(ctx, "bob", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyLookup(epochHash(t, d, 2), past); err != nil {
		t.Fatal(err)
	}

	if err := cc.VerifyLookup(epochHash(t, d, 4), p); err != protocol.CheckBadEpoch {
		t.Error("Expect", protocol.CheckBadEpoch, "got", err)
	}

	// the server claims another value
	forged := *p
	forged.Update.Value = []byte("mallory's key")
	if err := cc.VerifyLookup(eh, &forged); err != protocol.CheckBadCommitment {
		t.Error("Expect", protocol.CheckBadCommitment, "got", err)
	}
	forged = *p
	forged.Update.Version++
	if err := cc.VerifyLookup(eh, &forged); err != protocol.CheckBadCommitment {
		t.Error("Expect", protocol.CheckBadCommitment, "got", err)
	}

	// the server answers with bob's entry for alice
	bob, err := d.Lookup(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	forged = *bob
	forged.Name = "alice"
	if err := cc.VerifyLookup(eh, &forged); err != protocol.CheckBadVRFProof {
		t.Error("Expect", protocol.CheckBadVRFProof, "got", err)
	}
	forged = *p
	forged.VRF.Output = append([]byte{}, p.VRF.Output...)
	forged.VRF.Output[0] ^= 1
	if err := cc.VerifyLookup(eh, &forged); err != protocol.CheckBadVRFProof {
		t.Error("Expect", protocol.CheckBadVRFProof, "got", err)
	}

	// a different root
	bad := eh
	bad.Root[3] ^= 1
	if err := cc.VerifyLookup(bad, p); !errors.Is(err, azks.ErrRootMismatch) {
		t.Error("Expect", azks.ErrRootMismatch, "got", err)
	}
	if err := cc.VerifyLookup(eh, nil); !errors.Is(err, azks.ErrMalformedProof) {
		t.Error("Expect", azks.ErrMalformedProof, "got", err)
	}
}

func TestVerifyAbsence(t *testing.T) {
	d, cc, _ := setup(t)
	eh := epochHash(t, d, 5)

	p, err := d.ProveAbsence(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyAbsence(eh, p); err != nil {
		t.Fatal(err)
	}
	p0, err := d.ProveAbsenceInEpoch(ctx, "carol", 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyAbsence(epochHash(t, d, 3), p0); err != nil {
		t.Fatal(err)
	}
	// carol's absence at 3 says nothing about epoch 5
	if err := cc.VerifyAbsence(eh, p0); err != protocol.CheckBadEpoch {
		t.Error("Expect", protocol.CheckBadEpoch, "got", err)
	}

	// dave's absence proof cannot be replayed for alice
	forged := *p
	forged.Name = "alice"
	if err := cc.VerifyAbsence(eh, &forged); err != protocol.CheckBadVRFProof {
		t.Error("Expect", protocol.CheckBadVRFProof, "got", err)
	}
}

func TestVerifyHistory(t *testing.T) {
	d, cc, roots := setup(t)
	for _, params := range []azks.HistoryParams{
		azks.Complete(), azks.MostRecent(1), azks.MostRecent(2), azks.MostRecent(5),
		azks.SinceEpoch(2), azks.SinceEpoch(5), azks.SinceEpoch(0),
	} {
		p, err := d.KeyHistory(ctx, "alice", params)
		if err != nil {
			t.Fatal(params, err)
		}
		if err := cc.VerifyHistory(params, roots, p); err != nil {
			t.Error(params, err)
		}
	}
}

func dropOldest(p *protocol.HistoryProof) *protocol.HistoryProof {
	tree := *p.Tree
	tree.Versions = tree.Versions[1:]
	return &protocol.HistoryProof{Name: p.Name, VRF: p.VRF, Updates: p.Updates[1:], Tree: &tree}
}

func TestVerifyHistoryHiddenVersions(t *testing.T) {
	d, cc, roots := setup(t)

	// a complete history must start at version 1
	p, err := d.KeyHistory(ctx, "alice", azks.Complete())
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyHistory(azks.Complete(), roots, dropOldest(p)); err != protocol.CheckBadVersions {
		t.Error("Expect", protocol.CheckBadVersions, "got", err)
	}

	// fewer than n versions although older ones exist
	p, err = d.KeyHistory(ctx, "alice", azks.MostRecent(2))
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyHistory(azks.MostRecent(2), roots, dropOldest(p)); err != protocol.CheckBadVersions {
		t.Error("Expect", protocol.CheckBadVersions, "got", err)
	}

	// version 2 was written at epoch 3, inside the selection
	p, err = d.KeyHistory(ctx, "alice", azks.SinceEpoch(3))
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyHistory(azks.SinceEpoch(3), roots, dropOldest(p)); err != protocol.CheckBadVersions {
		t.Error("Expect", protocol.CheckBadVersions, "got", err)
	}

	// hiding a middle version breaks the version chain
	p, err = d.KeyHistory(ctx, "alice", azks.Complete())
	if err != nil {
		t.Fatal(err)
	}
	tree := *p.Tree
	tree.Versions = []azks.HistoryEntry{tree.Versions[0], tree.Versions[2]}
	hidden := &protocol.HistoryProof{
		Name:    p.Name,
		VRF:     p.VRF,
		Updates: []protocol.UpdateProof{p.Updates[0], p.Updates[2]},
		Tree:    &tree,
	}
	if err := cc.VerifyHistory(azks.Complete(), roots, hidden); err != protocol.CheckBadVersions {
		t.Error("Expect", protocol.CheckBadVersions, "got", err)
	}

	// an opening that does not match the tree
	forged := *p
	forged.Updates = append([]protocol.UpdateProof{}, p.Updates...)
	forged.Updates[1].Value = []byte("other")
	if err := cc.VerifyHistory(azks.Complete(), roots, &forged); err != protocol.CheckBadCommitment {
		t.Error("Expect", protocol.CheckBadCommitment, "got", err)
	}
	forged.Updates = p.Updates[:2]
	if err := cc.VerifyHistory(azks.Complete(), roots, &forged); err != protocol.CheckBadVersions {
		t.Error("Expect", protocol.CheckBadVersions, "got", err)
	}

	// another name's history
	bob, err := d.KeyHistory(ctx, "bob", azks.Complete())
	if err != nil {
		t.Fatal(err)
	}
	bob.Name = "alice"
	if err := cc.VerifyHistory(azks.Complete(), roots, bob); err != protocol.CheckBadVRFProof {
		t.Error("Expect", protocol.CheckBadVRFProof, "got", err)
	}
}

// The value may start with the encoded label; moving bytes between the salt
// and the value must not open the same commitment.
func TestVerifySaltValueSplit(t *testing.T) {
	d, cc, roots := setup(t)
	absent, err := d.ProveAbsence(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	enc := absent.NonMembership.Label.Encode()
	value := append(append([]byte{}, enc...), "real key"...)
	eh, err := d.Publish(ctx, []directory.Update{{Name: "dave", Value: value}})
	if err != nil {
		t.Fatal(err)
	}
	roots[eh.Epoch] = eh.Root

	p, err := d.Lookup(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyLookup(eh, p); err != nil {
		t.Fatal(err)
	}
	salt := p.Update.Salt
	for _, split := range []protocol.UpdateProof{
		{Salt: append(append([]byte{}, salt...), enc...), Value: []byte("real key")},
		{Salt: salt[:16], Value: append(append([]byte{}, salt[16:]...), value...)},
		{Salt: nil, Value: append(append([]byte{}, salt...), value...)},
	} {
		forged := *p
		forged.Update.Salt = split.Salt
		forged.Update.Value = split.Value
		if err := cc.VerifyLookup(eh, &forged); err != protocol.CheckBadCommitment {
			t.Errorf("salt of %d bytes: expect %v, got %v", len(split.Salt), protocol.CheckBadCommitment, err)
		}
	}

	hp, err := d.KeyHistory(ctx, "dave", azks.Complete())
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyHistory(azks.Complete(), roots, hp); err != nil {
		t.Fatal(err)
	}
	hp.Updates[0].Salt = append(append([]byte{}, salt...), enc...)
	hp.Updates[0].Value = []byte("real key")
	if err := cc.VerifyHistory(azks.Complete(), roots, hp); err != protocol.CheckBadCommitment {
		t.Error("Expect", protocol.CheckBadCommitment, "got", err)
	}
}
