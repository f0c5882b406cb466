package auditor

import (
	"context"
	"errors"
	"testing"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/protocol/directory"
)

func publish(t *testing.T, d *directory.Directory, names ...string) protocol.EpochHash {
	var updates []directory.Update
	for _, n := range names {
		updates = append(updates, directory.Update{Name: n, Value: []byte("key of " + n)})
	}
	eh, err := d.Publish(context.Background(), updates)
	if err != nil {
		t.Fatal(err)
	}
	return eh
}

func newAuditor(t *testing.T, d *directory.Directory, epoch uint64) *Auditor {
	eh, err := d.EpochHash(context.Background(), epoch)
	if err != nil {
		t.Fatal(err)
	}
	aud, err := New(d.Policies(), eh)
	if err != nil {
		t.Fatal(err)
	}
	return aud
}

func audit(t *testing.T, d *directory.Directory, start, end uint64) *protocol.AuditProof {
	pr, err := d.Audit(context.Background(), start, end)
	if err != nil {
		t.Fatal(err)
	}
	return pr
}

func TestAuditChain(t *testing.T) {
	d, _ := directory.NewTestDirectory(t)
	aud := newAuditor(t, d, 0)

	publish(t, d, "alice", "bob")
	publish(t, d, "carol")
	eh := publish(t, d, "alice", "dave")

	if err := aud.Update(audit(t, d, 0, 1)); err != nil {
		t.Fatal(err)
	}
	// a range may skip epochs
	if err := aud.Update(audit(t, d, 1, 3)); err != nil {
		t.Fatal(err)
	}
	if aud.Verified() != eh {
		t.Fatal("Unexpected verified epoch hash", "want", eh, "got", aud.Verified())
	}
	if aud.Trusted().Epoch != 1 {
		t.Fatal("Unexpected trusted epoch", "want", 1, "got", aud.Trusted().Epoch)
	}
	roots := aud.Roots()
	if len(roots) != 3 {
		t.Fatal("Expect roots for epochs 0, 1 and 3", "got", roots)
	}
	if _, ok := roots[2]; ok {
		t.Error("Skipped epoch should not be verified")
	}
	if err := aud.Audit(eh); err != nil {
		t.Error(err)
	}
}

func TestAuditBadEpochs(t *testing.T) {
	d, _ := directory.NewTestDirectory(t)
	aud := newAuditor(t, d, 0)
	publish(t, d, "alice")
	publish(t, d, "bob")

	// not starting at the verified epoch
	if err := aud.Update(audit(t, d, 1, 2)); err != protocol.CheckBadEpoch {
		t.Error("Expect", protocol.CheckBadEpoch, "got", err)
	}

	pr := audit(t, d, 0, 2)
	pr.End.Epoch = 1
	if err := aud.Update(pr); err != protocol.CheckBadEpoch {
		t.Error("Expect", protocol.CheckBadEpoch, "got", err)
	}

	if err := aud.Update(nil); !errors.Is(err, azks.ErrMalformedProof) {
		t.Error("Expect", azks.ErrMalformedProof, "got", err)
	}
	if aud.Verified().Epoch != 0 {
		t.Fatal("Failed updates must not move the verified epoch")
	}
}

func TestAuditForkedHistory(t *testing.T) {
	d, _ := directory.NewTestDirectory(t)
	aud := newAuditor(t, d, 0)
	publish(t, d, "alice")
	if err := aud.Update(audit(t, d, 0, 1)); err != nil {
		t.Fatal(err)
	}

	// a second directory with another epoch 1 and the same keys
	forked, _ := directory.NewTestDirectory(t)
	publish(t, forked, "mallory")
	publish(t, forked, "alice")
	pr := audit(t, forked, 1, 2)
	if err := aud.Update(pr); err != protocol.CheckBadEpochHash {
		t.Error("Expect", protocol.CheckBadEpochHash, "got", err)
	}

	// presenting the verified start with a forged end root
	publish(t, d, "bob")
	pr = audit(t, d, 1, 2)
	pr.End.Root[0] ^= 1
	if err := aud.Update(pr); !errors.Is(err, azks.ErrRootMismatch) {
		t.Error("Expect", azks.ErrRootMismatch, "got", err)
	}

	// equivocation: a client saw another root for epoch 1
	seen, err := forked.EpochHash(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := aud.Audit(seen); err != protocol.CheckBadEpochHash {
		t.Error("Expect", protocol.CheckBadEpochHash, "got", err)
	}
	if err := aud.Audit(protocol.EpochHash{Epoch: 7}); err != protocol.CheckUnverifiedEpoch {
		t.Error("Expect", protocol.CheckUnverifiedEpoch, "got", err)
	}
}
