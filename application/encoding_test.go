package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/protocol/auditor"
	"github.com/coniks-sys/akd-go/protocol/client"
	"github.com/coniks-sys/akd-go/protocol/directory"
)

var ctx = context.Background()

func publish(t *testing.T, d *directory.Directory, names ...string) protocol.EpochHash {
	var updates []directory.Update
	for _, n := range names {
		updates = append(updates, directory.Update{Name: n, Value: []byte(n)})
	}
	eh, err := d.Publish(ctx, updates)
	if err != nil {
		t.Fatal(err)
	}
	return eh
}

func roundTrip[T Proof](t *testing.T, p *T) *T {
	msg, err := MarshalProof(p)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalProof[T](msg)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestDecodedProofsVerify(t *testing.T) {
	d, _ := directory.NewTestDirectory(t)
	first := publish(t, d, "alice", "bob")
	second := publish(t, d, "alice", "carol")

	policies := roundTrip(t, d.Policies())
	if !policies.Equal(d.Policies()) {
		t.Fatal("Decoded policies differ")
	}
	cc, err := client.New(policies)
	if err != nil {
		t.Fatal(err)
	}
	eh := roundTrip(t, &second)
	if *eh != second {
		t.Fatal("Decoded epoch hash differs")
	}

	lp, err := d.Lookup(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyLookup(*eh, roundTrip(t, lp)); err != nil {
		t.Fatal(err)
	}

	ap, err := d.ProveAbsence(ctx, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if err := cc.VerifyAbsence(*eh, roundTrip(t, ap)); err != nil {
		t.Fatal(err)
	}

	hp, err := d.KeyHistory(ctx, "alice", azks.Complete())
	if err != nil {
		t.Fatal(err)
	}
	roots := map[uint64]crypto.Digest{first.Epoch: first.Root, second.Epoch: second.Root}
	if err := cc.VerifyHistory(azks.Complete(), roots, roundTrip(t, hp)); err != nil {
		t.Fatal(err)
	}

	genesis, err := d.EpochHash(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	aud, err := auditor.New(policies, genesis)
	if err != nil {
		t.Fatal(err)
	}
	for _, end := range []uint64{1, 2} {
		proof, err := d.Audit(ctx, end-1, end)
		if err != nil {
			t.Fatal(err)
		}
		if err := aud.Update(roundTrip(t, proof)); err != nil {
			t.Fatal(err)
		}
	}
	if aud.Verified() != second {
		t.Fatal("Auditor did not reach the latest epoch")
	}
}

func TestUnmarshalMalformedProof(t *testing.T) {
	for _, msg := range []string{
		`{`,
		`{"Epoch": "one"}`,
		`{"Epoch": 1, "Root": "abcd"}`,
	} {
		if _, err := UnmarshalProof[protocol.EpochHash]([]byte(msg)); !errors.Is(err, protocol.ErrMalformedRequest) {
			t.Errorf("%s: expect %v, got %v", msg, protocol.ErrMalformedRequest, err)
		}
	}
	msg := `{"Epoch": 1, "Name": "alice", "Membership": {"Label": "00"}}`
	if _, err := UnmarshalProof[protocol.LookupProof]([]byte(msg)); !errors.Is(err, protocol.ErrMalformedRequest) {
		t.Error("Expect a bad label to be rejected, got", err)
	}
}

func TestProofFile(t *testing.T) {
	d, _ := directory.NewTestDirectory(t)
	eh := publish(t, d, "alice")
	path := filepath.Join(t.TempDir(), "trusted.json")
	if err := MarshalProofToFile(&eh, path); err != nil {
		t.Fatal(err)
	}
	if err := MarshalProofToFile(&eh, path); err == nil {
		t.Fatal("Expect an error when overwriting the file")
	}
	got, err := UnmarshalProofFromFile[protocol.EpochHash](path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != eh {
		t.Fatal("Decoded epoch hash differs")
	}
}
