package vrf

import (
	"bytes"
	"testing"
)

func TestHonestComplete(t *testing.T) {
	sk, err := GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	pk, ok := sk.Public()
	if !ok {
		t.Fatal(ErrGetPubKey)
	}
	alice := []byte("alice")
	aliceVRF := sk.Compute(alice)
	aliceVRFFromProof, aliceProof := sk.Prove(alice)

	if !pk.Verify(alice, aliceVRF, aliceProof) {
		t.Error("Gen -> Prove -> Verify -> FALSE")
	}
	if !bytes.Equal(aliceVRF, aliceVRFFromProof) {
		t.Error("Compute != Prove")
	}
	if len(aliceVRF) != Size || len(aliceProof) != ProofSize {
		t.Error("Unexpected sizes", len(aliceVRF), len(aliceProof))
	}
}

func TestDeterministic(t *testing.T) {
	sk, err := GenerateKey(bytes.NewReader([]byte("deterministic tests need 256 bit")))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(sk.Compute([]byte("bob")), sk.Compute([]byte("bob"))) {
		t.Error("VRF output is not deterministic")
	}
	if bytes.Equal(sk.Compute([]byte("bob")), sk.Compute([]byte("alice"))) {
		t.Error("Different inputs give the same output")
	}
}

func TestFlipBitForgery(t *testing.T) {
	sk, err := GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	pk, _ := sk.Public()
	alice := []byte("alice")
	aliceVRF, aliceProof := sk.Prove(alice)
	for i := 0; i < Size; i++ {
		for j := uint(0); j < 8; j++ {
			forged := append([]byte{}, aliceVRF...)
			forged[i] ^= 1 << j
			if pk.Verify(alice, forged, aliceProof) {
				t.Fatalf("forged by using aliceVRF[%d]^=%d", i, j)
			}
		}
	}
	if pk.Verify([]byte("bob"), aliceVRF, aliceProof) {
		t.Error("Proof for alice verifies for bob")
	}
}

func TestWrongKey(t *testing.T) {
	sk1, _ := GenerateKey(nil)
	sk2, _ := GenerateKey(nil)
	pk2, _ := sk2.Public()
	vrf, proof := sk1.Prove([]byte("alice"))
	if pk2.Verify([]byte("alice"), vrf, proof) {
		t.Error("Proof verifies under the wrong key")
	}
}

func TestKeyLengths(t *testing.T) {
	if _, err := NewPrivateKey(make([]byte, 10)); err != ErrBadKeyLength {
		t.Error("Expect", ErrBadKeyLength, "got", err)
	}
	if _, err := NewPublicKey(make([]byte, 10)); err != ErrBadKeyLength {
		t.Error("Expect", ErrBadKeyLength, "got", err)
	}
	sk, _ := GenerateKey(nil)
	if _, err := NewPrivateKey(sk); err != nil {
		t.Error(err)
	}
}
