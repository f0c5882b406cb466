// Package vrf implements the verifiable random function that turns
// plaintext directory labels into pseudorandom tree labels.
//
// It wraps ECVRF-EDWARDS25519-SHA512-ELL2 (draft-irtf-cfrg-vrf-10) as
// implemented by curve25519-voi:
//
//	Prove_x(n)       = pi, an 80-byte proof
//	VRF_x(n)         = ProofToHash(pi), a 64-byte output
//	Verify(P, n, pi) = the output, iff pi was produced by x for n
package vrf

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"io"

	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519"
	"github.com/oasisprotocol/curve25519-voi/primitives/ed25519/extra/ecvrf"
)

const (
	// PublicKeySize is the size of a VRF public key in bytes.
	PublicKeySize = ed25519.PublicKeySize
	// PrivateKeySize is the size of a VRF private key in bytes.
	PrivateKeySize = ed25519.PrivateKeySize
	// Size is the size of a VRF output in bytes.
	Size = ecvrf.OutputSize
	// ProofSize is the size of a VRF proof in bytes.
	ProofSize = ecvrf.ProofSize
)

var (
	// ErrGetPubKey indicates the public key could not be derived.
	ErrGetPubKey = errors.New("[vrf] Couldn't get corresponding public-key from private-key")
	// ErrBadKeyLength indicates a key of the wrong size.
	ErrBadKeyLength = errors.New("[vrf] Bad key length")
)

// PrivateKey is an ed25519 private key used as an ECVRF secret.
type PrivateKey []byte

// PublicKey is the matching ed25519 public key.
type PublicKey []byte

// GenerateKey creates a public/private key pair using rnd for randomness.
// If rnd is nil, crypto/rand is used.
func GenerateKey(rnd io.Reader) (PrivateKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	_, sk, err := ed25519.GenerateKey(rnd)
	if err != nil {
		return nil, err
	}
	return PrivateKey(sk), nil
}

// NewPrivateKey checks the length of a serialized private key.
func NewPrivateKey(b []byte) (PrivateKey, error) {
	if len(b) != PrivateKeySize {
		return nil, ErrBadKeyLength
	}
	return PrivateKey(append([]byte{}, b...)), nil
}

// NewPublicKey checks the length of a serialized public key.
func NewPublicKey(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return nil, ErrBadKeyLength
	}
	return PublicKey(append([]byte{}, b...)), nil
}

// Public extracts the public VRF key from the underlying private-key
// and returns a boolean indicating if the operation was successful.
func (sk PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(sk).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}

// Compute generates the vrf value for the byte slice m using the
// underlying private key sk.
func (sk PrivateKey) Compute(m []byte) []byte {
	vrf, _ := sk.Prove(m)
	return vrf
}

// Prove returns the vrf value and a proof such that
// Verify(m, vrf, proof) == true. The vrf value is the
// same as returned by Compute(m).
func (sk PrivateKey) Prove(m []byte) (vrf, proof []byte) {
	proof = ecvrf.Prove(ed25519.PrivateKey(sk), m)
	vrf, err := ecvrf.ProofToHash(proof)
	if err != nil {
		// a proof we just produced always decodes
		panic(err)
	}
	return vrf, proof
}

// Verify returns true iff vrf=Compute(m) for the sk that
// corresponds to pk.
func (pk PublicKey) Verify(m, vrf, proof []byte) bool {
	if len(pk) != PublicKeySize || len(vrf) != Size || len(proof) != ProofSize {
		return false
	}
	ok, out := ecvrf.Verify(ed25519.PublicKey(pk), proof, m)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare(out, vrf) == 1
}
