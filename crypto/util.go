package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/sha3"
)

const (
	// HashSizeByte is the size of every digest in bytes.
	HashSizeByte = 32
)

// ErrBadDigestLength indicates a byte slice that cannot be
// converted to a Digest.
var ErrBadDigestLength = errors.New("[crypto] Bad digest length")

// Digest is the fixed-size output of a hasher. It is the unit of commitment
// in the tree.
type Digest [HashSizeByte]byte

// DigestFromBytes copies b into a Digest.
func DigestFromBytes(b []byte) (Digest, error) {
	var d Digest
	if len(b) != HashSizeByte {
		return d, ErrBadDigestLength
	}
	copy(d[:], b)
	return d, nil
}

// String returns the hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText encodes d as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes the hex encoding of a digest.
func (d *Digest) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return err
	}
	*d, err = DigestFromBytes(b)
	return err
}

// Digester hashes all passed byte slices. The passed slices won't be mutated.
type Digester interface {
	Digest(ms ...[]byte) []byte
}

// MakeRand returns a random slice of bytes.
// It returns an error if there was a problem while generating
// the random slice.
// It is different from the 'standard' random byte generation as it
// hashes its output before returning it; by hashing the system's
// PRNG output before it is send over the wire, we aim to make the
// random output less predictable (even if the system's PRNG isn't
// as unpredictable as desired).
// See https://trac.torproject.org/projects/tor/ticket/17694
func MakeRand() ([]byte, error) {
	r := make([]byte, HashSizeByte)
	if _, err := rand.Read(r); err != nil {
		return nil, err
	}
	// Do not directly reveal bytes from rand.Read on the wire
	h := sha3.NewShake128()
	h.Write(r)
	ret := make([]byte, HashSizeByte)
	h.Read(ret)
	return ret, nil
}

// Commit can be used to create a cryptographic commit to some value (use
// NewCommit() for this purpose.
type Commit struct {
	// Salt is a cryptographic salt which will be hashed in addition
	// to the value.
	Salt []byte
	// Value is the actual value to commit to.
	Value []byte
}

// NewCommit creates a new cryptographic commit to the passed byte slices
// stuff (which won't be mutated) using the hasher h. It creates a random
// salt before committing to the values.
func NewCommit(h Digester, stuff ...[]byte) (*Commit, error) {
	salt, err := MakeRand()
	if err != nil {
		return nil, err
	}
	return OpenCommit(h, salt, stuff...), nil
}

// OpenCommit recomputes the commit to stuff under the given salt.
func OpenCommit(h Digester, salt []byte, stuff ...[]byte) *Commit {
	return &Commit{
		Salt:  salt,
		Value: h.Digest(append([][]byte{salt}, stuff...)...),
	}
}

// Verify verifies that the underlying commit c was a commit to the passed
// byte slices stuff (which won't be mutated).
func (c *Commit) Verify(h Digester, stuff ...[]byte) bool {
	return bytes.Equal(c.Value, h.Digest(append([][]byte{c.Salt}, stuff...)...))
}
