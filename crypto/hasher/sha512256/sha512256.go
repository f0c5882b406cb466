// Package sha512256 registers the SHA-512/256 hasher, the default hash
// function of the tree.
package sha512256

import (
	"crypto"
	_ "crypto/sha512" // registers crypto.SHA512_256

	"github.com/coniks-sys/akd-go/crypto/hasher"
)

func init() {
	hasher.RegisterHasher(ID, New)
}

// ID is the identity of the hashing algorithm.
const ID = "SHA-512/256"

type sha512256Hasher struct {
	crypto.Hash
}

// New returns an instance of the SHA-512/256 hasher.
func New() hasher.Hasher {
	return &sha512256Hasher{Hash: crypto.SHA512_256}
}

func (h *sha512256Hasher) Digest(ms ...[]byte) []byte {
	d := h.New()
	for _, m := range ms {
		d.Write(m)
	}
	return d.Sum(nil)
}

func (sha512256Hasher) ID() string {
	return ID
}

func (h *sha512256Hasher) Size() int {
	return h.Hash.Size()
}
