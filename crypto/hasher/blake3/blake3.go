// Package blake3 registers the BLAKE3 hasher.
package blake3

import (
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/zeebo/blake3"
)

func init() {
	hasher.RegisterHasher(ID, New)
}

// ID is the identity of the hashing algorithm.
const ID = "BLAKE3"

type blake3Hasher struct{}

// New returns an instance of the BLAKE3 hasher.
func New() hasher.Hasher {
	return blake3Hasher{}
}

func (blake3Hasher) Digest(ms ...[]byte) []byte {
	h := blake3.New()
	for _, m := range ms {
		h.Write(m)
	}
	return h.Sum(nil)
}

func (blake3Hasher) ID() string {
	return ID
}

func (blake3Hasher) Size() int {
	return crypto.HashSizeByte
}
