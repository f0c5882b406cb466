// Package shake128 registers a hasher producing 32-byte SHAKE128 outputs.
package shake128

import (
	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"golang.org/x/crypto/sha3"
)

func init() {
	hasher.RegisterHasher(ID, New)
}

// ID is the identity of the hashing algorithm.
const ID = "SHAKE128"

type shakeHasher struct{}

// New returns an instance of the SHAKE128 hasher.
func New() hasher.Hasher {
	return shakeHasher{}
}

func (shakeHasher) Digest(ms ...[]byte) []byte {
	h := sha3.NewShake128()
	for _, m := range ms {
		h.Write(m)
	}
	ret := make([]byte, crypto.HashSizeByte)
	h.Read(ret)
	return ret
}

func (shakeHasher) ID() string {
	return ID
}

func (shakeHasher) Size() int {
	return crypto.HashSizeByte
}
