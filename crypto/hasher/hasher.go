// Package hasher provides the registry of hash functions a tree can be
// configured with, and the frozen, domain-separated hashing rules for
// tree nodes.
//
// Implementations register themselves in their init function; import them
// with a blank import name to make them available by ID.
package hasher

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coniks-sys/akd-go/crypto"
)

// Hasher provides the hash function used by the tree and the directory.
// Implementations must be safe for concurrent use.
type Hasher interface {
	// ID returns the name of the cryptographic hash function.
	ID() string
	// Size returns the size of the hash output in bytes.
	Size() int
	// Digest hashes all passed byte slices. The passed slices won't be mutated.
	Digest(ms ...[]byte) []byte
}

var (
	mu      sync.RWMutex
	hashers = make(map[string]func() Hasher)
)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() Hasher) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("RegisterHasher(%v) is already registered", h))
	}
	hashers[h] = f
}

// New returns an instance of the hasher registered as h.
// It returns an error if h is unknown or does not produce
// crypto.HashSizeByte-byte digests.
func New(h string) (Hasher, error) {
	mu.RLock()
	f, ok := hashers[h]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("Hasher(%v) is unknown hasher", h)
	}
	hs := f()
	if hs == nil || hs.Size() != crypto.HashSizeByte {
		return nil, fmt.Errorf("Hasher(%v) must produce %d-byte digests", h, crypto.HashSizeByte)
	}
	return hs, nil
}

// Registered returns the IDs of all registered hashers, sorted.
func Registered() []string {
	mu.RLock()
	defer mu.RUnlock()
	ids := make([]string, 0, len(hashers))
	for id := range hashers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
