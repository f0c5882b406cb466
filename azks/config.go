package azks

import (
	"github.com/coniks-sys/akd-go/crypto/hasher"
	"github.com/coniks-sys/akd-go/crypto/hasher/sha512256"
	"github.com/coniks-sys/akd-go/label"

	// hashers selectable by configuration
	_ "github.com/coniks-sys/akd-go/crypto/hasher/blake3"
	_ "github.com/coniks-sys/akd-go/crypto/hasher/shake128"
)

// Config is the capability set of a tree. HasherID and LabelBits are
// recorded with the tree and must match on every reopen.
type Config struct {
	HasherID    string
	LabelBits   uint32
	Parallelism ParallelismConfig
}

// DefaultConfig uses SHA-512/256, 256-bit labels and DefaultParallelism.
func DefaultConfig() Config {
	return Config{
		HasherID:    sha512256.ID,
		LabelBits:   label.MaxBits,
		Parallelism: DefaultParallelism(),
	}
}

func (c Config) treeHasher() (*hasher.TreeHasher, error) {
	if c.LabelBits == 0 || c.LabelBits > label.MaxBits {
		return nil, ErrBadLabelBits.withf("%d bits", c.LabelBits)
	}
	h, err := hasher.New(c.HasherID)
	if err != nil {
		return nil, ErrUnsupportedHasher.wrap(err)
	}
	return hasher.NewTreeHasher(h), nil
}
