package azks

import (
	"context"

	"github.com/coniks-sys/akd-go/crypto"
	"github.com/coniks-sys/akd-go/label"
)

// NodeStore persists node versions, root digests and the tree state.
// Commit must be all-or-nothing, and a read at epoch E must only see
// data committed at epochs <= E.
type NodeStore interface {
	// GetNode returns the newest version of the node at l with
	// LastEpoch <= epoch, or ErrNodeNotFound.
	GetNode(ctx context.Context, l label.Label, epoch uint64) (*TreeNode, error)
	// BatchGetNodes is GetNode for many labels. Missing labels are
	// left out of the result.
	BatchGetNodes(ctx context.Context, ls []label.Label, epoch uint64) (map[label.Label]*TreeNode, error)
	// NodeVersions lists the retained epochs at which the node at l was
	// written, in increasing order.
	NodeVersions(ctx context.Context, l label.Label) ([]uint64, error)
	// LoadState returns the stored state; ok is false for a fresh store.
	LoadState(ctx context.Context) (st State, ok bool, err error)
	// RootHash returns the root digest committed at epoch, or ErrEpochNotFound.
	RootHash(ctx context.Context, epoch uint64) (crypto.Digest, error)
	// Commit atomically applies a CommitSet.
	Commit(ctx context.Context, cs *CommitSet) error
}

// State is the persistent record describing a tree.
type State struct {
	Epoch         uint64
	NumNodes      uint64
	PrunedThrough uint64
	LabelBits     uint32
	HasherID      string
}

// NodeVersion identifies one stored version of a node.
type NodeVersion struct {
	Label label.Label
	Epoch uint64
}

// Record is an extra key-value pair written atomically with a tree commit.
type Record struct {
	Key   []byte
	Value []byte
}

// CommitSet is everything one epoch writes.
type CommitSet struct {
	State      State
	Root       crypto.Digest
	Nodes      []*TreeNode
	Superseded []NodeVersion
	Records    []Record
}
