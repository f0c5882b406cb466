/*
Package azks implements an append-only authenticated dictionary: a
compressed binary trie over fixed-length labels whose root digest at every
epoch commits to the complete set of (label, value) pairs inserted so far.

Nodes are addressed by label and stored in versions keyed by the epoch of
their last change, so the tree as of any retained epoch can be walked
without an in-memory pointer graph. A batch insertion rewrites only the
nodes on the paths it touches and commits them, together with the new root
digest, in one atomic storage write.

Four kinds of proofs are supported:

  - membership: a label maps to a value at an epoch;
  - non-membership: a label is absent at an epoch;
  - append-only: the tree at one epoch extends the tree at an earlier one;
  - history: every recorded version of a label, each against its own root.

Proofs are checked with a Verifier, which needs only the hasher identifier,
the label bit length and the published root digests.

Writes must be serialized by the caller; reads of committed epochs may run
concurrently with each other and with a write.
*/
package azks
