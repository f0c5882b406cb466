/*
Package application is a library for building the executables that run a
key directory.

Config

This module implements the TOML configuration of a directory instance:
the logger, the tree parameters, the parallelism of batch insertions, the
storage backend and the path of the VRF key. Paths in a config file are
resolved relative to the file.

Storage

This module opens the kv backend a config selects and loads the
directory's VRF key.

Encoding

This module implements the JSON encoding of the proofs and epoch hashes
a directory hands to clients and auditors.
*/
package application
