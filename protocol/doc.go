/*
Package protocol is a library for building compatible key directory servers,
clients and auditors on top of the azks append-only tree.

protocol defines what the three parties exchange. The server-side
directory lives in the directory subpackage, the client-side checks in
client and the epoch hash chain checks in auditor.

Labels

A name is never stored in the tree in plaintext. Its tree label is the
hash of the VRF output of the name under the directory's VRF key, so
clients can check a label with the VRF proof while the label itself
reveals nothing about the name.

Values

Each version of a name commits to its value with a random salt. The leaf
value stored in the tree binds that commitment to the version number, the
epoch that wrote it and the epoch of the previous version, which lets a
client detect versions missing from a history.

Error

This module defines the errors a directory may return, and the results of
the checks a client or auditor performs.

Message

This module defines the proofs the directory returns for each request.

Policy

This module defines the directory's public parameters: the hasher and
label length of its tree and the public part of its VRF key.
*/
package protocol
