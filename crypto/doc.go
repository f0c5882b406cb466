// Package crypto contains the cryptographic routines shared by the
// directory and the AZKS tree, to:
// - represent fixed-size digests (`Digest`)
// - create a cryptographic commit to arbitrary data with a pluggable hasher
// - generate a random slice of bytes.
//
// Hash functions live in the hasher subpackages and the VRF in
// crypto/vrf.
package crypto
