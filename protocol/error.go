// Defines the errors returned by a directory and
// the results of the consistency checks done by
// clients and auditors.

package protocol

import "errors"

var (
	// ErrMalformedRequest indicates an empty or invalid request.
	ErrMalformedRequest = errors.New("[akd] Malformed request")
	// ErrDuplicateName indicates a name updated twice in one publish.
	ErrDuplicateName = errors.New("[akd] Name updated twice in one epoch")
	// ErrNameNotFound indicates a name without any version.
	ErrNameNotFound = errors.New("[akd] Name not found")
	// ErrPoliciesMismatch indicates a directory reopened with other parameters.
	ErrPoliciesMismatch = errors.New("[akd] Policies do not match the stored directory")
)

var (
	// CheckBadVRFProof indicates a label that is not the VRF
	// output of the requested name.
	CheckBadVRFProof = errors.New("[akd] Bad VRF proof")
	// CheckBadCommitment indicates a value that does not open
	// the leaf value in the tree.
	CheckBadCommitment = errors.New("[akd] Value does not match the commitment")
	// CheckBadEpoch indicates a proof for another epoch than the
	// requested or verified one.
	CheckBadEpoch = errors.New("[akd] Unexpected epoch")
	// CheckBadVersions indicates a history with missing or
	// reordered versions.
	CheckBadVersions = errors.New("[akd] Versions are not contiguous")
	// CheckBadEpochHash indicates an epoch hash that differs from
	// the one already verified for that epoch.
	CheckBadEpochHash = errors.New("[akd] Epoch hash differs from the verified one")
	// CheckUnverifiedEpoch indicates an epoch the auditor has not verified.
	CheckUnverifiedEpoch = errors.New("[akd] Epoch not verified")
)
