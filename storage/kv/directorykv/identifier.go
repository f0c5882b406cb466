// Package directorykv stores the directory's own records next to its
// tree: one value state per version of a name, and the directory
// policies. The key prefixes differ from the ones azks reserves.
package directorykv

const (
	// ValueStateIdentifier is the domain separation for value states.
	ValueStateIdentifier = 'V'
	// PoliciesIdentifier is the domain separation for the policies.
	PoliciesIdentifier = 'P'
)
