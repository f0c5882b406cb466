package azks

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind int

const (
	// InputError indicates a malformed request, rejected before any mutation.
	InputError Kind = iota + 1
	// StorageError indicates the storage collaborator failed a read or write.
	StorageError
	// ProofError indicates a proof was requested for an epoch or label
	// that cannot be proven.
	ProofError
	// VerificationError indicates a proof failed verification.
	VerificationError
)

var kindNames = map[Kind]string{
	InputError:        "input error",
	StorageError:      "storage error",
	ProofError:        "proof error",
	VerificationError: "verification error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the error type returned by this package. Two Errors match
// under errors.Is when they have the same kind and message, so a sentinel
// still matches after a cause has been attached to it.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func newError(k Kind, msg string) *Error {
	return &Error{Kind: k, msg: msg}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap returns the cause of e, if any.
func (e *Error) Unwrap() error {
	return e.err
}

// Is reports whether target is an Error of the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.msg == t.msg
}

// wrap returns a copy of e carrying err as its cause.
func (e *Error) wrap(err error) error {
	return &Error{Kind: e.Kind, msg: e.msg, err: err}
}

// withf returns a copy of e carrying a formatted detail.
func (e *Error) withf(format string, a ...interface{}) error {
	return e.wrap(fmt.Errorf(format, a...))
}

// KindOf returns the Kind of the first Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

var (
	// ErrEmptyBatch indicates a batch insertion without elements.
	ErrEmptyBatch = newError(InputError, "[azks] Empty batch")
	// ErrLabelLength indicates a label whose length differs from the
	// configured bit length.
	ErrLabelLength = newError(InputError, "[azks] Label length differs from the configured bit length")
	// ErrDuplicateLabel indicates a label appearing twice in one batch.
	ErrDuplicateLabel = newError(InputError, "[azks] Duplicate label in batch")
	// ErrUnchangedValue indicates an update that repeats the current value
	// of its label.
	ErrUnchangedValue = newError(InputError, "[azks] Value unchanged")
	// ErrReservedKey indicates an extra record colliding with tree storage.
	ErrReservedKey = newError(InputError, "[azks] Record key uses a reserved prefix")
	// ErrBadLabelBits indicates a label bit length outside 1..256.
	ErrBadLabelBits = newError(InputError, "[azks] Label bit length out of range")
	// ErrUnsupportedHasher indicates an unknown or unsuitable hasher.
	ErrUnsupportedHasher = newError(InputError, "[azks] Unsupported hasher")
	// ErrConfigMismatch indicates a configuration that differs from the
	// one the stored tree was created with.
	ErrConfigMismatch = newError(InputError, "[azks] Configuration does not match stored tree")
	// ErrBadHistoryParams indicates invalid history parameters.
	ErrBadHistoryParams = newError(InputError, "[azks] Bad history parameters")

	// ErrStorage wraps any failure of the storage collaborator.
	ErrStorage = newError(StorageError, "[azks] Storage failure")
	// ErrNodeNotFound indicates a node missing from storage.
	ErrNodeNotFound = newError(StorageError, "[azks] Node not found")
	// ErrCorruptNode indicates a stored node that cannot be decoded
	// or does not fit the tree.
	ErrCorruptNode = newError(StorageError, "[azks] Corrupt node")

	// ErrEpochNotFound indicates an epoch later than the latest one.
	ErrEpochNotFound = newError(ProofError, "[azks] Epoch not found")
	// ErrHistoryPruned indicates an epoch whose history was discarded
	// by a bulk insertion.
	ErrHistoryPruned = newError(ProofError, "[azks] History pruned")
	// ErrLabelNotFound indicates a label absent at the requested epoch.
	ErrLabelNotFound = newError(ProofError, "[azks] Label not found")
	// ErrLabelPresent indicates a non-membership request for a present label.
	ErrLabelPresent = newError(ProofError, "[azks] Label present")
	// ErrBadEpochRange indicates an append-only request with start >= end.
	ErrBadEpochRange = newError(ProofError, "[azks] Bad epoch range")

	// ErrMalformedProof indicates a proof whose shape is invalid.
	ErrMalformedProof = newError(VerificationError, "[azks] Malformed proof")
	// ErrRootMismatch indicates a proof that recomputes a different root.
	ErrRootMismatch = newError(VerificationError, "[azks] Root digest mismatch")
	// ErrNotAbsent indicates a non-membership proof that does not
	// exclude the label.
	ErrNotAbsent = newError(VerificationError, "[azks] Proof does not show absence")
	// ErrBadHistory indicates a history proof with an inconsistent timeline.
	ErrBadHistory = newError(VerificationError, "[azks] Inconsistent history")
)

func storageErr(op string, err error) error {
	return ErrStorage.withf("%s: %w", op, err)
}
