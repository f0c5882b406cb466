package application

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/utils"
)

// Proof is any message a directory hands to a client or an auditor.
type Proof interface {
	protocol.LookupProof | protocol.AbsenceProof | protocol.HistoryProof |
		protocol.AuditProof | protocol.EpochHash | protocol.Policies
}

// MarshalProof returns a JSON encoding of the given proof.
// Digests and labels are hex encoded.
func MarshalProof[T Proof](p *T) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalProof decodes msg into a new T. Malformed messages
// are reported as protocol.ErrMalformedRequest.
func UnmarshalProof[T Proof](msg []byte) (*T, error) {
	p := new(T)
	if err := json.Unmarshal(msg, p); err != nil {
		return nil, fmt.Errorf("%w: %v", protocol.ErrMalformedRequest, err)
	}
	return p, nil
}

// MarshalProofToFile serializes the given proof to the given path.
// It refuses to overwrite an existing file.
func MarshalProofToFile[T Proof](p *T, path string) error {
	buf, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFile(path, buf, 0600)
}

// UnmarshalProofFromFile reads a proof written by MarshalProofToFile.
func UnmarshalProofFromFile[T Proof](path string) (*T, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalProof[T](buf)
}
