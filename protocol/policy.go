package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/coniks-sys/akd-go/azks"
	"github.com/coniks-sys/akd-go/crypto/vrf"
)

// Version is the version of the directory protocol.
const Version = "1.0"

// Policies is a summary of the directory's public parameters:
// the tree's hasher and label length, the public part of the VRF key
// used to compute labels, and the protocol version.
type Policies struct {
	Version      string
	HasherID     string
	LabelBits    uint32
	VRFPublicKey vrf.PublicKey
}

// NewPolicies returns the Policies of a tree with the given hasher
// and label length, and the given VRF public key.
func NewPolicies(hasherID string, labelBits uint32, vrfPublicKey vrf.PublicKey) *Policies {
	return &Policies{
		Version:      Version,
		HasherID:     hasherID,
		LabelBits:    labelBits,
		VRFPublicKey: vrfPublicKey,
	}
}

// Verifier returns a tree verifier for the directory's parameters.
func (p *Policies) Verifier() (*azks.Verifier, error) {
	return azks.NewVerifier(p.HasherID, p.LabelBits)
}

// Serialize encodes the policies for storage:
// each string and the key are length-prefixed.
func (p *Policies) Serialize() []byte {
	var bs []byte
	bs = appendBytes(bs, []byte(p.Version))  // protocol version
	bs = appendBytes(bs, []byte(p.HasherID)) // cryptographic algorithms in use
	bs = binary.BigEndian.AppendUint32(bs, p.LabelBits)
	bs = appendBytes(bs, p.VRFPublicKey) // vrf public key
	return bs
}

// Equal reports whether p and other describe the same directory.
func (p *Policies) Equal(other *Policies) bool {
	return p.Version == other.Version &&
		p.HasherID == other.HasherID &&
		p.LabelBits == other.LabelBits &&
		bytes.Equal(p.VRFPublicKey, other.VRFPublicKey)
}

var errBadPolicies = errors.New("[akd] Bad policies encoding")

// DeserializePolicies parses the output of Serialize.
func DeserializePolicies(buf []byte) (*Policies, error) {
	p := new(Policies)
	version, buf, err := readBytes(buf)
	if err != nil {
		return nil, err
	}
	hasherID, buf, err := readBytes(buf)
	if err != nil {
		return nil, err
	}
	if len(buf) < 4 {
		return nil, errBadPolicies
	}
	p.LabelBits = binary.BigEndian.Uint32(buf)
	key, buf, err := readBytes(buf[4:])
	if err != nil {
		return nil, err
	}
	if len(buf) != 0 {
		return nil, errBadPolicies
	}
	p.Version = string(version)
	p.HasherID = string(hasherID)
	p.VRFPublicKey = vrf.PublicKey(key)
	return p, nil
}

func appendBytes(bs, b []byte) []byte {
	bs = binary.BigEndian.AppendUint32(bs, uint32(len(b)))
	return append(bs, b...)
}

func readBytes(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 4 {
		return nil, nil, errBadPolicies
	}
	n := binary.BigEndian.Uint32(buf)
	buf = buf[4:]
	if uint64(len(buf)) < uint64(n) {
		return nil, nil, errBadPolicies
	}
	return append([]byte(nil), buf[:n]...), buf[n:], nil
}
