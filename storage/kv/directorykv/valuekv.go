package directorykv

import (
	"encoding/binary"
	"errors"

	"github.com/coniks-sys/akd-go/protocol"
	"github.com/coniks-sys/akd-go/storage/kv"
)

// ErrCorruptValueState indicates a value state record that cannot be decoded.
var ErrCorruptValueState = errors.New("[directorykv] Corrupt value state")

// ValueStateRecord returns the key and the encoding under which s is
// stored, so that it can be written in the same batch as the tree.
func ValueStateRecord(s *protocol.ValueState) (key, value []byte) {
	return valueStateKey(s.Name, s.Version), serializeValueState(s)
}

// LoadValueState loads the given version of name.
// It returns kv.ErrNotFound if there is no such version.
func LoadValueState(db kv.DB, name string, version uint64) (*protocol.ValueState, error) {
	buf, err := db.Get(valueStateKey(name, version))
	if err != nil {
		return nil, err
	}
	return deserializeValueState(name, version, buf)
}

// LatestValueState loads the newest version of name written at or
// before epoch. It returns kv.ErrNotFound if there is none.
func LatestValueState(db kv.DB, name string, epoch uint64) (*protocol.ValueState, error) {
	it := db.NewIterator(kv.BytesPrefix(namePrefix(name)))
	defer it.Release()

	// versions are written in increasing epochs
	if !it.Last() {
		if err := it.Error(); err != nil {
			return nil, err
		}
		return nil, kv.ErrNotFound
	}
	s, err := decodeEntry(name, it.Key(), it.Value())
	if err != nil || s.Epoch <= epoch {
		return s, err
	}

	var latest *protocol.ValueState
	for ok := it.First(); ok; ok = it.Next() {
		s, err := decodeEntry(name, it.Key(), it.Value())
		if err != nil {
			return nil, err
		}
		if s.Epoch > epoch {
			break
		}
		latest = s
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, kv.ErrNotFound
	}
	return latest, nil
}

// ValueStates loads every version of name, oldest first.
func ValueStates(db kv.DB, name string) ([]*protocol.ValueState, error) {
	it := db.NewIterator(kv.BytesPrefix(namePrefix(name)))
	defer it.Release()
	var states []*protocol.ValueState
	for it.Next() {
		s, err := decodeEntry(name, it.Key(), it.Value())
		if err != nil {
			return nil, err
		}
		states = append(states, s)
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return states, nil
}

// StorePolicies stores p, replacing the stored policies.
func StorePolicies(db kv.DB, p *protocol.Policies) error {
	return db.Put([]byte{PoliciesIdentifier}, p.Serialize())
}

// LoadPolicies loads the stored policies.
// It returns kv.ErrNotFound for a new directory.
func LoadPolicies(db kv.DB) (*protocol.Policies, error) {
	buf, err := db.Get([]byte{PoliciesIdentifier})
	if err != nil {
		return nil, err
	}
	return protocol.DeserializePolicies(buf)
}

func namePrefix(name string) []byte {
	// ValueStateIdentifier + len(name) + name
	key := make([]byte, 0, 1+4+len(name)+8)
	key = append(key, ValueStateIdentifier)
	key = binary.BigEndian.AppendUint32(key, uint32(len(name)))
	return append(key, name...)
}

func valueStateKey(name string, version uint64) []byte {
	return binary.BigEndian.AppendUint64(namePrefix(name), version)
}

func decodeEntry(name string, key, value []byte) (*protocol.ValueState, error) {
	if len(key) != 1+4+len(name)+8 {
		return nil, ErrCorruptValueState
	}
	return deserializeValueState(name, binary.BigEndian.Uint64(key[len(key)-8:]), value)
}

// serializeValueState encodes epoch + prevEpoch + len(value) + value + salt.
func serializeValueState(s *protocol.ValueState) []byte {
	buf := make([]byte, 0, 8+8+4+len(s.Value)+len(s.Salt))
	buf = binary.BigEndian.AppendUint64(buf, s.Epoch)
	buf = binary.BigEndian.AppendUint64(buf, s.PrevEpoch)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s.Value)))
	buf = append(buf, s.Value...)
	return append(buf, s.Salt...)
}

func deserializeValueState(name string, version uint64, buf []byte) (*protocol.ValueState, error) {
	if len(buf) < 8+8+4 {
		return nil, ErrCorruptValueState
	}
	s := &protocol.ValueState{Name: name, Version: version}
	s.Epoch = binary.BigEndian.Uint64(buf)
	s.PrevEpoch = binary.BigEndian.Uint64(buf[8:])
	n := binary.BigEndian.Uint32(buf[16:])
	buf = buf[20:]
	if uint64(len(buf)) < uint64(n) {
		return nil, ErrCorruptValueState
	}
	s.Value = append([]byte(nil), buf[:n]...)
	s.Salt = append([]byte(nil), buf[n:]...)
	return s, nil
}
