package iso8583

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is the logical content of a message without its wire layout:
// header parts and field values as text.
type Snapshot struct {
	TPDU   string         `msgpack:"tpdu" json:"tpdu" yaml:"tpdu"`
	Header string         `msgpack:"header" json:"header" yaml:"header"`
	MTI    string         `msgpack:"mti" json:"mti" yaml:"mti"`
	Fields map[int]string `msgpack:"fields" json:"fields" yaml:"fields"`
}

func (m *Message) Snapshot() Snapshot {
	s := Snapshot{
		TPDU:   m.tpdu,
		Header: m.header,
		MTI:    m.mti,
		Fields: make(map[int]string, len(m.values)),
	}
	for index, v := range m.values {
		s.Fields[index] = v.value
	}
	return s
}

// EncodeSnapshot serializes the message snapshot with msgpack.
func (m *Message) EncodeSnapshot() ([]byte, error) {
	return msgpack.Marshal(m.Snapshot())
}

// FromSnapshot rebuilds a message; every field must be configured.
func (s *Schema) FromSnapshot(snap Snapshot) (*Message, error) {
	m := NewMessage(s, WithTPDU(snap.TPDU), WithHeader(snap.Header), WithMTI(snap.MTI))
	for index, value := range snap.Fields {
		if err := m.SetValue(index, value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// DecodeSnapshot reverses Message.EncodeSnapshot.
func (s *Schema) DecodeSnapshot(data []byte) (*Message, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s.FromSnapshot(snap)
}
