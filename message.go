package iso8583

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

// Message is one ISO8583 message bound to a Schema. It holds the header
// parts and the present data elements; the bitmap is derived from the
// present fields whenever the message is encoded.
//
// A Message is not safe for concurrent mutation. Concurrent reads are fine.
type Message struct {
	schema *Schema
	tpdu   string
	header string
	mti    string
	values map[int]FieldValue
}

// NewMessage returns an empty message bound to schema.
func NewMessage(schema *Schema, opts ...MessageOption) *Message {
	m := &Message{
		schema: schema,
		values: make(map[int]FieldValue),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Message) Schema() *Schema { return m.schema }

func (m *Message) TPDU() string   { return m.tpdu }
func (m *Message) Header() string { return m.header }
func (m *Message) MTI() string    { return m.mti }

func (m *Message) SetTPDU(tpdu string) *Message {
	m.tpdu = tpdu
	return m
}

func (m *Message) SetHeader(header string) *Message {
	m.header = header
	return m
}

func (m *Message) SetMTI(mti string) *Message {
	m.mti = mti
	return m
}

func (m *Message) headerPart(name string) *string {
	switch name {
	case "tpdu":
		return &m.tpdu
	case "header":
		return &m.header
	default:
		return &m.mti
	}
}

// SetValue stores the value of a data element. The value is checked
// against its FieldType when the message is encoded.
func (m *Message) SetValue(index int, value string) error {
	if err := m.schema.checkIndex(index); err != nil {
		return err
	}
	ft, err := m.schema.resolve(index, m)
	if err != nil {
		return withField(index, err)
	}
	m.values[index] = FieldValue{value: value, fieldType: ft}
	return nil
}

// Value returns the data element at index.
func (m *Message) Value(index int) (FieldValue, bool) {
	v, ok := m.values[index]
	return v, ok
}

// GetString returns the value text at index or ErrFieldNotFound.
func (m *Message) GetString(index int) (string, error) {
	v, ok := m.values[index]
	if !ok {
		return "", withField(index, ErrFieldNotFound)
	}
	return v.value, nil
}

func (m *Message) HasField(index int) bool {
	_, ok := m.values[index]
	return ok
}

// RemoveValue drops a data element; its bitmap bit goes with it.
func (m *Message) RemoveValue(index int) {
	delete(m.values, index)
}

// Fields returns the present field indices in ascending order.
func (m *Message) Fields() []int {
	out := make([]int, 0, len(m.values))
	for index := range m.values {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// Bitmap returns the raw bitmap the message encodes with, 8 or 16 bytes.
func (m *Message) Bitmap() ([]byte, error) {
	bm := NewBitmapManager(m.schema.bitmapWidth)
	for index := range m.values {
		if err := bm.SetField(index); err != nil {
			return nil, withField(index, err)
		}
	}
	return bm.Bytes(), nil
}

// Bytes returns the wire form, total-length descriptor included.
func (m *Message) Bytes() ([]byte, error) {
	return m.schema.Encode(m)
}

// BytesWithoutMsgLength returns the wire form without the total-length
// descriptor.
func (m *Message) BytesWithoutMsgLength() ([]byte, error) {
	return m.schema.EncodeWithoutMsgLength(m)
}

// BytesString returns Bytes as uppercase hex.
func (m *Message) BytesString() (string, error) {
	b, err := m.Bytes()
	if err != nil {
		return "", err
	}
	return hexUpper(b), nil
}

// CompareWith reports whether both messages carry the same header parts
// and the same field values. Field types are not compared.
func (m *Message) CompareWith(other *Message) bool {
	if other == nil {
		return false
	}
	if m.tpdu != other.tpdu || m.header != other.header || m.mti != other.mti {
		return false
	}
	if len(m.values) != len(other.values) {
		return false
	}
	for index, v := range m.values {
		o, ok := other.values[index]
		if !ok || o.value != v.value {
			return false
		}
	}
	return true
}

// FormatString renders the message one part per line for diagnostics.
// Values are printed in full.
func (m *Message) FormatString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-7s: [%s]\n", "tpdu", m.tpdu)
	fmt.Fprintf(&sb, "%-7s: [%s]\n", "header", m.header)
	fmt.Fprintf(&sb, "%-7s: [%s]\n", "mti", m.mti)
	if bitmap, err := m.Bitmap(); err == nil {
		fmt.Fprintf(&sb, "%-7s: [%s]\n", "bitmap", hexUpper(bitmap))
	}
	for _, index := range m.Fields() {
		v := m.values[index]
		fmt.Fprintf(&sb, "[%03d]  : [%s] %s\n", index, v.value, v.fieldType)
	}
	return sb.String()
}

// Clone returns a deep copy bound to the same schema.
func (m *Message) Clone() *Message {
	c := &Message{
		schema: m.schema,
		tpdu:   m.tpdu,
		header: m.header,
		mti:    m.mti,
		values: make(map[int]FieldValue, len(m.values)),
	}
	for index, v := range m.values {
		c.values[index] = v
	}
	return c
}

// CreateResponse clones a request, turns its MTI into the matching
// response class (0800 -> 0810) and sets field 39 when the schema has it.
func (m *Message) CreateResponse(responseCode string) (*Message, error) {
	mti := m.mti
	if len(mti) != 4 || mti[2]%2 != 0 {
		return nil, fmt.Errorf("%w: cannot create response from MTI %q", ErrInvalidMTI, mti)
	}
	res := m.Clone()
	res.mti = mti[:2] + string(mti[2]+1) + mti[3:]

	if responseCode != "" {
		if err := res.SetValue(39, responseCode); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// IsNMM reports whether the message is a network management message.
func (m *Message) IsNMM() bool {
	switch m.mti {
	case MTINetworkManagementRequest, MTINetworkManagementResponse,
		MTINetworkManagementAdvice, MTINetworkManagementAdviceResponse:
		return true
	default:
		return false
	}
}

// sensitiveFields are masked by LogValue.
var sensitiveFields = map[int]bool{2: true, 35: true, 36: true, 45: true, 52: true}

// LogValue implements slog.LogValuer. Card data is masked.
func (m *Message) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("mti", m.mti),
		slog.String("tpdu", m.tpdu),
		slog.String("header", m.header),
	}

	fields := make([]any, 0, len(m.values))
	for _, index := range m.Fields() {
		v := m.values[index].value
		if sensitiveFields[index] {
			v = maskValue(v)
		}
		fields = append(fields, slog.String(strconv.Itoa(index), v))
	}
	attrs = append(attrs, slog.Group("fields", fields...))
	return slog.GroupValue(attrs...)
}

// maskValue keeps the first 6 and last 4 characters of a PAN-sized value.
func maskValue(v string) string {
	if len(v) <= 10 {
		return strings.Repeat("*", len(v))
	}
	return v[:6] + strings.Repeat("*", len(v)-10) + v[len(v)-4:]
}
