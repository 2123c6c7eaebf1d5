package iso8583

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// TLVParser decodes Tag-Length-Value data: Standard (1-byte tag and
// length) or EMV BER-TLV (multi-byte tags, long-form lengths). A parser
// holds no per-call state and is safe for concurrent use.
type TLVParser struct {
	tlvType TLVType
	tags    map[string]TagSpec
}

// NewTLVParser creates a parser for Standard or EMV TLV.
func NewTLVParser(tlvType TLVType) *TLVParser {
	return &TLVParser{tlvType: tlvType}
}

// NewField55Parser creates an EMV parser that knows the field 55 tags and
// checks value sizes in NewValue.
func NewField55Parser() *TLVParser {
	return &TLVParser{tlvType: TLVEMV, tags: field55Tags}
}

var field55Parser = NewField55Parser()

func (tp *TLVParser) Type() TLVType { return tp.tlvType }

// NewObject returns an empty TLV object.
func (tp *TLVParser) NewObject() *TLVObject {
	return &TLVObject{parser: tp}
}

// ParseHex parses TLV data given as hex text.
func (tp *TLVParser) ParseHex(s string) (*TLVObject, error) {
	data, err := decodeHex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTLV, err)
	}
	return tp.Parse(data)
}

// Parse splits data into TLV entries, keeping their order and the exact
// length encoding of each one.
func (tp *TLVParser) Parse(data []byte) (*TLVObject, error) {
	obj := tp.NewObject()
	offset := 0
	for offset < len(data) {
		v, n, err := tp.parseOne(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		obj.values = append(obj.values, v)
		offset += n
	}
	return obj, nil
}

func (tp *TLVParser) parseOne(data []byte) (TLVValue, int, error) {
	var tagLen, lenStart, valueLen, valueStart int
	var err error

	switch tp.tlvType {
	case TLVStandard:
		if len(data) < 2 {
			return TLVValue{}, 0, fmt.Errorf("%w: truncated tag or length", ErrInvalidTLV)
		}
		tagLen, lenStart, valueLen, valueStart = 1, 1, int(data[1]), 2
	case TLVEMV:
		tagLen, err = berTagLength(data)
		if err != nil {
			return TLVValue{}, 0, err
		}
		lenStart = tagLen
		valueLen, valueStart, err = berLength(data, lenStart)
		if err != nil {
			return TLVValue{}, 0, &TLVError{Tag: data[:tagLen], Err: err}
		}
	default:
		return TLVValue{}, 0, fmt.Errorf("%w: unsupported TLV type %d", ErrCodecConfig, tp.tlvType)
	}

	end := valueStart + valueLen
	if end > len(data) {
		return TLVValue{}, 0, &TLVError{
			Tag: data[:tagLen],
			Err: fmt.Errorf("%w: value needs %d bytes, %d left", ErrInvalidTLV, valueLen, len(data)-valueStart),
		}
	}
	v := TLVValue{
		tag:    bytes.Clone(data[:tagLen]),
		length: bytes.Clone(data[lenStart:valueStart]),
		value:  bytes.Clone(data[valueStart:end]),
	}
	return v, end, nil
}

// berTagLength returns the size of the BER tag at the start of data.
func berTagLength(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty tag", ErrInvalidTLV)
	}
	n := 1
	if data[0]&0x1F == 0x1F {
		for n < len(data) && data[n]&0x80 != 0 {
			n++
		}
		if n >= len(data) {
			return 0, fmt.Errorf("%w: truncated tag %X", ErrInvalidTLV, data)
		}
		n++
	}
	return n, nil
}

// berLength decodes a BER length at offset and returns the value length and
// the offset of the value.
func berLength(data []byte, offset int) (int, int, error) {
	if offset >= len(data) {
		return 0, 0, fmt.Errorf("%w: missing length", ErrInvalidTLV)
	}
	b := data[offset]
	if b&0x80 == 0 {
		return int(b), offset + 1, nil
	}
	n := int(b & 0x7F)
	if n == 0 || n > 3 {
		return 0, 0, fmt.Errorf("%w: unsupported length form %02X", ErrInvalidTLV, b)
	}
	if offset+1+n > len(data) {
		return 0, 0, fmt.Errorf("%w: truncated length", ErrInvalidTLV)
	}
	length := 0
	for _, lb := range data[offset+1 : offset+1+n] {
		length = length<<8 | int(lb)
	}
	return length, offset + 1 + n, nil
}

// NewValue builds a TLVValue from hex tag and value text. Parsers with a
// tag table reject values whose size is outside the tag's range.
func (tp *TLVParser) NewValue(tag, value string) (TLVValue, error) {
	t, err := decodeHex(normalizeTag(tag))
	if err != nil || len(t) == 0 {
		return TLVValue{}, fmt.Errorf("%w: tag %q is not hex", ErrInvalidTLV, tag)
	}
	if tp.tlvType == TLVStandard && len(t) != 1 {
		return TLVValue{}, &TLVError{Tag: t, Err: fmt.Errorf("%w: standard tags are one byte", ErrInvalidTLV)}
	}

	v, err := decodeHex(strings.TrimSpace(value))
	if err != nil {
		return TLVValue{}, &TLVError{Tag: t, Err: err}
	}
	if spec, ok := tp.tags[hexUpper(t)]; ok && (len(v) < spec.MinLen || len(v) > spec.MaxLen) {
		return TLVValue{}, &TLVError{Tag: t, Err: fmt.Errorf("%w: %s is %d bytes, want %d..%d",
			ErrInvalidTLV, spec.Name, len(v), spec.MinLen, spec.MaxLen)}
	}

	if tp.tlvType == TLVStandard {
		if len(v) > 0xFF {
			return TLVValue{}, &TLVError{Tag: t, Err: fmt.Errorf("%w: value exceeds 255 bytes", ErrInvalidTLV)}
		}
		return TLVValue{tag: t, length: []byte{byte(len(v))}, value: v}, nil
	}

	// bertlv checks the tag structure and picks the minimal length form.
	enc, err := bertlv.Encode([]bertlv.TLV{bertlv.NewTag(hexUpper(t), v)})
	if err != nil {
		return TLVValue{}, &TLVError{Tag: t, Err: fmt.Errorf("%w: %v", ErrInvalidTLV, err)}
	}
	return TLVValue{tag: t, length: enc[len(t) : len(enc)-len(v)], value: v}, nil
}

// NewField55Value builds a field 55 entry, e.g. NewField55Value("9F26",
// "1234567890123456").
func NewField55Value(tag, value string) (TLVValue, error) {
	return field55Parser.NewValue(tag, value)
}

// TLVValue is one tag, length and value. Values come from a parser or
// from NewValue, so the length always matches the value.
type TLVValue struct {
	tag    []byte
	length []byte
	value  []byte
}

// Tag returns the tag as uppercase hex.
func (v TLVValue) Tag() string { return hexUpper(v.tag) }

// Value returns the value as uppercase hex.
func (v TLVValue) Value() string { return hexUpper(v.value) }

// Bytes returns a copy of the raw value.
func (v TLVValue) Bytes() []byte { return bytes.Clone(v.value) }

// Len is the value size in bytes.
func (v TLVValue) Len() int { return len(v.value) }

// Constructed reports whether the value holds nested TLVs.
func (v TLVValue) Constructed() bool {
	return len(v.tag) > 0 && v.tag[0]&0x20 != 0
}

// Encoded returns tag, length and value as they go on the wire.
func (v TLVValue) Encoded() []byte {
	out := make([]byte, 0, len(v.tag)+len(v.length)+len(v.value))
	out = append(out, v.tag...)
	out = append(out, v.length...)
	return append(out, v.value...)
}

// String returns Encoded as uppercase hex.
func (v TLVValue) String() string { return hexUpper(v.Encoded()) }

// Equal compares tag and value.
func (v TLVValue) Equal(o TLVValue) bool {
	return bytes.Equal(v.tag, o.tag) && bytes.Equal(v.value, o.value)
}

// Text renders the value by the tag's format: text for an/ans, digits for
// cn without the F padding, hex otherwise.
func (v TLVValue) Text() string {
	spec, ok := field55Tags[v.Tag()]
	if !ok {
		return v.Value()
	}
	switch spec.Format {
	case FormatAlphaNumeric, FormatAlphaNumericSpecial:
		return string(v.value)
	case FormatCompressedNumeric:
		return strings.TrimRight(v.Value(), "F")
	default:
		return v.Value()
	}
}

// TLVObject is an ordered list of TLV entries. Tags may repeat.
type TLVObject struct {
	parser *TLVParser
	values []TLVValue
}

func normalizeTag(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}

// Get returns the hex value of the first entry with tag, case-insensitive.
func (o *TLVObject) Get(tag string) (string, bool) {
	v, ok := o.Lookup(tag)
	if !ok {
		return "", false
	}
	return v.Value(), true
}

// Lookup returns the first entry with tag.
func (o *TLVObject) Lookup(tag string) (TLVValue, bool) {
	tag = normalizeTag(tag)
	for _, v := range o.values {
		if v.Tag() == tag {
			return v, true
		}
	}
	return TLVValue{}, false
}

// GetAll returns every entry with tag in order.
func (o *TLVObject) GetAll(tag string) []TLVValue {
	tag = normalizeTag(tag)
	var out []TLVValue
	for _, v := range o.values {
		if v.Tag() == tag {
			out = append(out, v)
		}
	}
	return out
}

// Put appends v, even if its tag is already present.
func (o *TLVObject) Put(v TLVValue) {
	o.values = append(o.values, v)
}

// PutValue builds an entry with the object's parser and appends it.
func (o *TLVObject) PutValue(tag, value string) error {
	v, err := o.parser.NewValue(tag, value)
	if err != nil {
		return err
	}
	o.Put(v)
	return nil
}

// Remove deletes the first entry equal to v and reports whether one was
// found.
func (o *TLVObject) Remove(v TLVValue) bool {
	for i, cur := range o.values {
		if cur.Equal(v) {
			o.values = append(o.values[:i], o.values[i+1:]...)
			return true
		}
	}
	return false
}

// Values returns a copy of the entries in order.
func (o *TLVObject) Values() []TLVValue {
	return append([]TLVValue(nil), o.values...)
}

func (o *TLVObject) Len() int { return len(o.values) }

// Bytes serializes the entries in order.
func (o *TLVObject) Bytes() []byte {
	var out []byte
	for _, v := range o.values {
		out = append(out, v.Encoded()...)
	}
	return out
}

// String serializes the entries as uppercase hex.
func (o *TLVObject) String() string { return hexUpper(o.Bytes()) }

// Describe renders one line per entry with the tag name when known.
func (o *TLVObject) Describe() string {
	var sb strings.Builder
	for _, v := range o.values {
		name := "unknown"
		if spec, ok := field55Tags[v.Tag()]; ok {
			name = spec.Name
		}
		fmt.Fprintf(&sb, "%-4s %-34s [%3d] %s\n", v.Tag(), name, v.Len(), v.Text())
	}
	return sb.String()
}

// Packets decodes the object into bertlv packets, expanding constructed
// tags such as issuer script templates into their children.
func (o *TLVObject) Packets() ([]bertlv.TLV, error) {
	packets, err := bertlv.Decode(o.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTLV, err)
	}
	return packets, nil
}

// TLVObjectFromPackets encodes bertlv packets into an EMV TLV object.
func TLVObjectFromPackets(packets []bertlv.TLV) (*TLVObject, error) {
	data, err := bertlv.Encode(packets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTLV, err)
	}
	return field55Parser.Parse(data)
}

// TLV parses the value of a TLV field configured with WithTLVField.
func (m *Message) TLV(index int) (*TLVObject, error) {
	p, ok := m.schema.tlvParsers[index]
	if !ok {
		return nil, withField(index, fmt.Errorf("%w: not a TLV field", ErrCodecConfig))
	}
	v, ok := m.values[index]
	if !ok {
		return nil, withField(index, ErrFieldNotFound)
	}

	var raw []byte
	var err error
	if v.fieldType.Encoding.packed() {
		raw, err = v.Bytes()
	} else {
		raw, err = m.schema.charset.Encode(v.value)
	}
	if err != nil {
		return nil, withField(index, err)
	}
	obj, err := p.Parse(raw)
	if err != nil {
		return nil, withField(index, err)
	}
	return obj, nil
}

// SetTLV stores obj as the value of a TLV field.
func (m *Message) SetTLV(index int, obj *TLVObject) error {
	if _, ok := m.schema.tlvParsers[index]; !ok {
		return withField(index, fmt.Errorf("%w: not a TLV field", ErrCodecConfig))
	}
	ft, err := m.schema.resolve(index, m)
	if err != nil {
		return withField(index, err)
	}
	if ft.Encoding.packed() {
		return m.SetValue(index, obj.String())
	}
	text, err := m.schema.charset.Decode(obj.Bytes())
	if err != nil {
		return withField(index, err)
	}
	return m.SetValue(index, text)
}
