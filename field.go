package iso8583

import "strconv"

// FieldValue is one data element of a message: the logical value and the
// FieldType it was decoded or set with.
//
// For BCD fields the value is the nibble text (uppercase after decoding).
// Fixed fields keep their fill, so Value round-trips byte for byte; use
// Trimmed to drop it.
type FieldValue struct {
	value     string
	fieldType FieldType
}

func (f FieldValue) String() string { return f.value }

func (f FieldValue) Value() string { return f.value }

func (f FieldValue) Type() FieldType { return f.fieldType }

// Len returns the length of the value text.
func (f FieldValue) Len() int { return len(f.value) }

// Int parses the value as a decimal integer.
func (f FieldValue) Int() (int, error) {
	return strconv.Atoi(f.value)
}

// Int64 parses the value as a decimal int64.
func (f FieldValue) Int64() (int64, error) {
	return strconv.ParseInt(f.value, 10, 64)
}

// Bytes returns the raw bytes of a BCD value, or the text itself for CHAR
// fields.
func (f FieldValue) Bytes() ([]byte, error) {
	if !f.fieldType.Encoding.packed() {
		return []byte(f.value), nil
	}
	v := f.value
	if len(v)%2 != 0 {
		v = f.fieldType.Fill.pad(v)
	}
	return decodeHex(v)
}

// Trimmed strips fill from the padded side of the value.
func (f FieldValue) Trimmed() string {
	return f.fieldType.Fill.trim(f.value, f.fieldType.Encoding)
}
