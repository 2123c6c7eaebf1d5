package iso8583

import (
	"fmt"
	"strings"
)

// FieldType is the wire description of one data element. It is a value
// type; the With* helpers return modified copies.
//
// Length is the declared unit count of a fixed field: bytes for CHAR,
// digits for NUMERIC and bytes for BYTE_NUMERIC. Variable fields ignore
// it and carry their unit count in a length prefix.
type FieldType struct {
	Encoding   Encoding
	LengthType LengthType
	Length     int
	Fill       FillStrategy
	Prefix     PrefixEncoding
}

// Fixed returns a fixed-length field type with the default fill.
func Fixed(enc Encoding, length int) FieldType {
	return FieldType{Encoding: enc, LengthType: LengthFixed, Length: length}
}

// Variable returns an LLVAR, LLLVAR or LLLLVAR field type with the default
// fill and a BCD length prefix.
func Variable(enc Encoding, lt LengthType) FieldType {
	return FieldType{Encoding: enc, LengthType: lt}
}

func (ft FieldType) WithFill(fs FillStrategy) FieldType {
	ft.Fill = fs
	return ft
}

func (ft FieldType) WithPrefix(p PrefixEncoding) FieldType {
	ft.Prefix = p
	return ft
}

func (ft FieldType) IsFixed() bool { return ft.LengthType == LengthFixed }

// Name is the type name without the declared length, e.g. LLLVAR_NUMERIC.
func (ft FieldType) Name() string {
	if ft.IsFixed() {
		return ft.Encoding.String()
	}
	return ft.LengthType.String() + "_" + ft.Encoding.String()
}

func (ft FieldType) String() string {
	if ft.IsFixed() {
		return fmt.Sprintf("%s(%d)", ft.Name(), ft.Length)
	}
	return ft.Name()
}

// ParseFieldType builds a FieldType from a name such as "NUMERIC" or
// "LLLVAR_BYTE_NUMERIC". length is only used for fixed types.
func ParseFieldType(name string, length int) (FieldType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	lt := LengthFixed
	for _, candidate := range []LengthType{LengthLLLLVAR, LengthLLLVAR, LengthLLVAR} {
		prefix := candidate.String() + "_"
		if strings.HasPrefix(upper, prefix) {
			lt = candidate
			upper = strings.TrimPrefix(upper, prefix)
			break
		}
	}

	var enc Encoding
	switch upper {
	case "CHAR":
		enc = EncodingChar
	case "NUMERIC":
		enc = EncodingNumeric
	case "BYTE_NUMERIC":
		enc = EncodingByteNumeric
	default:
		return FieldType{}, fmt.Errorf("%w: unknown field type %q", ErrCodecConfig, name)
	}

	ft := FieldType{Encoding: enc, LengthType: lt}
	if lt == LengthFixed {
		ft.Length = length
	}
	return ft, ft.validate()
}

func (ft FieldType) validate() error {
	if ft.Encoding < EncodingChar || ft.Encoding > EncodingByteNumeric {
		return fmt.Errorf("%w: unknown encoding %d", ErrCodecConfig, ft.Encoding)
	}
	if ft.LengthType < LengthFixed || ft.LengthType > LengthLLLLVAR {
		return fmt.Errorf("%w: unknown length type %d", ErrCodecConfig, ft.LengthType)
	}
	if ft.IsFixed() && ft.Length <= 0 {
		return fmt.Errorf("%w: fixed %s needs a positive length", ErrCodecConfig, ft.Encoding)
	}
	return nil
}

// codecOptions carries the schema-wide settings a field codec needs.
type codecOptions struct {
	charset    *Charset
	strictCase bool
}

var defaultCodecOptions = codecOptions{charset: UTF8}

// Encode encodes value as UTF-8 text or BCD digits, prefix included.
func (ft FieldType) Encode(value string) ([]byte, error) {
	return ft.encode(nil, value, defaultCodecOptions)
}

// Decode reads one value starting at offset and returns it with the number
// of bytes consumed.
func (ft FieldType) Decode(data []byte, offset int) (string, int, error) {
	return ft.decode(data, offset, defaultCodecOptions)
}

func (ft FieldType) encode(dst []byte, value string, o codecOptions) ([]byte, error) {
	var err error
	switch ft.Encoding {
	case EncodingChar:
		var content []byte
		content, err = o.charset.Encode(value)
		if err != nil {
			return nil, err
		}
		if ft.IsFixed() {
			if len(content) > ft.Length {
				return nil, &LengthError{Expected: ft.Length, Actual: len(content)}
			}
			return append(dst, ft.Fill.padBytes(content, ft.Length)...), nil
		}
		dst, err = ft.appendPrefix(dst, len(content))
		if err != nil {
			return nil, err
		}
		return append(dst, content...), nil

	case EncodingNumeric:
		if ft.IsFixed() {
			// Only the odd-length fill nibble may be supplied by the codec.
			total := ft.Length + ft.Length%2
			if len(value)+len(value)%2 != total {
				return nil, &LengthError{Expected: ft.Length, Actual: len(value)}
			}
			return appendBCD(dst, value, total, ft.Fill, o.strictCase)
		}
		dst, err = ft.appendPrefix(dst, len(value))
		if err != nil {
			return nil, err
		}
		return appendBCD(dst, value, len(value)+len(value)%2, ft.Fill, o.strictCase)

	case EncodingByteNumeric:
		if ft.IsFixed() {
			if len(value) > ft.Length*2 {
				return nil, &LengthError{Expected: ft.Length, Actual: (len(value) + 1) / 2}
			}
			return appendBCD(dst, value, ft.Length*2, ft.Fill, o.strictCase)
		}
		total := len(value) + len(value)%2
		dst, err = ft.appendPrefix(dst, total/2)
		if err != nil {
			return nil, err
		}
		return appendBCD(dst, value, total, ft.Fill, o.strictCase)
	}
	return nil, fmt.Errorf("%w: unknown encoding %d", ErrCodecConfig, ft.Encoding)
}

func (ft FieldType) decode(data []byte, offset int, o codecOptions) (string, int, error) {
	if offset < 0 || offset > len(data) {
		return "", 0, truncated(ft.Name(), 1, 0)
	}
	units, n, err := ft.readPrefix(data[offset:])
	if err != nil {
		return "", 0, err
	}
	start := offset + n

	size := units
	if ft.Encoding == EncodingNumeric {
		size = (units + 1) / 2
	}
	if start+size > len(data) {
		return "", 0, truncated(ft.Name()+" content", size, len(data)-start)
	}
	raw := data[start : start+size]

	var value string
	switch ft.Encoding {
	case EncodingChar:
		value, err = o.charset.Decode(raw)
		if err != nil {
			return "", 0, err
		}
	case EncodingNumeric:
		value = unpackBCD(raw, units, ft.Fill.Align)
	case EncodingByteNumeric:
		value = hexUpper(raw)
	}
	return value, n + size, nil
}

// appendPrefix writes the unit count of a variable field.
func (ft FieldType) appendPrefix(dst []byte, units int) ([]byte, error) {
	if limit := ft.LengthType.maxUnits(ft.Prefix); units > limit {
		return nil, fmt.Errorf("%w: %d units exceed %s maximum %d", ErrInvalidLength, units, ft.Name(), limit)
	}
	if ft.Prefix == PrefixASCII {
		digits := make([]byte, ft.LengthType.asciiDigits())
		writeIntToASCII(digits, units, len(digits))
		return append(dst, digits...), nil
	}
	return appendBCDLength(dst, units, ft.LengthType.bcdBytes()), nil
}

// readPrefix returns the unit count and the prefix size. Fixed fields
// report their declared length and a zero-size prefix.
func (ft FieldType) readPrefix(data []byte) (units, n int, err error) {
	if ft.IsFixed() {
		return ft.Length, 0, nil
	}
	n = ft.LengthType.bcdBytes()
	if ft.Prefix == PrefixASCII {
		n = ft.LengthType.asciiDigits()
	}
	if len(data) < n {
		return 0, 0, truncated(ft.Name()+" length prefix", n, len(data))
	}
	if ft.Prefix == PrefixASCII {
		units, err = parseASCIIToInt(data[:n])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrInvalidLength, err)
		}
		return units, n, nil
	}
	units, err = readBCDLength(data[:n])
	return units, n, err
}
