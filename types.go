package iso8583

import (
	"fmt"
	"strings"
)

// Encoding selects how a field's logical value is laid out on the wire.
type Encoding int

const (
	// EncodingChar maps each character through the schema charset.
	EncodingChar Encoding = iota
	// EncodingNumeric packs hex digits two per byte; lengths count digits.
	EncodingNumeric
	// EncodingByteNumeric packs hex digits two per byte; lengths count bytes.
	EncodingByteNumeric
)

func (e Encoding) String() string {
	switch e {
	case EncodingChar:
		return "CHAR"
	case EncodingNumeric:
		return "NUMERIC"
	case EncodingByteNumeric:
		return "BYTE_NUMERIC"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// packed reports whether values of this encoding are BCD nibbles.
func (e Encoding) packed() bool {
	return e == EncodingNumeric || e == EncodingByteNumeric
}

// LengthType is the number of length-prefix units in front of a field.
type LengthType int

const (
	LengthFixed LengthType = iota
	LengthLLVAR
	LengthLLLVAR
	LengthLLLLVAR
)

func (lt LengthType) String() string {
	switch lt {
	case LengthFixed:
		return ""
	case LengthLLVAR:
		return "LLVAR"
	case LengthLLLVAR:
		return "LLLVAR"
	case LengthLLLLVAR:
		return "LLLLVAR"
	default:
		return fmt.Sprintf("LengthType(%d)", int(lt))
	}
}

// bcdBytes is the size of a packed BCD prefix.
func (lt LengthType) bcdBytes() int {
	return int(lt)
}

// asciiDigits is the size of an ASCII decimal prefix.
func (lt LengthType) asciiDigits() int {
	if lt == LengthFixed {
		return 0
	}
	return int(lt) + 1
}

// maxUnits is the largest unit count the prefix can carry.
func (lt LengthType) maxUnits(p PrefixEncoding) int {
	digits := lt.bcdBytes() * 2
	if p == PrefixASCII {
		digits = lt.asciiDigits()
	}
	n := 1
	for i := 0; i < digits; i++ {
		n *= 10
	}
	return n - 1
}

// PrefixEncoding is how a variable field writes its length prefix.
type PrefixEncoding int

const (
	// PrefixBCD writes the unit count as packed decimal: 1, 2 or 3 bytes.
	PrefixBCD PrefixEncoding = iota
	// PrefixASCII writes the unit count as 2, 3 or 4 ASCII digits.
	PrefixASCII
)

func (p PrefixEncoding) String() string {
	if p == PrefixASCII {
		return "ascii"
	}
	return "bcd"
}

// ParsePrefixEncoding accepts "bcd" (or "") and "ascii".
func ParsePrefixEncoding(s string) (PrefixEncoding, error) {
	switch strings.ToLower(s) {
	case "", "bcd":
		return PrefixBCD, nil
	case "ascii":
		return PrefixASCII, nil
	}
	return 0, fmt.Errorf("%w: unknown prefix encoding %q", ErrCodecConfig, s)
}

// LengthIndicatorType is the encoding of the total-length descriptor that
// precedes a whole message on the wire.
type LengthIndicatorType int

const (
	LengthIndicatorNone LengthIndicatorType = iota
	LengthIndicatorBinary
	LengthIndicatorASCII
	LengthIndicatorBCD
	LengthIndicatorHex
)

var lengthIndicatorNames = map[string]LengthIndicatorType{
	"none":   LengthIndicatorNone,
	"binary": LengthIndicatorBinary,
	"ascii":  LengthIndicatorASCII,
	"bcd":    LengthIndicatorBCD,
	"hex":    LengthIndicatorHex,
}

func (t LengthIndicatorType) String() string {
	for name, v := range lengthIndicatorNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("LengthIndicatorType(%d)", int(t))
}

// ParseLengthIndicatorType maps a config name to its LengthIndicatorType.
func ParseLengthIndicatorType(s string) (LengthIndicatorType, error) {
	t, ok := lengthIndicatorNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("%w: unknown length indicator %q", ErrCodecConfig, s)
	}
	return t, nil
}

// LengthIndicatorConfig describes the total-length descriptor.
type LengthIndicatorConfig struct {
	Type   LengthIndicatorType
	Length int // bytes for Binary and BCD, characters for ASCII and Hex
}

// BitmapEncoding is how the bitmap is written.
type BitmapEncoding int

const (
	BitmapEncodingBinary BitmapEncoding = iota
	BitmapEncodingHex
)

// TLVType selects the tag and length layout of a TLV parser.
type TLVType int

const (
	TLVStandard TLVType = iota // 1-byte tag, 1-byte length
	TLVEMV                     // BER-TLV as used by EMV
)

func (t TLVType) String() string {
	if t == TLVEMV {
		return "emv"
	}
	return "standard"
}

// ParseTLVType maps a config name to its TLVType.
func ParseTLVType(s string) (TLVType, error) {
	switch strings.ToLower(s) {
	case "standard":
		return TLVStandard, nil
	case "emv", "field55":
		return TLVEMV, nil
	}
	return 0, fmt.Errorf("%w: unknown TLV type %q", ErrCodecConfig, s)
}

const (
	DefaultBitmapWidth = 64
	MaxFieldNumber     = 128
	BitmapSize         = 8 // bytes per 64 bits
)
