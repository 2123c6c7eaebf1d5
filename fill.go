package iso8583

import "strings"

// Alignment says on which side of the data the fill lands.
type Alignment int

const (
	// AlignLeft keeps the data first and appends fill on the right.
	AlignLeft Alignment = iota
	// AlignRight prepends fill and keeps the data on the right.
	AlignRight
)

func (a Alignment) String() string {
	if a == AlignRight {
		return "right"
	}
	return "left"
}

// FillStrategy decides how a field is padded when the data does not cover
// the encoded width: odd digit counts in BCD fields, and short values in
// fixed fields.
//
// A zero Char selects the encoding default: '0' for BCD, ' ' for CHAR.
// For BCD the fill char is a nibble, either 0x00-0x0F or a hex digit.
// Anything else overflows a nibble: with OverflowAsFF the byte holding the
// fill is written as 0xFF, otherwise encoding fails with ErrFillOverflow.
type FillStrategy struct {
	Align        Alignment
	Char         byte
	OverflowAsFF bool
}

// DefaultFillStrategy is left-aligned data with '0' (or space) on the right.
var DefaultFillStrategy = FillStrategy{}

// RightAppendStrategy keeps the data left-aligned and pads on the right.
func RightAppendStrategy(c byte, overflowAsFF bool) FillStrategy {
	return FillStrategy{Align: AlignLeft, Char: c, OverflowAsFF: overflowAsFF}
}

// LeftAppendStrategy pads on the left and keeps the data right-aligned.
func LeftAppendStrategy(c byte, overflowAsFF bool) FillStrategy {
	return FillStrategy{Align: AlignRight, Char: c, OverflowAsFF: overflowAsFF}
}

// nibble returns the BCD value of the fill char; ok is false on overflow.
func (fs FillStrategy) nibble() (v byte, ok bool) {
	if fs.Char <= 0x0F {
		return fs.Char, true
	}
	return hexNibble(fs.Char)
}

// charByte is the pad byte used by CHAR fields.
func (fs FillStrategy) charByte() byte {
	if fs.Char == 0 {
		return ' '
	}
	return fs.Char
}

// text is how one unit of fill reads back after decoding.
func (fs FillStrategy) text(enc Encoding) string {
	if !enc.packed() {
		return string(fs.charByte())
	}
	v, ok := fs.nibble()
	if !ok {
		return "F"
	}
	return string(hexTableUpper[v])
}

// padBytes pads b with the CHAR fill byte up to n bytes.
func (fs FillStrategy) padBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b
	}
	out := make([]byte, 0, n)
	pad := make([]byte, n-len(b))
	for i := range pad {
		pad[i] = fs.charByte()
	}
	if fs.Align == AlignRight {
		out = append(out, pad...)
		return append(out, b...)
	}
	out = append(out, b...)
	return append(out, pad...)
}

// pad adds one fill digit to odd-length BCD text.
func (fs FillStrategy) pad(s string) string {
	if fs.Align == AlignRight {
		return fs.text(EncodingNumeric) + s
	}
	return s + fs.text(EncodingNumeric)
}

// trim strips fill from the padded side of a decoded value.
func (fs FillStrategy) trim(s string, enc Encoding) string {
	cut := fs.text(enc)
	if fs.Align == AlignRight {
		for strings.HasPrefix(s, cut) {
			s = s[len(cut):]
		}
		return s
	}
	for strings.HasSuffix(s, cut) {
		s = s[:len(s)-len(cut)]
	}
	return s
}
