package iso8583

import "fmt"

// appendBCD packs digits into total nibbles (total is even) and appends
// the result to dst. Positions not covered by digits are fill nibbles,
// placed by fs.Align. With strictCase set, lower-case hex letters are
// rejected.
func appendBCD(dst []byte, digits string, total int, fs FillStrategy, strictCase bool) ([]byte, error) {
	fillCount := total - len(digits)
	if fillCount < 0 {
		return nil, &LengthError{Expected: total, Actual: len(digits)}
	}
	fillVal, fits := fs.nibble()
	if fillCount > 0 && !fits && !fs.OverflowAsFF {
		return nil, fmt.Errorf("%w: %q", ErrFillOverflow, fs.Char)
	}

	nibble := func(pos int) (byte, bool, error) {
		j := pos
		if fs.Align == AlignRight {
			j = pos - fillCount
		}
		if j < 0 || j >= len(digits) {
			return fillVal, true, nil
		}
		c := digits[j]
		v, ok := hexNibble(c)
		if !ok || (strictCase && c >= 'a' && c <= 'f') {
			return 0, false, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, c, j)
		}
		return v, false, nil
	}

	for pos := 0; pos < total; pos += 2 {
		hi, hiFill, err := nibble(pos)
		if err != nil {
			return nil, err
		}
		lo, loFill, err := nibble(pos + 1)
		if err != nil {
			return nil, err
		}
		if (hiFill || loFill) && !fits {
			dst = append(dst, 0xFF)
			continue
		}
		dst = append(dst, hi<<4|lo)
	}
	return dst, nil
}

// unpackBCD renders packed bytes as nibble text and drops one fill nibble
// when digits is odd.
func unpackBCD(src []byte, digits int, align Alignment) string {
	s := hexUpper(src)
	if digits == len(s) {
		return s
	}
	if align == AlignRight {
		return s[len(s)-digits:]
	}
	return s[:digits]
}

// appendBCDLength writes n as zero-padded packed decimal of size bytes.
func appendBCDLength(dst []byte, n, size int) []byte {
	digits := make([]byte, size*2)
	writeIntToASCII(digits, n, len(digits))
	for i := 0; i < len(digits); i += 2 {
		dst = append(dst, (digits[i]-'0')<<4|(digits[i+1]-'0'))
	}
	return dst
}

// readBCDLength reads a packed decimal length; A-F nibbles are rejected.
func readBCDLength(src []byte) (int, error) {
	n := 0
	for _, b := range src {
		hi, lo := b>>4, b&0x0F
		if hi > 9 || lo > 9 {
			return 0, fmt.Errorf("%w: length prefix %X is not decimal", ErrInvalidLength, src)
		}
		n = n*100 + int(hi)*10 + int(lo)
	}
	return n, nil
}
