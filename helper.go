package iso8583

import (
	"encoding/hex"
	"fmt"
)

const hexTableUpper = "0123456789ABCDEF"

// encodeHexUpper converts src to uppercase hex and writes it to dst.
func encodeHexUpper(dst, src []byte) {
	for i, v := range src {
		dst[i*2] = hexTableUpper[v>>4]
		dst[i*2+1] = hexTableUpper[v&0x0f]
	}
}

func hexUpper(src []byte) string {
	dst := make([]byte, len(src)*2)
	encodeHexUpper(dst, src)
	return string(dst)
}

// hexNibble returns the value of one hex digit, either case.
func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	}
	return 0, false
}

// decodeHex accepts hex text in either case.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDigit, err)
	}
	return b, nil
}

// writeIntToASCII writes n as zero-padded decimal into buf[:width].
func writeIntToASCII(buf []byte, n, width int) {
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte('0' + n%10)
		n /= 10
	}
}

// parseASCIIToInt parses decimal digits without going through strconv.
func parseASCIIToInt(b []byte) (int, error) {
	n := 0
	for _, ch := range b {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("invalid character '%c' in numeric string", ch)
		}
		n = n*10 + int(ch-'0')
	}
	return n, nil
}
