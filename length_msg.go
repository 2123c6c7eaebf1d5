package iso8583

import (
	"fmt"
	"strconv"
)

// DefaultLengthIndicator is a 2-byte big-endian binary length, as used by
// most POS host links.
var DefaultLengthIndicator = LengthIndicatorConfig{Type: LengthIndicatorBinary, Length: 2}

func (c LengthIndicatorConfig) validate() error {
	ok := true
	switch c.Type {
	case LengthIndicatorNone:
	case LengthIndicatorBinary:
		ok = c.Length == 2 || c.Length == 4
	case LengthIndicatorASCII:
		ok = c.Length >= 1 && c.Length <= 9
	case LengthIndicatorBCD:
		ok = c.Length >= 1 && c.Length <= 4
	case LengthIndicatorHex:
		ok = c.Length == 4
	default:
		ok = false
	}
	if !ok {
		return fmt.Errorf("%w: length indicator %s of size %d", ErrCodecConfig, c.Type, c.Length)
	}
	return nil
}

// size is the number of bytes the indicator occupies.
func (c LengthIndicatorConfig) size() int {
	if c.Type == LengthIndicatorNone {
		return 0
	}
	return c.Length
}

// WriteLengthIndicator writes the total-length descriptor for a message body
// of msgLen bytes and returns the number of bytes written.
func WriteLengthIndicator(msgLen int, buf []byte, config LengthIndicatorConfig) (int, error) {
	if config.Type == LengthIndicatorNone {
		return 0, nil
	}
	if len(buf) < config.Length {
		return 0, fmt.Errorf("%w: length indicator needs %d bytes", ErrInvalidLength, config.Length)
	}

	switch config.Type {
	case LengthIndicatorBinary:
		return writeBinaryLengthIndicator(msgLen, buf, config)
	case LengthIndicatorASCII:
		return writeDecimalLengthIndicator(msgLen, buf, config.Length, config.Length)
	case LengthIndicatorBCD:
		return writeDecimalLengthIndicator(msgLen, buf, config.Length, config.Length*2)
	case LengthIndicatorHex:
		return writeHexLengthIndicator(msgLen, buf)
	default:
		return 0, fmt.Errorf("%w: unsupported length indicator type %d", ErrCodecConfig, config.Type)
	}
}

// ReadLengthIndicator reads the total-length descriptor. It returns the body
// length and the number of bytes the descriptor consumed.
func ReadLengthIndicator(buf []byte, config LengthIndicatorConfig) (int, int, error) {
	if config.Type == LengthIndicatorNone {
		return len(buf), 0, nil
	}
	if len(buf) < config.Length {
		return 0, 0, truncated("length indicator", config.Length, len(buf))
	}

	switch config.Type {
	case LengthIndicatorBinary:
		return readBinaryLengthIndicator(buf, config)
	case LengthIndicatorASCII:
		n, err := parseASCIIToInt(buf[:config.Length])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: ASCII length indicator: %v", ErrInvalidLength, err)
		}
		return n, config.Length, nil
	case LengthIndicatorBCD:
		n, err := readBCDLength(buf[:config.Length])
		if err != nil {
			return 0, 0, err
		}
		return n, config.Length, nil
	case LengthIndicatorHex:
		n, err := strconv.ParseInt(string(buf[:4]), 16, 32)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: hex length indicator: %v", ErrInvalidLength, err)
		}
		return int(n), 4, nil
	default:
		return 0, 0, fmt.Errorf("%w: unsupported length indicator type %d", ErrCodecConfig, config.Type)
	}
}

// writeBinaryLengthIndicator writes binary length (2 or 4 bytes, big-endian).
func writeBinaryLengthIndicator(msgLen int, buf []byte, config LengthIndicatorConfig) (int, error) {
	switch config.Length {
	case 2:
		if msgLen > 0xFFFF {
			return 0, fmt.Errorf("%w: message length %d exceeds 2-byte maximum", ErrInvalidLength, msgLen)
		}
		buf[0] = byte(msgLen >> 8)
		buf[1] = byte(msgLen)
		return 2, nil
	case 4:
		if msgLen > 0x7FFFFFFF {
			return 0, fmt.Errorf("%w: message length %d exceeds 4-byte maximum", ErrInvalidLength, msgLen)
		}
		buf[0] = byte(msgLen >> 24)
		buf[1] = byte(msgLen >> 16)
		buf[2] = byte(msgLen >> 8)
		buf[3] = byte(msgLen)
		return 4, nil
	default:
		return 0, fmt.Errorf("%w: binary length indicator size %d (must be 2 or 4)", ErrCodecConfig, config.Length)
	}
}

func readBinaryLengthIndicator(buf []byte, config LengthIndicatorConfig) (int, int, error) {
	switch config.Length {
	case 2:
		return int(buf[0])<<8 | int(buf[1]), 2, nil
	case 4:
		return int(buf[0])<<24 | int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3]), 4, nil
	default:
		return 0, 0, fmt.Errorf("%w: binary length indicator size %d (must be 2 or 4)", ErrCodecConfig, config.Length)
	}
}

// writeDecimalLengthIndicator writes msgLen as digits decimal digits, either
// one per byte (ASCII) or two per byte (BCD).
func writeDecimalLengthIndicator(msgLen int, buf []byte, size, digits int) (int, error) {
	limit := 1
	for i := 0; i < digits; i++ {
		limit *= 10
	}
	if msgLen >= limit {
		return 0, fmt.Errorf("%w: message length %d exceeds %d-digit maximum", ErrInvalidLength, msgLen, digits)
	}
	if size == digits {
		writeIntToASCII(buf[:size], msgLen, size)
		return size, nil
	}
	copy(buf, appendBCDLength(nil, msgLen, size))
	return size, nil
}

// writeHexLengthIndicator writes 4 hex characters, e.g. "00C8" for 200.
func writeHexLengthIndicator(msgLen int, buf []byte) (int, error) {
	if msgLen > 0xFFFF {
		return 0, fmt.Errorf("%w: message length %d exceeds 4-char hex maximum", ErrInvalidLength, msgLen)
	}
	copy(buf[:4], fmt.Sprintf("%04X", msgLen))
	return 4, nil
}
