package iso8583

import (
	"encoding/hex"
	"fmt"
)

// BitmapManager tracks which data elements are present. Bit 1 is never
// set directly: it follows from the presence of any field above 64.
type BitmapManager struct {
	primary   [BitmapSize]byte
	secondary [BitmapSize]byte
	width     int
}

// NewBitmapManager creates a bitmap for a 64 or 128 field schema.
func NewBitmapManager(width int) *BitmapManager {
	return &BitmapManager{width: width}
}

func bitPosition(fieldNum int) (byteIndex int, mask byte) {
	n := (fieldNum - 1) % 64
	return n / 8, 1 << (7 - n%8)
}

// SetField sets the bit for a data element (2..width).
func (bm *BitmapManager) SetField(fieldNum int) error {
	if fieldNum < 2 || fieldNum > bm.width {
		return fmt.Errorf("%w: %d outside 2..%d", ErrInvalidIndex, fieldNum, bm.width)
	}
	i, mask := bitPosition(fieldNum)
	if fieldNum <= 64 {
		bm.primary[i] |= mask
		return nil
	}
	bm.secondary[i] |= mask
	bm.primary[0] |= 0x80
	return nil
}

// IsFieldSet checks if the bit for the given field number is set.
func (bm *BitmapManager) IsFieldSet(fieldNum int) bool {
	if fieldNum < 1 || fieldNum > MaxFieldNumber {
		return false
	}
	i, mask := bitPosition(fieldNum)
	if fieldNum <= 64 {
		return bm.primary[i]&mask != 0
	}
	return bm.secondary[i]&mask != 0
}

// ClearField clears a data element bit, dropping bit 1 with the last
// secondary field.
func (bm *BitmapManager) ClearField(fieldNum int) {
	if fieldNum < 2 || fieldNum > bm.width {
		return
	}
	i, mask := bitPosition(fieldNum)
	if fieldNum <= 64 {
		bm.primary[i] &^= mask
		return
	}
	bm.secondary[i] &^= mask
	if bm.secondary == ([BitmapSize]byte{}) {
		bm.primary[0] &^= 0x80
	}
}

// GetPresentFields returns the set data elements in ascending order.
func (bm *BitmapManager) GetPresentFields() []int {
	fields := make([]int, 0, 16)
	for n := 2; n <= bm.width; n++ {
		if bm.IsFieldSet(n) {
			fields = append(fields, n)
		}
	}
	return fields
}

func (bm *BitmapManager) HasSecondaryBitmap() bool {
	return bm.primary[0]&0x80 != 0
}

// Bytes returns the raw bitmap, 8 or 16 bytes.
func (bm *BitmapManager) Bytes() []byte {
	out := append([]byte(nil), bm.primary[:]...)
	if bm.HasSecondaryBitmap() {
		out = append(out, bm.secondary[:]...)
	}
	return out
}

// AppendBitmap writes the bitmap in the given encoding.
func (bm *BitmapManager) AppendBitmap(dst []byte, encoding BitmapEncoding) []byte {
	raw := bm.Bytes()
	if encoding == BitmapEncodingHex {
		return append(dst, hexUpper(raw)...)
	}
	return append(dst, raw...)
}

// UnpackBitmap reads the bitmap from data and returns the bytes consumed.
func (bm *BitmapManager) UnpackBitmap(data []byte, encoding BitmapEncoding) (int, error) {
	unit := BitmapSize
	if encoding == BitmapEncodingHex {
		unit = BitmapSize * 2
	}
	if err := bm.readHalf(bm.primary[:], data, unit, encoding); err != nil {
		return 0, err
	}
	if !bm.HasSecondaryBitmap() {
		return unit, nil
	}
	if bm.width < 128 {
		return 0, fmt.Errorf("%w: secondary bitmap present in a %d field schema", ErrInvalidBitmap, bm.width)
	}
	if err := bm.readHalf(bm.secondary[:], data[unit:], unit, encoding); err != nil {
		return 0, err
	}
	return unit * 2, nil
}

func (bm *BitmapManager) readHalf(dst, data []byte, unit int, encoding BitmapEncoding) error {
	if len(data) < unit {
		return truncated("bitmap", unit, len(data))
	}
	if encoding == BitmapEncodingHex {
		if _, err := hex.Decode(dst, data[:unit]); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBitmap, err)
		}
		return nil
	}
	copy(dst, data[:unit])
	return nil
}

// Reset clears all bits.
func (bm *BitmapManager) Reset() {
	bm.primary = [BitmapSize]byte{}
	bm.secondary = [BitmapSize]byte{}
}
