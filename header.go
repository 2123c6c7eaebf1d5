package iso8583

import "fmt"

// DataHeader describes the parts written before the data elements: TPDU,
// application header, MTI and bitmap. A zero Length on TPDU, Header or MTI
// leaves that part out of the message.
//
// The Bitmap type only selects the packing: the BCD encodings write raw
// bytes, CHAR writes uppercase hex text.
type DataHeader struct {
	TPDU   FieldType
	Header FieldType
	MTI    FieldType
	Bitmap FieldType
}

func NewDataHeader(tpdu, header, mti, bitmap FieldType) DataHeader {
	return DataHeader{TPDU: tpdu, Header: header, MTI: mti, Bitmap: bitmap}
}

// DefaultDataHeader is the POS terminal layout: 5-byte TPDU, 6-byte header,
// 2-byte MTI and a binary bitmap.
func DefaultDataHeader() DataHeader {
	return DataHeader{
		TPDU:   Fixed(EncodingNumeric, 10),
		Header: Fixed(EncodingNumeric, 12),
		MTI:    Fixed(EncodingNumeric, 4),
		Bitmap: Fixed(EncodingNumeric, 16),
	}
}

func (h DataHeader) validate() error {
	for _, p := range h.parts() {
		if !p.ft.IsFixed() {
			return fmt.Errorf("%w: %s must be a fixed field type, got %s", ErrCodecConfig, p.name, p.ft.Name())
		}
		if p.ft.Length == 0 {
			continue
		}
		if err := p.ft.validate(); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
	}
	if !h.Bitmap.IsFixed() {
		return fmt.Errorf("%w: bitmap must be a fixed field type, got %s", ErrCodecConfig, h.Bitmap.Name())
	}
	return nil
}

func (h DataHeader) bitmapEncoding() BitmapEncoding {
	if h.Bitmap.Encoding == EncodingChar {
		return BitmapEncodingHex
	}
	return BitmapEncodingBinary
}

// headerPart is one optional fixed element of the header.
type headerPart struct {
	name string
	ft   FieldType
}

func (h DataHeader) parts() []headerPart {
	return []headerPart{{"tpdu", h.TPDU}, {"header", h.Header}, {"mti", h.MTI}}
}
