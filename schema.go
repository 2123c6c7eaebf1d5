package iso8583

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Schema is the message layout shared by every message of one link: the
// data header, the field types by index, per-field special handlers and
// the charset. Build it once at startup. Encoding and decoding only read
// it, so one Schema may serve many goroutines; Set, SetSpecialFieldHandle,
// SetTLVParser and SetCharset must not run concurrently with them.
type Schema struct {
	header          DataHeader
	bitmapWidth     int
	strictCharCase  bool
	charsetName     string
	charset         *Charset
	lengthIndicator LengthIndicatorConfig
	fields          map[int]FieldType
	special         map[int]SpecialFieldHandler
	tlvParsers      map[int]*TLVParser
	logger          *slog.Logger
}

// NewSchema builds a Schema from a data header and options. Defaults: 64
// field bitmap, UTF-8, 2-byte binary length indicator.
func NewSchema(header DataHeader, opts ...SchemaOption) (*Schema, error) {
	s := &Schema{
		header:          header,
		bitmapWidth:     DefaultBitmapWidth,
		lengthIndicator: DefaultLengthIndicator,
		fields:          make(map[int]FieldType),
		special:         make(map[int]SpecialFieldHandler),
		tlvParsers:      make(map[int]*TLVParser),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.bitmapWidth != 64 && s.bitmapWidth != 128 {
		return nil, fmt.Errorf("%w: bitmap width %d (must be 64 or 128)", ErrCodecConfig, s.bitmapWidth)
	}
	if err := header.validate(); err != nil {
		return nil, err
	}
	if err := s.lengthIndicator.validate(); err != nil {
		return nil, err
	}
	if err := s.SetCharset(s.charsetName); err != nil {
		return nil, err
	}
	for index, ft := range s.fields {
		if err := s.checkIndex(index); err != nil {
			return nil, err
		}
		if err := ft.validate(); err != nil {
			return nil, withField(index, err)
		}
	}
	for index, h := range s.special {
		if err := s.checkIndex(index); err != nil {
			return nil, err
		}
		if h == nil {
			return nil, withField(index, fmt.Errorf("%w: nil special handler", ErrCodecConfig))
		}
	}
	for index := range s.tlvParsers {
		if err := s.checkIndex(index); err != nil {
			return nil, err
		}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func (s *Schema) checkIndex(index int) error {
	if index < 2 || index > s.bitmapWidth {
		return fmt.Errorf("%w: %d outside 2..%d", ErrInvalidIndex, index, s.bitmapWidth)
	}
	return nil
}

// Set registers the plain FieldType of a field, replacing any previous one.
func (s *Schema) Set(index int, ft FieldType) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if err := ft.validate(); err != nil {
		return withField(index, err)
	}
	s.fields[index] = ft
	return nil
}

// MustSet is Set for setup code; it panics on error and returns s for
// chaining.
func (s *Schema) MustSet(index int, ft FieldType) *Schema {
	if err := s.Set(index, ft); err != nil {
		panic(err)
	}
	return s
}

// SetSpecialFieldHandle registers a handler that takes precedence over the
// plain FieldType of index whenever it reports a match.
func (s *Schema) SetSpecialFieldHandle(index int, h SpecialFieldHandler) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	if h == nil {
		return withField(index, fmt.Errorf("%w: nil special handler", ErrCodecConfig))
	}
	s.special[index] = h
	return nil
}

// SetTLVParser marks a field as TLV data decoded with p.
func (s *Schema) SetTLVParser(index int, p *TLVParser) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tlvParsers[index] = p
	return nil
}

// SetCharset switches the charset of CHAR fields; "" selects UTF-8.
func (s *Schema) SetCharset(name string) error {
	cs, err := LookupCharset(name)
	if err != nil {
		return err
	}
	s.charsetName = name
	s.charset = cs
	return nil
}

func (s *Schema) Charset() *Charset                      { return s.charset }
func (s *Schema) BitmapWidth() int                       { return s.bitmapWidth }
func (s *Schema) StrictCharCase() bool                   { return s.strictCharCase }
func (s *Schema) DataHeader() DataHeader                 { return s.header }
func (s *Schema) LengthIndicator() LengthIndicatorConfig { return s.lengthIndicator }

// FieldType returns the plain FieldType registered for index.
func (s *Schema) FieldType(index int) (FieldType, bool) {
	ft, ok := s.fields[index]
	return ft, ok
}

// Fields returns the configured field indices in ascending order.
func (s *Schema) Fields() []int {
	out := make([]int, 0, len(s.fields))
	for index := range s.fields {
		out = append(out, index)
	}
	sort.Ints(out)
	return out
}

// NewMessage returns an empty message bound to s.
func (s *Schema) NewMessage(opts ...MessageOption) *Message {
	return NewMessage(s, opts...)
}

// resolve picks the FieldType for index: a matching special handler first,
// then the plain type.
func (s *Schema) resolve(index int, m *Message) (FieldType, error) {
	if h, ok := s.special[index]; ok {
		if ft, ok := h.FieldType(m); ok {
			return ft, nil
		}
	}
	if ft, ok := s.fields[index]; ok {
		return ft, nil
	}
	return FieldType{}, ErrUnconfiguredField
}

func (s *Schema) codec() codecOptions {
	return codecOptions{charset: s.charset, strictCase: s.strictCharCase}
}

// Encode returns the wire form of m, total-length descriptor included.
func (s *Schema) Encode(m *Message) ([]byte, error) {
	return s.encode(m, true)
}

// EncodeWithoutMsgLength returns the wire form of m without the
// total-length descriptor.
func (s *Schema) EncodeWithoutMsgLength(m *Message) ([]byte, error) {
	return s.encode(m, false)
}

func (s *Schema) encode(m *Message, withLength bool) ([]byte, error) {
	buf := getBuffer()
	n := 0
	if withLength {
		n = s.lengthIndicator.size()
		buf = append(buf, make([]byte, n)...)
	}

	body, err := s.appendBody(buf, m)
	if err != nil {
		putBuffer(buf)
		return nil, err
	}
	if withLength {
		if _, err := WriteLengthIndicator(len(body)-n, body[:n], s.lengthIndicator); err != nil {
			putBuffer(body)
			return nil, err
		}
	}
	out := make([]byte, len(body))
	copy(out, body)
	putBuffer(body)
	return out, nil
}

func (s *Schema) appendBody(dst []byte, m *Message) ([]byte, error) {
	var err error
	opts := s.codec()
	for _, p := range s.header.parts() {
		if p.ft.Length == 0 {
			continue
		}
		dst, err = p.ft.encode(dst, *m.headerPart(p.name), opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.name, err)
		}
	}

	indices := m.Fields()
	bm := NewBitmapManager(s.bitmapWidth)
	for _, index := range indices {
		if err := bm.SetField(index); err != nil {
			return nil, withField(index, err)
		}
	}
	dst = bm.AppendBitmap(dst, s.header.bitmapEncoding())

	for _, index := range indices {
		ft, err := s.resolve(index, m)
		if err != nil {
			return nil, withField(index, err)
		}
		dst, err = ft.encode(dst, m.values[index].value, opts)
		if err != nil {
			return nil, withField(index, err)
		}
	}
	return dst, nil
}

// Parse decodes a message that starts with the total-length descriptor.
func (s *Schema) Parse(data []byte) (*Message, error) {
	msgLen, n, err := ReadLengthIndicator(data, s.lengthIndicator)
	if err != nil {
		return nil, err
	}
	if rest := len(data) - n; msgLen > rest {
		return nil, truncated("message body", msgLen, rest)
	} else if msgLen < rest {
		return nil, fmt.Errorf("%w: %d bytes after declared length %d", ErrTrailingData, rest-msgLen, msgLen)
	}
	return s.ParseWithoutMsgLength(data[n:])
}

// ParseWithoutMsgLength decodes a message with no total-length descriptor.
func (s *Schema) ParseWithoutMsgLength(data []byte) (*Message, error) {
	m := NewMessage(s)
	opts := s.codec()
	offset := 0

	for _, p := range s.header.parts() {
		if p.ft.Length == 0 {
			continue
		}
		v, n, err := p.ft.decode(data, offset, opts)
		if err != nil {
			return nil, s.decodeFailed(p.name, offset, fmt.Errorf("%s: %w", p.name, err))
		}
		*m.headerPart(p.name) = v
		offset += n
	}

	bm := NewBitmapManager(s.bitmapWidth)
	n, err := bm.UnpackBitmap(data[offset:], s.header.bitmapEncoding())
	if err != nil {
		return nil, s.decodeFailed("bitmap", offset, err)
	}
	offset += n

	for _, index := range bm.GetPresentFields() {
		ft, err := s.resolve(index, m)
		if err != nil {
			return nil, s.decodeFailed(fmt.Sprint(index), offset, withField(index, err))
		}
		v, n, err := ft.decode(data, offset, opts)
		if err != nil {
			return nil, s.decodeFailed(fmt.Sprint(index), offset, withField(index, err))
		}
		m.values[index] = FieldValue{value: v, fieldType: ft}
		offset += n
	}

	if offset != len(data) {
		return nil, s.decodeFailed("end", offset, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(data)-offset))
	}
	return m, nil
}

// ParseHex decodes hex text of a message with its total-length descriptor.
func (s *Schema) ParseHex(str string) (*Message, error) {
	data, err := decodeHex(strings.TrimSpace(str))
	if err != nil {
		return nil, err
	}
	return s.Parse(data)
}

// ParseHexWithoutMsgLength decodes hex text of a message with no
// total-length descriptor.
func (s *Schema) ParseHexWithoutMsgLength(str string) (*Message, error) {
	data, err := decodeHex(strings.TrimSpace(str))
	if err != nil {
		return nil, err
	}
	return s.ParseWithoutMsgLength(data)
}

func (s *Schema) decodeFailed(part string, offset int, err error) error {
	s.logger.Debug("iso8583: decode failed", slog.String("part", part), slog.Int("offset", offset), slog.Any("error", err))
	return err
}
