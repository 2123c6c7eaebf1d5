package iso8583

import "log/slog"

// SchemaOption configures a Schema in NewSchema.
type SchemaOption func(*Schema)

// WithBitmapWidth selects a 64 or 128 field schema.
func WithBitmapWidth(width int) SchemaOption {
	return func(s *Schema) {
		s.bitmapWidth = width
	}
}

// WithStrictCharCase rejects lower-case hex letters in BCD values.
func WithStrictCharCase(strict bool) SchemaOption {
	return func(s *Schema) {
		s.strictCharCase = strict
	}
}

// WithCharset sets the IANA charset used by CHAR fields.
func WithCharset(name string) SchemaOption {
	return func(s *Schema) {
		s.charsetName = name
	}
}

func WithLengthIndicator(config LengthIndicatorConfig) SchemaOption {
	return func(s *Schema) {
		s.lengthIndicator = config
	}
}

func WithField(index int, ft FieldType) SchemaOption {
	return func(s *Schema) {
		s.fields[index] = ft
	}
}

func WithFields(fields map[int]FieldType) SchemaOption {
	return func(s *Schema) {
		for index, ft := range fields {
			s.fields[index] = ft
		}
	}
}

func WithSpecialField(index int, h SpecialFieldHandler) SchemaOption {
	return func(s *Schema) {
		s.special[index] = h
	}
}

// WithTLVField marks a field as TLV encoded for Message.TLV and SetTLV.
func WithTLVField(index int, parser *TLVParser) SchemaOption {
	return func(s *Schema) {
		s.tlvParsers[index] = parser
	}
}

func WithLogger(logger *slog.Logger) SchemaOption {
	return func(s *Schema) {
		s.logger = logger
	}
}

// MessageOption configures a Message in NewMessage.
type MessageOption func(*Message)

func WithTPDU(tpdu string) MessageOption {
	return func(m *Message) {
		m.tpdu = tpdu
	}
}

func WithHeader(header string) MessageOption {
	return func(m *Message) {
		m.header = header
	}
}

func WithMTI(mti string) MessageOption {
	return func(m *Message) {
		m.mti = mti
	}
}
