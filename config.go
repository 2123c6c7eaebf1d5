package iso8583

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaConfig is the declarative form of a Schema, loadable from JSON or
// YAML.
type SchemaConfig struct {
	BitmapWidth     int                            `json:"bitmap_width" yaml:"bitmap_width"`
	Charset         string                         `json:"charset,omitempty" yaml:"charset,omitempty"`
	StrictCharCase  bool                           `json:"strict_char_case,omitempty" yaml:"strict_char_case,omitempty"`
	LengthIndicator *LengthIndicatorSpec           `json:"length_indicator,omitempty" yaml:"length_indicator,omitempty"`
	Header          HeaderSpec                     `json:"header" yaml:"header"`
	Fields          map[int]FieldConfig            `json:"fields" yaml:"fields"`
	SpecialFields   map[int]map[string]FieldConfig `json:"special_fields,omitempty" yaml:"special_fields,omitempty"` // field -> MTI -> type
	TLVFields       map[int]string                 `json:"tlv_fields,omitempty" yaml:"tlv_fields,omitempty"`         // field -> "emv" | "standard"
}

type LengthIndicatorSpec struct {
	Type   string `json:"type" yaml:"type"` // "none", "binary", "ascii", "bcd", "hex"
	Length int    `json:"length" yaml:"length"`
}

type HeaderSpec struct {
	TPDU   *FieldConfig `json:"tpdu,omitempty" yaml:"tpdu,omitempty"`
	Header *FieldConfig `json:"header,omitempty" yaml:"header,omitempty"`
	MTI    *FieldConfig `json:"mti,omitempty" yaml:"mti,omitempty"`
	Bitmap *FieldConfig `json:"bitmap,omitempty" yaml:"bitmap,omitempty"`
}

// FieldConfig names a field type the way ParseFieldType reads it.
type FieldConfig struct {
	Type   string      `json:"type" yaml:"type"` // e.g. "NUMERIC", "LLLVAR_CHAR"
	Length int         `json:"length,omitempty" yaml:"length,omitempty"`
	Prefix string      `json:"prefix,omitempty" yaml:"prefix,omitempty"` // "bcd" or "ascii"
	Fill   *FillConfig `json:"fill,omitempty" yaml:"fill,omitempty"`
}

type FillConfig struct {
	Align        string `json:"align" yaml:"align"` // "left" keeps data first, "right" pads first
	Char         string `json:"char" yaml:"char"`
	OverflowAsFF bool   `json:"overflow_as_ff,omitempty" yaml:"overflow_as_ff,omitempty"`
}

// FieldType converts the config entry.
func (c FieldConfig) FieldType() (FieldType, error) {
	ft, err := ParseFieldType(c.Type, c.Length)
	if err != nil {
		return FieldType{}, err
	}
	if ft.Prefix, err = ParsePrefixEncoding(c.Prefix); err != nil {
		return FieldType{}, err
	}
	if c.Fill != nil {
		if ft.Fill, err = c.Fill.strategy(); err != nil {
			return FieldType{}, err
		}
	}
	return ft, nil
}

func (c FillConfig) strategy() (FillStrategy, error) {
	fs := FillStrategy{OverflowAsFF: c.OverflowAsFF}
	switch strings.ToLower(c.Align) {
	case "", "left":
		fs.Align = AlignLeft
	case "right":
		fs.Align = AlignRight
	default:
		return FillStrategy{}, fmt.Errorf("%w: unknown fill alignment %q", ErrCodecConfig, c.Align)
	}
	switch len(c.Char) {
	case 0:
	case 1:
		fs.Char = c.Char[0]
	default:
		return FillStrategy{}, fmt.Errorf("%w: fill char %q is not a single byte", ErrCodecConfig, c.Char)
	}
	return fs, nil
}

func (h HeaderSpec) dataHeader() (DataHeader, error) {
	dh := DefaultDataHeader()
	parts := []struct {
		cfg *FieldConfig
		dst *FieldType
	}{{h.TPDU, &dh.TPDU}, {h.Header, &dh.Header}, {h.MTI, &dh.MTI}}
	for _, p := range parts {
		if p.cfg == nil {
			continue
		}
		if p.cfg.Length == 0 {
			*p.dst = FieldType{}
			continue
		}
		ft, err := p.cfg.FieldType()
		if err != nil {
			return DataHeader{}, err
		}
		*p.dst = ft
	}
	if h.Bitmap != nil {
		cfg := *h.Bitmap
		if cfg.Length == 0 {
			cfg.Length = 16
		}
		ft, err := cfg.FieldType()
		if err != nil {
			return DataHeader{}, err
		}
		dh.Bitmap = ft
	}
	return dh, nil
}

// Options converts the config into a data header and schema options.
func (c *SchemaConfig) Options() (DataHeader, []SchemaOption, error) {
	header, err := c.Header.dataHeader()
	if err != nil {
		return DataHeader{}, nil, fmt.Errorf("header: %w", err)
	}

	var opts []SchemaOption
	if c.BitmapWidth != 0 {
		opts = append(opts, WithBitmapWidth(c.BitmapWidth))
	}
	opts = append(opts, WithCharset(c.Charset), WithStrictCharCase(c.StrictCharCase))
	if c.LengthIndicator != nil {
		t, err := ParseLengthIndicatorType(c.LengthIndicator.Type)
		if err != nil {
			return DataHeader{}, nil, err
		}
		opts = append(opts, WithLengthIndicator(LengthIndicatorConfig{Type: t, Length: c.LengthIndicator.Length}))
	}

	for index, fc := range c.Fields {
		ft, err := fc.FieldType()
		if err != nil {
			return DataHeader{}, nil, withField(index, err)
		}
		opts = append(opts, WithField(index, ft))
	}
	for index, byMTI := range c.SpecialFields {
		h := make(MTIFieldTypes, len(byMTI))
		for mti, fc := range byMTI {
			ft, err := fc.FieldType()
			if err != nil {
				return DataHeader{}, nil, withField(index, fmt.Errorf("mti %s: %w", mti, err))
			}
			h[mti] = ft
		}
		opts = append(opts, WithSpecialField(index, h))
	}
	for index, name := range c.TLVFields {
		t, err := ParseTLVType(name)
		if err != nil {
			return DataHeader{}, nil, withField(index, err)
		}
		p := NewTLVParser(t)
		if t == TLVEMV {
			p = NewField55Parser()
		}
		opts = append(opts, WithTLVField(index, p))
	}
	return header, opts, nil
}

// NewSchemaFromConfig builds a Schema; extra options apply last.
func NewSchemaFromConfig(c *SchemaConfig, extra ...SchemaOption) (*Schema, error) {
	header, opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return NewSchema(header, append(opts, extra...)...)
}

// LoadSchemaJSON parses a JSON SchemaConfig and builds the Schema.
func LoadSchemaJSON(data []byte, extra ...SchemaOption) (*Schema, error) {
	var c SchemaConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse schema config: %w", err)
	}
	return NewSchemaFromConfig(&c, extra...)
}

// LoadSchemaYAML parses a YAML SchemaConfig and builds the Schema.
func LoadSchemaYAML(data []byte, extra ...SchemaOption) (*Schema, error) {
	var c SchemaConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse schema config: %w", err)
	}
	return NewSchemaFromConfig(&c, extra...)
}
