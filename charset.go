package iso8583

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Charset maps CHAR field text to bytes. UTF-8 is a passthrough so that
// arbitrary bytes survive a decode and re-encode unchanged.
type Charset struct {
	name string
	enc  encoding.Encoding
}

// UTF8 is the default charset.
var UTF8 = &Charset{name: "UTF-8"}

// LookupCharset resolves an IANA charset name such as "GBK" or
// "ISO-8859-1".
func LookupCharset(name string) (*Charset, error) {
	switch strings.ToUpper(name) {
	case "", "UTF-8", "UTF8":
		return UTF8, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCharset, name)
	}
	canonical, err := ianaindex.IANA.Name(enc)
	if err != nil {
		canonical = name
	}
	return &Charset{name: canonical, enc: enc}, nil
}

func (c *Charset) Name() string { return c.name }

func (c *Charset) Encode(s string) ([]byte, error) {
	if c.enc == nil {
		return []byte(s), nil
	}
	b, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.name, err)
	}
	return b, nil
}

func (c *Charset) Decode(b []byte) (string, error) {
	if c.enc == nil {
		return string(b), nil
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.name, err)
	}
	return string(out), nil
}
