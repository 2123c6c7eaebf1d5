package iso8583

import "sync"

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{
			errors: make([]error, 0, 4),
		}
	},
}

// Builder assembles a Message fluently and reports the first error at
// Build. A Builder owns its message until Build hands it over; setters
// called after that record ErrBuilderConsumed.
type Builder struct {
	msg    *Message
	errors []error
}

func NewBuilder(schema *Schema, opts ...MessageOption) *Builder {
	b := builderPool.Get().(*Builder)
	b.msg = NewMessage(schema, opts...)
	b.errors = b.errors[:0]
	return b
}

// Release returns the builder to the pool.
func (b *Builder) Release() {
	b.msg = nil
	b.errors = b.errors[:0]
	builderPool.Put(b)
}

// ready reports whether the builder still owns a message.
func (b *Builder) ready() bool {
	if b.msg == nil {
		b.errors = append(b.errors, ErrBuilderConsumed)
		return false
	}
	return true
}

func (b *Builder) TPDU(tpdu string) *Builder {
	if b.ready() {
		b.msg.SetTPDU(tpdu)
	}
	return b
}

func (b *Builder) Header(header string) *Builder {
	if b.ready() {
		b.msg.SetHeader(header)
	}
	return b
}

func (b *Builder) MTI(mti string) *Builder {
	if !b.ready() {
		return b
	}
	if len(mti) != 4 {
		b.errors = append(b.errors, ErrInvalidMTI)
		return b
	}
	b.msg.SetMTI(mti)
	return b
}

func (b *Builder) Field(index int, value string) *Builder {
	if !b.ready() {
		return b
	}
	if err := b.msg.SetValue(index, value); err != nil {
		b.errors = append(b.errors, err)
	}
	return b
}

// TLV stores a TLV object in a field configured with WithTLVField.
func (b *Builder) TLV(index int, obj *TLVObject) *Builder {
	if !b.ready() {
		return b
	}
	if err := b.msg.SetTLV(index, obj); err != nil {
		b.errors = append(b.errors, err)
	}
	return b
}

func (b *Builder) PAN(pan string) *Builder {
	return b.Field(2, pan)
}

func (b *Builder) ProcessingCode(code string) *Builder {
	return b.Field(3, code)
}

func (b *Builder) Amount(amount string) *Builder {
	return b.Field(4, amount)
}

func (b *Builder) STAN(stan string) *Builder {
	return b.Field(11, stan)
}

func (b *Builder) Build() (*Message, error) {
	if len(b.errors) > 0 {
		return nil, b.errors[0]
	}
	if b.msg == nil {
		return nil, ErrBuilderConsumed
	}
	msg := b.msg
	b.msg = nil
	return msg, nil
}

func (b *Builder) MustBuild() *Message {
	msg, err := b.Build()
	if err != nil {
		panic(err)
	}
	return msg
}
