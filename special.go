package iso8583

// SpecialFieldHandler overrides the configured FieldType of one field
// based on the message being encoded or decoded. During decoding the
// message holds the header parts and every field with a lower index.
// Returning false falls back to the schema's plain FieldType.
type SpecialFieldHandler interface {
	FieldType(m *Message) (FieldType, bool)
}

// SpecialFieldHandlerFunc adapts a function to SpecialFieldHandler.
type SpecialFieldHandlerFunc func(m *Message) (FieldType, bool)

func (f SpecialFieldHandlerFunc) FieldType(m *Message) (FieldType, bool) {
	return f(m)
}

// MTIFieldTypes switches a field's type on the message MTI, e.g. field 62
// carrying binary key material only in 0810 sign-on responses.
type MTIFieldTypes map[string]FieldType

func (h MTIFieldTypes) FieldType(m *Message) (FieldType, bool) {
	ft, ok := h[m.MTI()]
	return ft, ok
}
