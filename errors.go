package iso8583

import "fmt"

var (
	ErrInvalidMTI          = fmt.Errorf("invalid MTI")
	ErrFieldNotFound       = fmt.Errorf("field not found")
	ErrInvalidLength       = fmt.Errorf("invalid length")
	ErrInvalidBitmap       = fmt.Errorf("invalid bitmap")
	ErrInvalidTLV          = fmt.Errorf("invalid TLV data")
	ErrFieldLengthMismatch = fmt.Errorf("field length mismatch")
	ErrTruncatedMessage    = fmt.Errorf("truncated message")
	ErrTrailingData        = fmt.Errorf("trailing data after last field")
	ErrUnconfiguredField   = fmt.Errorf("field not configured")
	ErrInvalidIndex        = fmt.Errorf("invalid field index")
	ErrUnsupportedCharset  = fmt.Errorf("unsupported charset")
	ErrCodecConfig         = fmt.Errorf("invalid codec configuration")
	ErrInvalidDigit        = fmt.Errorf("invalid BCD digit")
	ErrFillOverflow        = fmt.Errorf("fill value does not fit in a nibble")
	ErrBuilderConsumed     = fmt.Errorf("builder already built or released")
)

// FieldError attaches a field index to a codec error.
type FieldError struct {
	Field int
	Err   error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("field %d: %v", fe.Field, fe.Err)
}

func (fe *FieldError) Unwrap() error { return fe.Err }

// LengthError reports a value whose unit count does not fit its field.
// Field is 0 when the error is raised outside a message.
type LengthError struct {
	Field    int
	Expected int
	Actual   int
}

func (le *LengthError) Error() string {
	if le.Field == 0 {
		return fmt.Sprintf("%v: expected %d, got %d", ErrFieldLengthMismatch, le.Expected, le.Actual)
	}
	return fmt.Sprintf("field %d: %v: expected %d, got %d", le.Field, ErrFieldLengthMismatch, le.Expected, le.Actual)
}

func (le *LengthError) Is(target error) bool { return target == ErrFieldLengthMismatch }

type TLVError struct {
	Tag []byte
	Err error
}

func (te *TLVError) Error() string {
	return fmt.Sprintf("TLV tag %X: %v", te.Tag, te.Err)
}

func (te *TLVError) Unwrap() error { return te.Err }

func truncated(what string, need, have int) error {
	return fmt.Errorf("%w: %s needs %d bytes, %d left", ErrTruncatedMessage, what, need, have)
}

// withField wraps err with the field index, filling in LengthError.Field
// instead of double wrapping.
func withField(index int, err error) error {
	if err == nil {
		return nil
	}
	if le, ok := err.(*LengthError); ok && le.Field == 0 {
		le.Field = index
		return le
	}
	return &FieldError{Field: index, Err: err}
}
