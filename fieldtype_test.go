package iso8583

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

func TestFieldTypeEncodeDecode(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		value   string
		wantHex string
		decoded string // defaults to value
	}{
		{"numeric fixed default fill", Fixed(EncodingNumeric, 8), "1234567", "12345670", "12345670"},
		{"numeric fixed right append A", Fixed(EncodingNumeric, 10).WithFill(RightAppendStrategy('A', false)), "123451234", "123451234A", "123451234A"},
		{"numeric fixed odd length", Fixed(EncodingNumeric, 3), "123", "1230", ""},
		{"numeric fixed odd length left fill", Fixed(EncodingNumeric, 3).WithFill(LeftAppendStrategy('0', false)), "123", "0123", ""},
		{"llvar numeric left append B", Variable(EncodingNumeric, LengthLLVAR).WithFill(LeftAppendStrategy('B', false)), "11111", "05B11111", ""},
		{"lllvar numeric overflow clamp", Variable(EncodingNumeric, LengthLLLVAR).WithFill(RightAppendStrategy('X', true)), "222", "000322FF", "22F"},
		{"llllvar numeric hex fill", Variable(EncodingNumeric, LengthLLLLVAR).WithFill(RightAppendStrategy('D', true)), "123456789", "000009123456789D", ""},
		{"llvar char", Variable(EncodingChar, LengthLLVAR), "1234567", "0731323334353637", ""},
		{"lllvar char", Variable(EncodingChar, LengthLLLVAR), "ABCDEF", "0006414243444546", ""},
		{"char fixed space fill", Fixed(EncodingChar, 4), "AB", "41422020", "AB  "},
		{"char fixed left zero fill", Fixed(EncodingChar, 4).WithFill(LeftAppendStrategy('0', false)), "7", "30303037", "0007"},
		{"llvar char ascii prefix", Variable(EncodingChar, LengthLLVAR).WithPrefix(PrefixASCII), "ABC", "3033414243", ""},
		{"lllvar numeric ascii prefix", Variable(EncodingNumeric, LengthLLLVAR).WithPrefix(PrefixASCII), "123", "3030331230", ""},
		{"byte numeric fixed", Fixed(EncodingByteNumeric, 5), "1234506789", "1234506789", ""},
		{"byte numeric fixed fill A", Fixed(EncodingByteNumeric, 10).WithFill(RightAppendStrategy('A', false)), "12345", "12345AAAAAAAAAAAAAAA", "12345AAAAAAAAAAAAAAA"},
		{"byte numeric fixed left fill A", Fixed(EncodingByteNumeric, 4).WithFill(LeftAppendStrategy('A', false)), "1234", "AAAA1234", "AAAA1234"},
		{"lllvar byte numeric odd", Variable(EncodingByteNumeric, LengthLLLVAR), "123", "00021230", "1230"},
		{"empty llvar char", Variable(EncodingChar, LengthLLVAR), "", "00", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ft.Encode(tt.value)
			if err != nil {
				t.Fatalf("Encode(%q): %v", tt.value, err)
			}
			if diff := cmp.Diff(mustHex(t, tt.wantHex), got); diff != "" {
				t.Fatalf("Encode mismatch (-want +got):\n%s", diff)
			}

			value, n, err := tt.ft.Decode(got, 0)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			want := tt.decoded
			if want == "" {
				want = tt.value
			}
			if value != want || n != len(got) {
				t.Errorf("Decode = %q, %d; want %q, %d", value, n, want, len(got))
			}

			again, err := tt.ft.Encode(value)
			if err != nil {
				t.Fatalf("re-Encode(%q): %v", value, err)
			}
			if diff := cmp.Diff(got, again); diff != "" {
				t.Errorf("re-encode not idempotent (-first +second):\n%s", diff)
			}
		})
	}
}

func TestFieldTypeUnitLengths(t *testing.T) {
	const value = "1234506789"
	ascii := "31323334353036373839"
	tests := []struct {
		ft      FieldType
		wantHex string
	}{
		{Fixed(EncodingNumeric, 10), value},
		{Fixed(EncodingByteNumeric, 5), value},
		{Fixed(EncodingChar, 10), ascii},
		{Variable(EncodingNumeric, LengthLLVAR), "10" + value},
		{Variable(EncodingByteNumeric, LengthLLVAR), "05" + value},
		{Variable(EncodingChar, LengthLLVAR), "10" + ascii},
		{Variable(EncodingNumeric, LengthLLLVAR), "0010" + value},
		{Variable(EncodingByteNumeric, LengthLLLVAR), "0005" + value},
		{Variable(EncodingChar, LengthLLLVAR), "0010" + ascii},
		{Variable(EncodingNumeric, LengthLLLLVAR), "000010" + value},
		{Variable(EncodingByteNumeric, LengthLLLLVAR), "000005" + value},
		{Variable(EncodingChar, LengthLLLLVAR), "000010" + ascii},
	}

	for _, tt := range tests {
		t.Run(tt.ft.String(), func(t *testing.T) {
			got, err := tt.ft.Encode(value)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(strings.ToUpper(tt.wantHex), hexUpper(got)); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFieldTypeEncodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		value   string
		wantErr error
	}{
		{"numeric too long", Fixed(EncodingNumeric, 4), "12345", ErrFieldLengthMismatch},
		{"numeric too short", Fixed(EncodingNumeric, 8), "12", ErrFieldLengthMismatch},
		{"numeric odd short by two", Fixed(EncodingNumeric, 7), "12345", ErrFieldLengthMismatch},
		{"numeric empty", Fixed(EncodingNumeric, 4), "", ErrFieldLengthMismatch},
		{"char too long", Fixed(EncodingChar, 2), "ABC", ErrFieldLengthMismatch},
		{"byte numeric too long", Fixed(EncodingByteNumeric, 2), "123456", ErrFieldLengthMismatch},
		{"bad digit", Fixed(EncodingNumeric, 4), "12G4", ErrInvalidDigit},
		{"fill overflow without clamp", Variable(EncodingNumeric, LengthLLVAR).WithFill(RightAppendStrategy('X', false)), "123", ErrFillOverflow},
		{"prefix overflow", Variable(EncodingChar, LengthLLVAR), strings.Repeat("A", 100), ErrInvalidLength},
		{"ascii prefix overflow", Variable(EncodingNumeric, LengthLLVAR).WithPrefix(PrefixASCII), strings.Repeat("1", 100), ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ft.Encode(tt.value)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Encode(%q) error = %v; want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestFieldTypeLengthErrorDetails(t *testing.T) {
	_, err := Fixed(EncodingByteNumeric, 2).Encode("123456")
	var le *LengthError
	if !errors.As(err, &le) {
		t.Fatalf("error %v is not a *LengthError", err)
	}
	if diff := cmp.Diff(&LengthError{Expected: 2, Actual: 3}, le); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestFixedNumericLengthError(t *testing.T) {
	_, err := Fixed(EncodingNumeric, 8).Encode("12")
	var le *LengthError
	if !errors.As(err, &le) {
		t.Fatalf("error %v is not a *LengthError", err)
	}
	if diff := cmp.Diff(&LengthError{Expected: 8, Actual: 2}, le); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldTypeDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		ft      FieldType
		data    string
		wantErr error
	}{
		{"fixed numeric short", Fixed(EncodingNumeric, 6), "1234", ErrTruncatedMessage},
		{"llvar char short content", Variable(EncodingChar, LengthLLVAR), "05414243", ErrTruncatedMessage},
		{"lllvar missing prefix", Variable(EncodingChar, LengthLLLVAR), "00", ErrTruncatedMessage},
		{"non decimal prefix", Variable(EncodingChar, LengthLLVAR), "1A4142", ErrInvalidLength},
		{"non decimal ascii prefix", Variable(EncodingChar, LengthLLVAR).WithPrefix(PrefixASCII), "3341", ErrInvalidLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.ft.Decode(mustHex(t, tt.data), 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Decode error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}

func TestFieldTypeDecodeAtOffset(t *testing.T) {
	data := mustHex(t, "FFFF0731323334353637EE")
	value, n, err := Variable(EncodingChar, LengthLLVAR).Decode(data, 2)
	if err != nil {
		t.Fatal(err)
	}
	if value != "1234567" || n != 8 {
		t.Errorf("Decode = %q, %d; want %q, 8", value, n, "1234567")
	}
}

func TestOverflowClampAlwaysFF(t *testing.T) {
	fs := RightAppendStrategy('Z', true)
	tests := []struct {
		ft      FieldType
		value   string
		wantHex string
	}{
		{Fixed(EncodingNumeric, 3).WithFill(fs), "123", "12FF"},
		{Fixed(EncodingNumeric, 5).WithFill(fs), "12345", "1234FF"},
		{Fixed(EncodingByteNumeric, 3).WithFill(fs), "1", "FFFFFF"},
		{Fixed(EncodingNumeric, 3).WithFill(LeftAppendStrategy(0x1F, true)), "123", "FF23"},
	}

	for _, tt := range tests {
		got, err := tt.ft.Encode(tt.value)
		if err != nil {
			t.Fatalf("Encode(%q): %v", tt.value, err)
		}
		if diff := cmp.Diff(tt.wantHex, hexUpper(got)); diff != "" {
			t.Errorf("%s %q mismatch (-want +got):\n%s", tt.ft, tt.value, diff)
		}
	}
}

func TestParseFieldType(t *testing.T) {
	tests := []struct {
		name    string
		length  int
		want    FieldType
		wantErr bool
	}{
		{"NUMERIC", 6, Fixed(EncodingNumeric, 6), false},
		{"char", 2, Fixed(EncodingChar, 2), false},
		{"BYTE_NUMERIC", 8, Fixed(EncodingByteNumeric, 8), false},
		{"LLVAR_NUMERIC", 0, Variable(EncodingNumeric, LengthLLVAR), false},
		{"LLLVAR_CHAR", 99, Variable(EncodingChar, LengthLLLVAR), false},
		{"LLLLVAR_BYTE_NUMERIC", 0, Variable(EncodingByteNumeric, LengthLLLLVAR), false},
		{"NUMERIC", 0, FieldType{}, true},
		{"LVAR_CHAR", 0, FieldType{}, true},
		{"BINARY", 8, FieldType{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFieldType(tt.name, tt.length)
			if tt.wantErr {
				if !errors.Is(err, ErrCodecConfig) {
					t.Fatalf("error = %v; want ErrCodecConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Mismatch (-want +got):\n%s", diff)
			}
			if got.Name() != strings.ToUpper(tt.name) {
				t.Errorf("Name() = %q; want %q", got.Name(), strings.ToUpper(tt.name))
			}
		})
	}
}

func TestFieldValueHelpers(t *testing.T) {
	fv := FieldValue{value: "00001230", fieldType: Fixed(EncodingNumeric, 8).WithFill(LeftAppendStrategy('0', false))}
	if got := fv.Trimmed(); got != "1230" {
		t.Errorf("Trimmed() = %q; want %q", got, "1230")
	}
	n, err := fv.Int()
	if err != nil || n != 1230 {
		t.Errorf("Int() = %d, %v; want 1230", n, err)
	}

	odd := FieldValue{value: "123", fieldType: Variable(EncodingNumeric, LengthLLVAR)}
	b, err := odd.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{0x12, 0x30}, b); diff != "" {
		t.Errorf("Bytes mismatch (-want +got):\n%s", diff)
	}

	text := FieldValue{value: "AB  ", fieldType: Fixed(EncodingChar, 4)}
	if got := text.Trimmed(); got != "AB" {
		t.Errorf("Trimmed() = %q; want %q", got, "AB")
	}
}
