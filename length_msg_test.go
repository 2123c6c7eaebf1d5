package iso8583

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLengthIndicatorRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		config  LengthIndicatorConfig
		msgLen  int
		wantHex string
	}{
		{"binary 2", LengthIndicatorConfig{Type: LengthIndicatorBinary, Length: 2}, 65, "0041"},
		{"binary 4", LengthIndicatorConfig{Type: LengthIndicatorBinary, Length: 4}, 0x0102, "00000102"},
		{"ascii 4", LengthIndicatorConfig{Type: LengthIndicatorASCII, Length: 4}, 121, "30313231"},
		{"bcd 2", LengthIndicatorConfig{Type: LengthIndicatorBCD, Length: 2}, 121, "0121"},
		{"hex 4", LengthIndicatorConfig{Type: LengthIndicatorHex, Length: 4}, 200, "30304338"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.config.Length)
			n, err := WriteLengthIndicator(tt.msgLen, buf, tt.config)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.wantHex, hexUpper(buf[:n])); diff != "" {
				t.Errorf("WriteLengthIndicator mismatch (-want +got):\n%s", diff)
			}

			got, consumed, err := ReadLengthIndicator(buf, tt.config)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.msgLen || consumed != tt.config.Length {
				t.Errorf("ReadLengthIndicator = %d, %d; want %d, %d", got, consumed, tt.msgLen, tt.config.Length)
			}
		})
	}
}

func TestLengthIndicatorNone(t *testing.T) {
	cfg := LengthIndicatorConfig{Type: LengthIndicatorNone}
	n, err := WriteLengthIndicator(10, nil, cfg)
	if err != nil || n != 0 {
		t.Errorf("WriteLengthIndicator = %d, %v; want 0, nil", n, err)
	}
	got, consumed, err := ReadLengthIndicator([]byte{1, 2, 3}, cfg)
	if err != nil || got != 3 || consumed != 0 {
		t.Errorf("ReadLengthIndicator = %d, %d, %v; want 3, 0, nil", got, consumed, err)
	}
}

func TestLengthIndicatorErrors(t *testing.T) {
	t.Run("overflow", func(t *testing.T) {
		cfg := LengthIndicatorConfig{Type: LengthIndicatorBCD, Length: 1}
		_, err := WriteLengthIndicator(100, make([]byte, 1), cfg)
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("error = %v; want ErrInvalidLength", err)
		}
	})
	t.Run("short read", func(t *testing.T) {
		_, _, err := ReadLengthIndicator([]byte{0x00}, DefaultLengthIndicator)
		if !errors.Is(err, ErrTruncatedMessage) {
			t.Errorf("error = %v; want ErrTruncatedMessage", err)
		}
	})
	t.Run("non decimal ascii", func(t *testing.T) {
		cfg := LengthIndicatorConfig{Type: LengthIndicatorASCII, Length: 2}
		_, _, err := ReadLengthIndicator([]byte("1A"), cfg)
		if !errors.Is(err, ErrInvalidLength) {
			t.Errorf("error = %v; want ErrInvalidLength", err)
		}
	})
}

func TestLengthIndicatorValidate(t *testing.T) {
	tests := []struct {
		config LengthIndicatorConfig
		valid  bool
	}{
		{LengthIndicatorConfig{Type: LengthIndicatorNone}, true},
		{LengthIndicatorConfig{Type: LengthIndicatorBinary, Length: 2}, true},
		{LengthIndicatorConfig{Type: LengthIndicatorBinary, Length: 3}, false},
		{LengthIndicatorConfig{Type: LengthIndicatorASCII, Length: 10}, false},
		{LengthIndicatorConfig{Type: LengthIndicatorBCD, Length: 4}, true},
		{LengthIndicatorConfig{Type: LengthIndicatorHex, Length: 2}, false},
	}

	for _, tt := range tests {
		err := tt.config.validate()
		if (err == nil) != tt.valid {
			t.Errorf("%s/%d validate() = %v; want valid=%v", tt.config.Type, tt.config.Length, err, tt.valid)
		}
	}
}
