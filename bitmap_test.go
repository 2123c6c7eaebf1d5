package iso8583

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBitmapManager(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		fields  []int
		wantHex string
	}{
		{"primary only", 64, []int{2, 11, 64}, "4020000000000001"},
		{"sign-on request", 64, []int{11, 12, 13, 41, 42, 60, 63}, "0038000000C00012"},
		{"secondary", 128, []int{2, 3, 70}, "E0000000000000000400000000000000"},
		{"last field", 128, []int{128}, "80000000000000000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bm := NewBitmapManager(tt.width)
			for _, f := range tt.fields {
				if err := bm.SetField(f); err != nil {
					t.Fatalf("SetField(%d): %v", f, err)
				}
			}
			if diff := cmp.Diff(tt.wantHex, hexUpper(bm.Bytes())); diff != "" {
				t.Errorf("Bytes mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.fields, bm.GetPresentFields()); diff != "" {
				t.Errorf("GetPresentFields mismatch (-want +got):\n%s", diff)
			}

			decoded := NewBitmapManager(tt.width)
			n, err := decoded.UnpackBitmap(mustHex(t, tt.wantHex+"FFFF"), BitmapEncodingBinary)
			if err != nil {
				t.Fatal(err)
			}
			if n != len(tt.wantHex)/2 {
				t.Errorf("UnpackBitmap consumed %d bytes; want %d", n, len(tt.wantHex)/2)
			}
			if diff := cmp.Diff(tt.fields, decoded.GetPresentFields()); diff != "" {
				t.Errorf("decoded fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBitmapSetFieldRange(t *testing.T) {
	tests := []struct {
		width int
		field int
	}{
		{64, 1},
		{64, 65},
		{128, 0},
		{128, 129},
	}

	for _, tt := range tests {
		bm := NewBitmapManager(tt.width)
		if err := bm.SetField(tt.field); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("width %d SetField(%d) error = %v; want ErrInvalidIndex", tt.width, tt.field, err)
		}
	}
}

func TestBitmapClearSecondary(t *testing.T) {
	bm := NewBitmapManager(128)
	for _, f := range []int{3, 70, 90} {
		if err := bm.SetField(f); err != nil {
			t.Fatal(err)
		}
	}

	bm.ClearField(70)
	if !bm.HasSecondaryBitmap() {
		t.Fatal("secondary bitmap dropped while field 90 is still set")
	}
	bm.ClearField(90)
	if bm.HasSecondaryBitmap() {
		t.Error("secondary bitmap kept after clearing the last field above 64")
	}
	if got := len(bm.Bytes()); got != BitmapSize {
		t.Errorf("len(Bytes()) = %d; want %d", got, BitmapSize)
	}

	bm.Reset()
	if got := bm.GetPresentFields(); len(got) != 0 {
		t.Errorf("fields after Reset = %v; want none", got)
	}
}

func TestBitmapHexEncoding(t *testing.T) {
	bm := NewBitmapManager(64)
	for _, f := range []int{2, 11, 64} {
		if err := bm.SetField(f); err != nil {
			t.Fatal(err)
		}
	}
	got := bm.AppendBitmap(nil, BitmapEncodingHex)
	if diff := cmp.Diff("4020000000000001", string(got)); diff != "" {
		t.Errorf("AppendBitmap mismatch (-want +got):\n%s", diff)
	}

	decoded := NewBitmapManager(64)
	n, err := decoded.UnpackBitmap([]byte("4020000000000001"), BitmapEncodingHex)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("UnpackBitmap consumed %d; want 16", n)
	}
	if diff := cmp.Diff([]int{2, 11, 64}, decoded.GetPresentFields()); diff != "" {
		t.Errorf("Mismatch (-want +got):\n%s", diff)
	}
}

func TestUnpackBitmapErrors(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		data    []byte
		enc     BitmapEncoding
		wantErr error
	}{
		{"secondary in 64 field schema", 64, mustHex(t, "80000000000000000000000000000001"), BitmapEncodingBinary, ErrInvalidBitmap},
		{"short primary", 64, mustHex(t, "0000"), BitmapEncodingBinary, ErrTruncatedMessage},
		{"short secondary", 128, mustHex(t, "800000000000000000"), BitmapEncodingBinary, ErrTruncatedMessage},
		{"bad hex", 64, []byte("ZZ20000000000001"), BitmapEncodingHex, ErrInvalidBitmap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBitmapManager(tt.width).UnpackBitmap(tt.data, tt.enc)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v; want %v", err, tt.wantErr)
			}
		})
	}
}
