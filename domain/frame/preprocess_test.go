package frame

import (
	"errors"
	"testing"
)

func TestPreprocessor_Quantize(t *testing.T) {
	pix := []uint8{
		10, 20, 30,    // avg 20 -> 20
		0, 0, 29,      // avg 9 -> 0
		255, 255, 255, // avg 255 -> 250
		100, 101, 102, // avg 101 -> 100
	}
	f, _ := NewRGB(2, 2, pix)

	got, err := NewPreprocessor(0).Quantize(f)
	if err != nil {
		t.Fatalf("Quantize() unexpected error: %v", err)
	}

	want := []uint8{20, 0, 250, 100}
	for i := range want {
		if got.Pix[i] != want[i] {
			t.Errorf("Quantize() pix[%d] = %d, want %d", i, got.Pix[i], want[i])
		}
	}
}

func TestPreprocessor_ToGrayscaleBinary(t *testing.T) {
	p := NewPreprocessor(DefaultQuantizeStep)

	t.Run("thresholds at the mean", func(t *testing.T) {
		// quantized: 0, 0, 100, 200 -> mean 75
		pix := []uint8{
			1, 2, 3,
			9, 9, 9,
			100, 100, 100,
			200, 205, 200,
		}
		f, _ := NewRGB(2, 2, pix)

		got, err := p.ToGrayscaleBinary(f)
		if err != nil {
			t.Fatalf("ToGrayscaleBinary() unexpected error: %v", err)
		}
		want := []uint8{Black, Black, White, White}
		for i := range want {
			if got.Pix[i] != want[i] {
				t.Errorf("ToGrayscaleBinary() pix[%d] = %d, want %d", i, got.Pix[i], want[i])
			}
		}
	})

	t.Run("uniform frame is all black", func(t *testing.T) {
		got, err := p.ToGrayscaleBinary(solidRGB(t, 4, 5, 128))
		if err != nil {
			t.Fatalf("ToGrayscaleBinary() unexpected error: %v", err)
		}
		for i, v := range got.Pix {
			if v != Black {
				t.Fatalf("ToGrayscaleBinary() pix[%d] = %d, want 0", i, v)
			}
		}
	})

	t.Run("output is two-valued with input dimensions", func(t *testing.T) {
		pix := make([]uint8, 7*11*3)
		for i := range pix {
			pix[i] = uint8((i * 37) % 256)
		}
		f, _ := NewRGB(7, 11, pix)

		got, err := p.ToGrayscaleBinary(f)
		if err != nil {
			t.Fatalf("ToGrayscaleBinary() unexpected error: %v", err)
		}
		if got.Height != 7 || got.Width != 11 || got.Channels != 1 {
			t.Errorf("ToGrayscaleBinary() shape = %s, want (7, 11, 1)", got.Shape())
		}
		if !IsBinary(got) {
			t.Error("ToGrayscaleBinary() output is not binary")
		}
	})

	t.Run("rejects single channel input", func(t *testing.T) {
		gray, _ := NewGray(2, 2, make([]uint8, 4))
		_, err := p.ToGrayscaleBinary(gray)
		if !errors.Is(err, ErrInvalidFormat) {
			t.Errorf("ToGrayscaleBinary() error = %v, want ErrInvalidFormat", err)
		}
	})

	t.Run("does not modify the input", func(t *testing.T) {
		f := solidRGB(t, 2, 2, 77)
		if _, err := p.ToGrayscaleBinary(f); err != nil {
			t.Fatalf("ToGrayscaleBinary() unexpected error: %v", err)
		}
		for i, v := range f.Pix {
			if v != 77 {
				t.Fatalf("input pix[%d] changed to %d", i, v)
			}
		}
	})
}
