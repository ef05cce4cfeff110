package frame

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/rerender/engine/core"
)

func TestLuminance(t *testing.T) {
	f := NewRGB(4, 1)
	f.SetRGB(0, 0, 255, 255, 255)
	f.SetRGB(1, 0, 0, 0, 0)
	f.SetRGB(2, 0, 255, 0, 0)
	f.SetRGB(3, 0, 0, 255, 0)

	g := Luminance(f)
	want := []uint8{255, 0, 76, 150}
	for i, w := range want {
		if g.Pix[i] != w {
			t.Errorf("pixel %d: got %d, want %d", i, g.Pix[i], w)
		}
	}
}

func TestHConcat(t *testing.T) {
	a := NewRGB(2, 2)
	a.Fill(10, 10, 10)
	b := NewRGB(2, 2)
	b.Fill(20, 20, 20)

	out, err := HConcat(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 4 || out.Height != 2 {
		t.Fatalf("unexpected size %dx%d", out.Width, out.Height)
	}
	for y := 0; y < 2; y++ {
		if r, _, _ := out.RGBAt(1, y); r != 10 {
			t.Errorf("left half row %d: got %d", y, r)
		}
		if r, _, _ := out.RGBAt(2, y); r != 20 {
			t.Errorf("right half row %d: got %d", y, r)
		}
	}
}

func TestVConcat(t *testing.T) {
	a := NewRGB(3, 1)
	a.Fill(1, 2, 3)
	b := NewRGB(3, 1)
	b.Fill(4, 5, 6)

	out, err := VConcat(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 3 || out.Height != 2 {
		t.Fatalf("unexpected size %dx%d", out.Width, out.Height)
	}
	if r, g, b := out.RGBAt(2, 1); r != 4 || g != 5 || b != 6 {
		t.Errorf("bottom row: got %d,%d,%d", r, g, b)
	}
}

func TestConcatSizeMismatch(t *testing.T) {
	_, err := HConcat(NewRGB(2, 2), NewRGB(3, 2))
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("expected dimension mismatch, got %v", err)
	}
}

func TestGrayToRGB(t *testing.T) {
	g := NewGray(2, 1)
	g.Set(1, 0, 200)
	rgb := g.ToRGB()
	if r, gg, b := rgb.RGBAt(1, 0); r != 200 || gg != 200 || b != 200 {
		t.Errorf("got %d,%d,%d", r, gg, b)
	}
}
