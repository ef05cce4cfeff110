package systems

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

func plane(w, h int, v uint8) *frame.RGB {
	f := frame.NewRGB(w, h)
	f.Fill(v, v, v)
	return f
}

func TestAssembleSizes(t *testing.T) {
	const w, h = 5, 3
	tests := []struct {
		format  Format
		buffers Buffers
		w, h    int
	}{
		{FormatStereo, Buffers{SlotLeft: plane(w, h, 1), SlotRight: plane(w, h, 2)}, 2 * w, h},
		{FormatVR180, Buffers{SlotLeft: plane(w, h, 1), SlotRight: plane(w, h, 2)}, 2 * w, h},
		{FormatMonoDepth, Buffers{SlotColor: plane(w, h, 1), SlotDepth: plane(w, h, 2)}, w, 2 * h},
		{FormatStereoDepth, Buffers{SlotLeft: plane(w, h, 1), SlotRight: plane(w, h, 2), SlotLeftDepth: plane(w, h, 3)}, 3 * w, h},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out, err := FrameAssembler{}.Assemble(tt.format, tt.buffers)
			if err != nil {
				t.Fatal(err)
			}
			if out.Width != tt.w || out.Height != tt.h {
				t.Errorf("got %dx%d, want %dx%d", out.Width, out.Height, tt.w, tt.h)
			}
			// the last slot ends up bottom right
			if r, _, _ := out.RGBAt(out.Width-1, out.Height-1); int(r) != len(tt.buffers) {
				t.Errorf("last slot value %d", r)
			}
		})
	}
}

func TestAssembleErrors(t *testing.T) {
	if _, err := (FrameAssembler{}).Assemble(FormatStereo, Buffers{SlotLeft: plane(2, 2, 0)}); err == nil {
		t.Error("missing slot should fail")
	}
	_, err := FrameAssembler{}.Assemble(FormatStereo, Buffers{SlotLeft: plane(2, 2, 0), SlotRight: plane(3, 2, 0)})
	if !errors.Is(err, core.ErrDimensionMismatch) {
		t.Errorf("expected mismatch, got %v", err)
	}
}

func TestAssembleMask(t *testing.T) {
	mask := frame.NewGray(2, 2)
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}

	out, err := FrameAssembler{}.AssembleMask(FormatMonoDepth, Masks{SlotColor: mask})
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 2 || out.Height != 4 {
		t.Fatalf("got %dx%d", out.Width, out.Height)
	}
	if r, g, b := out.RGBAt(1, 1); r != 255 || g != 255 || b != 255 {
		t.Errorf("mask slot %d,%d,%d", r, g, b)
	}
	if r, _, _ := out.RGBAt(1, 3); r != 0 {
		t.Errorf("depth slot should be zero, got %d", r)
	}

	out, err = FrameAssembler{}.AssembleMask(FormatStereoDepth, Masks{SlotLeft: mask, SlotRight: mask})
	if err != nil {
		t.Fatal(err)
	}
	if out.Width != 6 || out.Height != 2 {
		t.Fatalf("got %dx%d", out.Width, out.Height)
	}
	if r, _, _ := out.RGBAt(5, 0); r != 0 {
		t.Errorf("left depth slot should be zero, got %d", r)
	}

	if out, err := (FrameAssembler{}).AssembleMask(FormatStereo, nil); out != nil || err != nil {
		t.Errorf("no masks should give nothing, got %v, %v", out, err)
	}
}
