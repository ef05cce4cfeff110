// Package projection remaps rectilinear renders into 180 degree equirectangular images.
package projection

import (
	"fmt"
	m "math"

	"github.com/spaghettifunk/rerender/engine/core"
	"github.com/spaghettifunk/rerender/engine/frame"
)

// Equirect holds the remap table for one output size and input field of view.
// The output always spans [-90, 90] degrees on both axes, linear in angle.
// Only pixels whose angles fall within half the input field of view sample the
// source; the rest stay black.
type Equirect struct {
	Width  int
	Height int
	FOV    float64

	mapX  []float64
	mapY  []float64
	valid []bool
}

func NewEquirect(width, height int, inputFOV float64) (*Equirect, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("equirect size %dx%d too small: %w", width, height, core.ErrInvalidConfig)
	}
	if inputFOV <= 0 || inputFOV >= 180 || m.IsNaN(inputFOV) {
		return nil, fmt.Errorf("input fov %v must be in (0, 180): %w", inputFOV, core.ErrInvalidFOV)
	}

	e := &Equirect{
		Width:  width,
		Height: height,
		FOV:    inputFOV,
		mapX:   make([]float64, width*height),
		mapY:   make([]float64, width*height),
		valid:  make([]bool, width*height),
	}

	cx := float64(width-1) / 2
	cy := float64(height-1) / 2
	halfFOV := inputFOV / 2 * m.Pi / 180
	fx := cx / m.Tan(halfFOV)
	fy := cy / m.Tan(halfFOV)

	for y := 0; y < height; y++ {
		phi := (float64(y) - cy) / cy * (m.Pi / 2)
		for x := 0; x < width; x++ {
			theta := (float64(x) - cx) / cx * (m.Pi / 2)
			i := y*width + x
			if m.Abs(theta) > halfFOV || m.Abs(phi) > halfFOV {
				continue
			}
			e.valid[i] = true
			e.mapX[i] = fx*m.Tan(theta) + cx
			e.mapY[i] = fy*m.Tan(phi) + cy
		}
	}
	return e, nil
}

// Lookup returns the source coordinate sampled by output pixel (x, y).
func (e *Equirect) Lookup(x, y int) (float64, float64, bool) {
	i := y*e.Width + x
	return e.mapX[i], e.mapY[i], e.valid[i]
}

// Valid reports whether output pixel (x, y) lies within the input field of view.
func (e *Equirect) Valid(x, y int) bool {
	return e.valid[y*e.Width+x]
}

// Project remaps an RGB frame. The frame must have the size the table was built for.
func (e *Equirect) Project(src *frame.RGB) (*frame.RGB, error) {
	if !src.SameSize(e.Width, e.Height) {
		return nil, fmt.Errorf("equirect table %dx%d, frame %dx%d: %w", e.Width, e.Height, src.Width, src.Height, core.ErrDimensionMismatch)
	}
	out := frame.NewRGB(e.Width, e.Height)
	for i, ok := range e.valid {
		if !ok {
			continue
		}
		sampleBilinear(src.Pix, 3, e.Width, e.Height, e.mapX[i], e.mapY[i], out.Pix[i*3:i*3+3])
	}
	return out, nil
}

// ProjectGray remaps a single channel plane, used for masks.
func (e *Equirect) ProjectGray(src *frame.Gray) (*frame.Gray, error) {
	if src.Width != e.Width || src.Height != e.Height {
		return nil, fmt.Errorf("equirect table %dx%d, mask %dx%d: %w", e.Width, e.Height, src.Width, src.Height, core.ErrDimensionMismatch)
	}
	out := frame.NewGray(e.Width, e.Height)
	for i, ok := range e.valid {
		if !ok {
			continue
		}
		sampleBilinear(src.Pix, 1, e.Width, e.Height, e.mapX[i], e.mapY[i], out.Pix[i:i+1])
	}
	return out, nil
}

// ConvertToEquirectangular builds a one-off table and remaps img with it.
func ConvertToEquirectangular(img *frame.RGB, inputFOV float64) (*frame.RGB, error) {
	e, err := NewEquirect(img.Width, img.Height, inputFOV)
	if err != nil {
		return nil, err
	}
	return e.Project(img)
}

// sampleBilinear interpolates between the four neighbours of (fx, fy).
// Neighbours outside the image contribute black.
func sampleBilinear(pix []uint8, channels, w, h int, fx, fy float64, out []uint8) {
	x0 := int(m.Floor(fx))
	y0 := int(m.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	weights := [4]float64{(1 - tx) * (1 - ty), tx * (1 - ty), (1 - tx) * ty, tx * ty}
	xs := [4]int{x0, x0 + 1, x0, x0 + 1}
	ys := [4]int{y0, y0, y0 + 1, y0 + 1}

	for c := 0; c < channels; c++ {
		var val float64
		for k := 0; k < 4; k++ {
			if xs[k] < 0 || xs[k] >= w || ys[k] < 0 || ys[k] >= h || weights[k] == 0 {
				continue
			}
			val += weights[k] * float64(pix[(ys[k]*w+xs[k])*channels+c])
		}
		if val > 255 {
			val = 255
		}
		out[c] = uint8(val + 0.5)
	}
}
