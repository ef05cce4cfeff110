// Package frame holds the per-frame pixel buffers that flow through the pipeline.
package frame

import (
	"fmt"
	"image"
	"image/color"

	"github.com/spaghettifunk/rerender/engine/core"
)

// RGB is a packed 8-bit RGB image, three bytes per pixel, rows without padding.
type RGB struct {
	Width  int
	Height int
	Pix    []uint8
}

// Gray is a single channel 8-bit image.
type Gray struct {
	Width  int
	Height int
	Pix    []uint8
}

// Depth holds one depth value in metres per pixel.
type Depth struct {
	Width  int
	Height int
	Data   []float32
}

func NewRGB(width, height int) *RGB {
	return &RGB{Width: width, Height: height, Pix: make([]uint8, width*height*3)}
}

func NewGray(width, height int) *Gray {
	return &Gray{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

func NewDepth(width, height int) *Depth {
	return &Depth{Width: width, Height: height, Data: make([]float32, width*height)}
}

// Offset returns the index of the red byte of pixel (x, y).
func (f *RGB) Offset(x, y int) int {
	return (y*f.Width + x) * 3
}

func (f *RGB) RGBAt(x, y int) (uint8, uint8, uint8) {
	i := f.Offset(x, y)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

func (f *RGB) SetRGB(x, y int, r, g, b uint8) {
	i := f.Offset(x, y)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// Fill paints every pixel with the same colour.
func (f *RGB) Fill(r, g, b uint8) {
	for i := 0; i < len(f.Pix); i += 3 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
	}
}

func (f *RGB) SameSize(w, h int) bool {
	return f.Width == w && f.Height == h
}

func (f *RGB) Clone() *RGB {
	out := &RGB{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(out.Pix, f.Pix)
	return out
}

// ColorModel, Bounds and At make RGB usable wherever an image.Image is expected.
func (f *RGB) ColorModel() color.Model { return color.RGBAModel }

func (f *RGB) Bounds() image.Rectangle { return image.Rect(0, 0, f.Width, f.Height) }

func (f *RGB) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return color.RGBA{}
	}
	r, g, b := f.RGBAt(x, y)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ToRGBA copies the frame into an *image.RGBA.
func (f *RGB) ToRGBA() *image.RGBA {
	img := image.NewRGBA(f.Bounds())
	for i, j := 0, 0; i < len(f.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 255
	}
	return img
}

// FromImage converts any image into a packed RGB frame, dropping alpha.
func FromImage(img image.Image) *RGB {
	b := img.Bounds()
	out := NewRGB(b.Dx(), b.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			c := color.RGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA)
			out.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return out
}

func (g *Gray) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

func (g *Gray) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// ToImage copies the mask into an *image.Gray.
func (g *Gray) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	copy(img.Pix, g.Pix)
	return img
}

// ToRGB replicates the single channel into all three colour channels.
func (g *Gray) ToRGB() *RGB {
	out := NewRGB(g.Width, g.Height)
	for i, v := range g.Pix {
		out.Pix[i*3], out.Pix[i*3+1], out.Pix[i*3+2] = v, v, v
	}
	return out
}

func (d *Depth) At(x, y int) float32 {
	return d.Data[y*d.Width+x]
}

// Luminance converts an RGB frame to gray with the ITU-R BT.601 weights,
// rounding to nearest.
func Luminance(f *RGB) *Gray {
	out := NewGray(f.Width, f.Height)
	for i := range out.Pix {
		r := uint32(f.Pix[i*3])
		g := uint32(f.Pix[i*3+1])
		b := uint32(f.Pix[i*3+2])
		// 14 bit fixed point, same weights as 0.299, 0.587, 0.114
		out.Pix[i] = uint8((r*4899 + g*9617 + b*1868 + 8192) >> 14)
	}
	return out
}

// CheckSize fails with core.ErrDimensionMismatch when the frames are not the same size.
func CheckSize(a, b *RGB) error {
	if a.Width != b.Width || a.Height != b.Height {
		return fmt.Errorf("%dx%d vs %dx%d: %w", a.Width, a.Height, b.Width, b.Height, core.ErrDimensionMismatch)
	}
	return nil
}
