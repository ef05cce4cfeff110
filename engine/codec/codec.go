// Package codec decodes depth values packed into the colour channels of a video frame.
//
// The producer writes a 16 bit fixed point value: the high byte is stored twice,
// in red and green, and the low byte in blue. Decoding averages red and green
// with integer division and rebuilds the value as the top two bytes of a 32 bit
// word, the bottom two bytes are always zero.
package codec

import (
	"github.com/spaghettifunk/rerender/engine/frame"
)

// full scale of the reconstructed 32 bit word, 255^4
const fullScale = 255.0 * 255.0 * 255.0 * 255.0

type Codec struct {
	MaxDepth float32
	scale    float32
}

func New(maxDepth float32) *Codec {
	return &Codec{
		MaxDepth: maxDepth,
		scale:    float32(fullScale / float64(maxDepth)),
	}
}

// Word rebuilds the packed 32 bit value.
func Word(r, g, b uint8) uint32 {
	high := (uint32(r) + uint32(g)) / 2
	return high<<24 | uint32(b)<<16
}

// Decode returns the depth in metres for one pixel, clamped into [0, MaxDepth].
func (c *Codec) Decode(r, g, b uint8) float32 {
	d := float32(Word(r, g, b)) / c.scale
	if d > c.MaxDepth {
		return c.MaxDepth
	}
	return d
}

// DecodeFrame decodes every pixel of a packed frame.
func (c *Codec) DecodeFrame(f *frame.RGB) *frame.Depth {
	out := frame.NewDepth(f.Width, f.Height)
	for i := range out.Data {
		p := f.Pix[i*3 : i*3+3 : i*3+3]
		out.Data[i] = c.Decode(p[0], p[1], p[2])
	}
	return out
}
