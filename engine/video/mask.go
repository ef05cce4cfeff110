package video

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/rerender/engine/frame"
)

// MaskReader turns a video source into luminance masks of a fixed size.
type MaskReader struct {
	src           Source
	width, height int
}

func NewMaskReader(src Source, width, height int) *MaskReader {
	return &MaskReader{src: src, width: width, height: height}
}

// Next returns the next mask, scaled bilinearly when the source size differs.
func (mr *MaskReader) Next() (*frame.Gray, error) {
	f, err := mr.src.Next()
	if err != nil {
		return nil, err
	}
	gray := frame.Luminance(f)
	if gray.Width == mr.width && gray.Height == mr.height {
		return gray, nil
	}
	return ScaleGray(gray, mr.width, mr.height), nil
}

func (mr *MaskReader) Close() error {
	return mr.src.Close()
}

func ScaleGray(g *frame.Gray, width, height int) *frame.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	src := g.ToImage()
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	out := frame.NewGray(width, height)
	copy(out.Pix, dst.Pix)
	return out
}
