package engine

import (
	"fmt"
	"image/png"
	"os"

	"github.com/nfnt/resize"

	"github.com/spaghettifunk/rerender/engine/frame"
)

// previewWriter saves a downscaled PNG of every nth output frame.
type previewWriter struct {
	prefix string
	every  int
	width  uint
}

func newPreviewWriter(output string, every int, width uint) *previewWriter {
	if width == 0 {
		width = 480
	}
	return &previewWriter{prefix: output, every: every, width: width}
}

func (p *previewWriter) path(frameN int) string {
	return fmt.Sprintf("%s_preview_%06d.png", p.prefix, frameN)
}

func (p *previewWriter) maybeWrite(frameN int, f *frame.RGB) error {
	if p.every <= 0 || frameN%p.every != 0 {
		return nil
	}
	thumb := resize.Resize(p.width, 0, f.ToRGBA(), resize.Bilinear)
	file, err := os.Create(p.path(frameN))
	if err != nil {
		return err
	}
	if err := png.Encode(file, thumb); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
